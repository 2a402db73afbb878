package services

import (
	"regexp"

	"treasury/models"
)

// Check numbers ride inside free-text descriptions as a CHQ token, e.g.
// "Paiement CHQ-002". The token is the only linkage between a transaction and
// its banking operation, so extraction must stay stable across edits.
var checkNumberPattern = regexp.MustCompile(`(?i)\bCHQ[ -]?(\d+)\b`)

// ExtractCheckNumber returns the check number embedded in description, or ""
// when there is none. Leading zeros are preserved.
func ExtractCheckNumber(description string) string {
	m := checkNumberPattern.FindStringSubmatch(description)
	if m == nil {
		return ""
	}
	return m[1]
}

// bankingLinked reports whether a transaction with the given kind and
// description carries a banking-operation leg.
func bankingLinked(kind models.Kind, description string) bool {
	return kind == models.KindExpense && ExtractCheckNumber(description) != ""
}
