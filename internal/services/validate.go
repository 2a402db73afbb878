package services

import (
	"treasury/internal/apperr"
	"treasury/models"
)

// ValidateCategoryAssignment checks that a transaction of the given kind may
// be filed under category/subCategory. Shared by the create and update paths.
func ValidateCategoryAssignment(category models.Category, subCategory models.SubCategory, kind models.Kind) error {
	if kind != models.KindIncome && kind != models.KindExpense {
		return apperr.Validationf("kind must be INCOME or EXPENSE")
	}
	if subCategory.CategoryID != category.ID {
		return apperr.Validationf("sub-category %q does not belong to category %q", subCategory.Name, category.Name)
	}
	if !category.Mixed && category.Kind != kind {
		return apperr.Validationf("kind %s is not allowed in category %q", kind, category.Name)
	}
	return nil
}
