package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"treasury/internal/apperr"
)

// abortWithError translates a service error into the API status mapping:
// Validation 400, NotFound 404, Conflict 409, FailedPrecondition 500.
// Untyped errors never leak their message to the client.
func abortWithError(c *gin.Context, err error) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		c.AbortWithStatusJSON(ae.Status(), gin.H{"error": ae.Message})
		return
	}
	if apperr.IsDuplicate(err) {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "duplicate value"})
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
