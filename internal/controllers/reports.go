package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"treasury/internal/auth"
	"treasury/internal/cache"
	"treasury/internal/services"
)

type ReportsController struct {
	Svc   services.TransactionService
	Cache *cache.Cache
}

// Recap serves the category/sub-category recapitulation for a date range.
// Responses are cached per actor scope; write routes invalidate the
// "reports:" prefix.
func (ctl ReportsController) Recap(c *gin.Context) {
	from, err := parseDate(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from is required (YYYY-MM-DD)"})
		return
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to is required (YYYY-MM-DD)"})
		return
	}
	actor := auth.FromContext(c)

	key := "reports:recap:" + string(actor.Role) + ":" + actor.LinkedAccountID +
		":" + c.Query("from") + ":" + c.Query("to")
	if ctl.Cache != nil {
		if b, ok := ctl.Cache.Get(key); ok {
			c.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	recap, err := ctl.Svc.Recapitulate(from, to, actor)
	if err != nil {
		abortWithError(c, err)
		return
	}
	b, err := json.Marshal(recap)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if ctl.Cache != nil {
		ctl.Cache.Set(key, b)
	}
	c.Data(http.StatusOK, "application/json", b)
}
