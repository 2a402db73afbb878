package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"treasury/internal/auth"
	"treasury/internal/services"
	"treasury/models"
)

type TransactionController struct {
	Svc services.TransactionService
}

func (ctl TransactionController) Create(c *gin.Context) {
	var body struct {
		CategoryID    string          `json:"categoryId" binding:"required"`
		SubCategoryID string          `json:"subCategoryId" binding:"required"`
		AccountID     string          `json:"accountId" binding:"required"`
		Date          string          `json:"date" binding:"required"`
		Description   string          `json:"description"`
		Amount        decimal.Decimal `json:"amount" binding:"required"`
		Kind          string          `json:"kind" binding:"required,oneof=INCOME EXPENSE"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := parseDate(body.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported date format"})
		return
	}
	txn, err := ctl.Svc.Create(services.CreateTransactionInput{
		CategoryID:    body.CategoryID,
		SubCategoryID: body.SubCategoryID,
		AccountID:     body.AccountID,
		Date:          date,
		Description:   body.Description,
		Amount:        body.Amount,
		Kind:          models.Kind(body.Kind),
	}, auth.FromContext(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, txn)
}

func (ctl TransactionController) Update(c *gin.Context) {
	var body struct {
		CategoryID    *string          `json:"categoryId"`
		SubCategoryID *string          `json:"subCategoryId"`
		AccountID     *string          `json:"accountId"`
		Date          *string          `json:"date"`
		Description   *string          `json:"description"`
		Amount        *decimal.Decimal `json:"amount"`
		Kind          *string          `json:"kind"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input := services.UpdateTransactionInput{
		CategoryID:    body.CategoryID,
		SubCategoryID: body.SubCategoryID,
		AccountID:     body.AccountID,
		Description:   body.Description,
		Amount:        body.Amount,
	}
	if body.Date != nil {
		date, err := parseDate(*body.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported date format"})
			return
		}
		input.Date = &date
	}
	if body.Kind != nil {
		kind := models.Kind(*body.Kind)
		input.Kind = &kind
	}
	txn, err := ctl.Svc.Update(c.Param("id"), input, auth.FromContext(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

func (ctl TransactionController) Delete(c *gin.Context) {
	if err := ctl.Svc.Delete(c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (ctl TransactionController) List(c *gin.Context) {
	list, err := ctl.Svc.List()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
