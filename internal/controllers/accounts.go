package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"treasury/internal/services"
	"treasury/models"
)

type AccountController struct {
	Svc services.AccountService
}

func (ctl AccountController) Create(c *gin.Context) {
	var body struct {
		Name string `json:"name" binding:"required"`
		Kind string `json:"kind" binding:"required,oneof=CASH BANK SECRETARY"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	acc, err := ctl.Svc.Create(services.CreateAccountInput{
		Name: body.Name,
		Kind: models.AccountKind(body.Kind),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, acc)
}

func (ctl AccountController) List(c *gin.Context) {
	list, err := ctl.Svc.List()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (ctl AccountController) GetByID(c *gin.Context) {
	acc, err := ctl.Svc.Get(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, acc)
}

func (ctl AccountController) Transfer(c *gin.Context) {
	var body struct {
		FromAccountID string          `json:"fromAccountId" binding:"required"`
		ToAccountID   string          `json:"toAccountId" binding:"required"`
		Amount        decimal.Decimal `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := ctl.Svc.Transfer(body.FromAccountID, body.ToAccountID, body.Amount); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
