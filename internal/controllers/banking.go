package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"treasury/internal/services"
	"treasury/models"
)

type BankingController struct {
	Svc services.BankingService
}

func (ctl BankingController) Create(c *gin.Context) {
	var body struct {
		AccountID   string          `json:"accountId" binding:"required"`
		Date        string          `json:"date" binding:"required"`
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount" binding:"required"`
		Direction   string          `json:"direction" binding:"required,oneof=WITHDRAWAL DEPOSIT"`
		CheckNumber string          `json:"checkNumber"`
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
	op, err := ctl.Svc.CreateStandalone(services.CreateBankingOperationInput{
		AccountID:   body.AccountID,
		Date:        date,
		Description: body.Description,
		Amount:      body.Amount,
		Direction:   models.BankingDirection(body.Direction),
		CheckNumber: body.CheckNumber,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, op)
}

func (ctl BankingController) Update(c *gin.Context) {
	var body struct {
		Date        *string          `json:"date"`
		Description *string          `json:"description"`
		Amount      *decimal.Decimal `json:"amount"`
		Direction   *string          `json:"direction"`
		CheckNumber *string          `json:"checkNumber"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input := services.UpdateBankingOperationInput{
		Description: body.Description,
		Amount:      body.Amount,
		CheckNumber: body.CheckNumber,
	}
	if body.Date != nil {
		date, err := parseDate(*body.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported date format"})
			return
		}
		input.Date = &date
	}
	if body.Direction != nil {
		direction := models.BankingDirection(*body.Direction)
		input.Direction = &direction
	}
	op, err := ctl.Svc.UpdateStandalone(c.Param("id"), input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, op)
}

func (ctl BankingController) Delete(c *gin.Context) {
	if err := ctl.Svc.DeleteStandalone(c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (ctl BankingController) List(c *gin.Context) {
	list, err := ctl.Svc.List()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
