package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"treasury/internal/apperr"
	"treasury/models"
)

type CategoryController struct{ DB *gorm.DB }

func (ctl CategoryController) Create(c *gin.Context) {
	var body struct {
		Name  string `json:"name" binding:"required"`
		Kind  string `json:"kind" binding:"required,oneof=INCOME EXPENSE"`
		Mixed bool   `json:"mixed"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var cnt int64
	if err := ctl.DB.Model(&models.Category{}).Where("name = ?", body.Name).Count(&cnt).Error; err != nil {
		abortWithError(c, err)
		return
	}
	if cnt > 0 {
		abortWithError(c, apperr.Conflictf("category %q already exists", body.Name))
		return
	}
	cat := models.Category{
		ID:    uuid.NewString(),
		Name:  body.Name,
		Kind:  models.Kind(body.Kind),
		Mixed: body.Mixed,
	}
	if err := ctl.DB.Create(&cat).Error; err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (ctl CategoryController) List(c *gin.Context) {
	var list []models.Category
	if err := ctl.DB.Order("name").Find(&list).Error; err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (ctl CategoryController) CreateSubCategory(c *gin.Context) {
	var body struct {
		Name       string `json:"name" binding:"required"`
		CategoryID string `json:"categoryId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var cnt int64
	if err := ctl.DB.Model(&models.Category{}).Where("id = ?", body.CategoryID).Count(&cnt).Error; err != nil {
		abortWithError(c, err)
		return
	}
	if cnt == 0 {
		abortWithError(c, apperr.NotFoundf("category %s not found", body.CategoryID))
		return
	}
	sub := models.SubCategory{
		ID:         uuid.NewString(),
		Name:       body.Name,
		CategoryID: body.CategoryID,
	}
	if err := ctl.DB.Create(&sub).Error; err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (ctl CategoryController) ListSubCategories(c *gin.Context) {
	q := ctl.DB.Order("name")
	if cid := c.Query("categoryId"); cid != "" {
		q = q.Where("category_id = ?", cid)
	}
	var list []models.SubCategory
	if err := q.Find(&list).Error; err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
