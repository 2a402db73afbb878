package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"treasury/internal/auth"
	"treasury/internal/cache"
	"treasury/internal/controllers"
	"treasury/internal/services"
)

func Register(db *gorm.DB, log zerolog.Logger) *gin.Engine {
	banking := services.BankingService{DB: db, Log: log}
	transactions := services.TransactionService{DB: db, Banking: banking}
	accounts := services.AccountService{DB: db}

	reportCache := cache.New(30 * time.Second)

	acc := controllers.AccountController{Svc: accounts}
	cat := controllers.CategoryController{DB: db}
	txc := controllers.TransactionController{Svc: transactions}
	bk := controllers.BankingController{Svc: banking}
	rep := controllers.ReportsController{Svc: transactions, Cache: reportCache}

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "X-User-Id", "X-User-Role", "X-Account-Id"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))
	r.Use(auth.Middleware())

	// Any successful write makes cached reports stale.
	invalidateReports := func(c *gin.Context) {
		c.Next()
		if c.Writer.Status() < http.StatusBadRequest {
			reportCache.InvalidateByPrefix("reports:")
		}
	}

	api := r.Group("/api/v1")

	api.POST("/accounts", invalidateReports, acc.Create)
	api.GET("/accounts", acc.List)
	api.GET("/accounts/:id", acc.GetByID)
	api.POST("/accounts/transfer", invalidateReports, acc.Transfer)

	api.POST("/categories", cat.Create)
	api.GET("/categories", cat.List)
	api.POST("/sub-categories", cat.CreateSubCategory)
	api.GET("/sub-categories", cat.ListSubCategories)

	api.POST("/transactions", invalidateReports, txc.Create)
	api.GET("/transactions", txc.List)
	api.PUT("/transactions/:id", invalidateReports, txc.Update)
	api.DELETE("/transactions/:id", invalidateReports, txc.Delete)

	api.POST("/banking-operations", invalidateReports, bk.Create)
	api.GET("/banking-operations", bk.List)
	api.PUT("/banking-operations/:id", invalidateReports, bk.Update)
	api.DELETE("/banking-operations/:id", invalidateReports, bk.Delete)

	api.GET("/reports/recap", rep.Recap)

	return r
}
