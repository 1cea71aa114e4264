// Package router assembles the HTTP surface: middleware chain, swagger UI,
// health check and the /api/v1 routes.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "finloan/internal/docs" // swagger docs

	"finloan/internal/config"
	"finloan/internal/events"
	"finloan/internal/handlers"
	"finloan/internal/middleware"
	"finloan/internal/services"
)

// Deps carries everything the routes need.
type Deps struct {
	Users      services.UserServicer
	Expenses   services.ExpenseServicer
	Budgets    services.BudgetServicer
	Recurring  services.RecurringExpenseServicer
	Projection services.ProjectionServicer
	Insights   services.InsightsServicer
	Audit      services.AuditServicer

	Verifier       *middleware.TokenVerifier
	PipelineAPIKey string
}

// NewDeps builds the service graph over db.
func NewDeps(db *gorm.DB, publisher events.Publisher, cfg *config.Config) Deps {
	users := services.NewUserService(db)
	budgets := services.NewBudgetService(db)

	return Deps{
		Users:      users,
		Expenses:   services.NewExpenseService(db, budgets, publisher),
		Budgets:    budgets,
		Recurring:  services.NewRecurringExpenseService(db),
		Projection: services.NewProjectionService(db, publisher, cfg.ProjectionWorkers),
		Insights:   services.NewInsightsService(db, users, budgets),
		Audit:      services.NewAuditService(db),

		Verifier:       middleware.NewTokenVerifier(cfg.JWTSecret, cfg.JWTIssuer),
		PipelineAPIKey: cfg.PipelineAPIKey,
	}
}

// New returns the Gin engine with every route registered.
func New(d Deps) *gin.Engine {
	expenseHandler := handlers.NewExpenseHandler(d.Expenses, d.Audit)
	budgetHandler := handlers.NewBudgetHandler(d.Budgets, d.Audit)
	recurringHandler := handlers.NewRecurringExpenseHandler(d.Recurring, d.Projection, d.Audit)
	profileHandler := handlers.NewProfileHandler(d.Users, d.Audit)
	categoryHandler := handlers.NewCategoryHandler()
	insightsHandler := handlers.NewInsightsHandler(d.Insights)
	pipelineHandler := handlers.NewPipelineHandler(d.Projection)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Scheduler callbacks
	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(d.PipelineAPIKey))
	pipeline.POST("/recurring/run", pipelineHandler.RunRecurring)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(d.Verifier, d.Users))

	protected.GET("/profile", profileHandler.GetProfile)
	protected.PUT("/profile", profileHandler.UpdateProfile)
	protected.DELETE("/profile", profileHandler.DeleteProfile)

	protected.GET("/categories", categoryHandler.GetCategories)

	// Aggregate routes are registered before /:id.
	expenses := protected.Group("/expenses")
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("", expenseHandler.GetExpenses)
	expenses.GET("/total", expenseHandler.GetTotal)
	expenses.GET("/by-category", expenseHandler.GetByCategory)
	expenses.GET("/daily", expenseHandler.GetDaily)
	expenses.GET("/:id", expenseHandler.GetExpense)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	recurring := protected.Group("/recurring-expenses")
	recurring.POST("", recurringHandler.CreateRecurringExpense)
	recurring.GET("", recurringHandler.GetRecurringExpenses)
	recurring.POST("/run", recurringHandler.RunMine)
	recurring.GET("/:id", recurringHandler.GetRecurringExpense)
	recurring.PUT("/:id", recurringHandler.UpdateRecurringExpense)
	recurring.DELETE("/:id", recurringHandler.DeleteRecurringExpense)

	protected.GET("/insights/overview", insightsHandler.GetOverview)

	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
