package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kasalashiva/temple-meals/controllers"
	"github.com/kasalashiva/temple-meals/middlewares"
	"github.com/kasalashiva/temple-meals/services"
)

func SetupRouter(db *gorm.DB, window *services.BookingWindow, mailer services.Mailer) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	billing := services.NewBillingService(db)

	userCtrl := controllers.NewUserController(db)
	settingCtrl := controllers.NewSettingController(db, billing)
	mealCtrl := controllers.NewMealController(db, window, billing, mailer)

	api := r.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Credential endpoints get the strict limiter.
	auth := api.Group("/auth")
	auth.POST("/bootstrap-admin", middlewares.NewStrictRateLimiter(), userCtrl.BootstrapAdmin)
	auth.POST("/login", middlewares.NewStrictRateLimiter(), userCtrl.Login)
	auth.GET("/me", middlewares.AuthMiddleware(), userCtrl.GetProfile)

	// User administration (admin only).
	users := api.Group("/users")
	users.Use(middlewares.AuthMiddleware(), middlewares.AdminOnly())
	{
		users.POST("", userCtrl.CreateUser)
		users.GET("", userCtrl.GetAllUsers)
		users.PUT("/:user_id", userCtrl.UpdateUser)
		users.DELETE("/:user_id", userCtrl.DeleteUser)
	}

	// Rates: reading is public, installing new rates is admin only.
	api.GET("/settings", settingCtrl.GetRates)
	api.POST("/settings", middlewares.AuthMiddleware(), middlewares.AdminOnly(), settingCtrl.CreateRates)

	// Email action links are deliberately unauthenticated; the token is the
	// credential.
	api.GET("/meals/:meal_id/approve", mealCtrl.ApproveByToken)
	api.GET("/meals/:meal_id/reject", mealCtrl.RejectByToken)

	meals := api.Group("/meals")
	meals.Use(middlewares.AuthMiddleware())
	{
		meals.POST("", mealCtrl.CreateMealRequest)
		meals.GET("/mine", mealCtrl.GetMyRequests)
		meals.PUT("/:meal_id", mealCtrl.UpdateMealRequest)
		meals.POST("/:meal_id/mark-paid", mealCtrl.MarkPaid)

		admin := meals.Group("")
		admin.Use(middlewares.AdminOnly())
		{
			admin.GET("/admin", mealCtrl.AdminListRequests)
			admin.GET("/admin-summary", mealCtrl.AdminSummary)
			admin.GET("/admin-report", mealCtrl.AdminReport)
			admin.POST("/:meal_id/admin-meal-status", mealCtrl.AdminSetMealStatus)
			admin.POST("/:meal_id/admin-payment-status", mealCtrl.AdminSetPaymentStatus)
		}
	}

	// Live feed for admin dashboards.
	ws := r.Group("/ws")
	ws.Use(middlewares.WebSocketAuthMiddleware())
	{
		ws.GET("/feed", controllers.FeedHandler)
	}

	return r
}
