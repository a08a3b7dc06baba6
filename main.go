package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/kasalashiva/temple-meals/config"
	"github.com/kasalashiva/temple-meals/middlewares"
	"github.com/kasalashiva/temple-meals/models"
	"github.com/kasalashiva/temple-meals/router"
	"github.com/kasalashiva/temple-meals/services"
	"github.com/kasalashiva/temple-meals/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	utils.InitLogger()

	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	window := services.NewBookingWindow(services.SystemClock())
	mailer := services.NewSMTPMailer()

	rateLimiter := middlewares.NewRateLimiter(50, 1)

	r := router.SetupRouter(db, window, mailer)
	r.Use(rateLimiter.RateLimit())

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	utils.InfoLogger.Printf("Listening on port %s (temple timezone %s)", port, window.Location())
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.RateSetting{},
		&models.MealRequest{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}
