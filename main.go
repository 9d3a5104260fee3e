package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"hotel-review-ops/handlers"
	"hotel-review-ops/models"
	"hotel-review-ops/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "hotel_review_ops.db"
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Integration{},
		&models.Review{},
		&models.ApprovalTask{},
		&models.Notification{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	drafter := services.NewDrafter(context.Background(), "")

	scheduler := services.NewScheduler(db)
	scheduler.Refresh(services.TawktoRowsSlug)
	defer scheduler.Stop()

	r := gin.Default()

	r.POST("/webhooks/reviews", handlers.HandleReviewWebhook(db, drafter))

	r.GET("/api/automation/tawkto-rows", handlers.HandleGetAutomation(db))
	r.POST("/api/automation/tawkto-rows", handlers.HandleSaveAutomation(db, scheduler))
	r.POST("/api/automation/tawkto-rows/run", handlers.HandleRunAutomation(db))

	r.GET("/api/tasks/pending", handlers.HandleListPendingTasks(db))
	r.POST("/api/tasks/:id/approve", handlers.HandleApproveTask(db))
	r.POST("/api/tasks/:id/reject", handlers.HandleRejectTask(db))

	r.GET("/api/notifications", handlers.HandleListNotifications(db))
	r.POST("/api/notifications/:id/read", handlers.HandleMarkNotificationRead(db))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
