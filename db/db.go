package db

import (
	"os"
	"time"

	"katiopa-backend/models"
	"katiopa-backend/utils"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {
	if err := godotenv.Load(); err != nil {
		utils.LogError(err, "Warning: impossible to load the .env file")
		utils.LogInfo("The environment variable DB_URL must be defined in the system environment")
	}

	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		utils.LogError(nil, "Variable DB_URL not defined")
		panic("Database URL not configured")
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: utils.GetGormLogger(),
	})
	if err != nil {
		utils.LogError(err, "Error connecting to the database")
		panic("Could not connect to the database")
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.ChildAccount{},
		&models.Subscription{},
		&models.WebhookEvent{},
	)
	if err != nil {
		utils.LogError(err, "Error migrating database")
		panic("Could not migrate database")
	}

	utils.LogSuccess("Database connection successful")
}

// PruneWebhookEvents drops processed event ids older than the retention
// window. Stripe never redelivers an event that old, so the rows only
// cost storage.
func PruneWebhookEvents(retention time.Duration) {
	cutoff := time.Now().Add(-retention)
	result := DB.Where("processed_at < ?", cutoff).Delete(&models.WebhookEvent{})
	if result.Error != nil {
		utils.LogError(result.Error, "Error pruning processed webhook events")
		return
	}
	if result.RowsAffected > 0 {
		utils.LogInfo("Pruned processed webhook events")
	}
}
