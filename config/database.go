package config

import (
	"fmt"

	"github.com/pointloop/PointLoop/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB initializes the database connection and migrates the schema
func InitDB() {
	config, err := LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		config.DBHost, config.DBPort, config.DBUser, config.DBPassword, config.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}

	DB = db

	if err := MigrateModels(DB); err != nil {
		panic(fmt.Sprintf("Failed to migrate database: %v", err))
	}
}

// MigrateModels runs AutoMigrate for every model. Shared with the test
// setup, which runs against an in-memory database.
func MigrateModels(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Merchant{},
		&models.Store{},
		&models.Staff{},
		&models.Customer{},
		&models.LoyaltyProgram{},
		&models.Reward{},
		&models.PointLot{},
		&models.LedgerEntry{},
		&models.EarnToken{},
		&models.Redemption{},
		&models.RedemptionConsumption{},
		&models.RateLimitWindow{},
	)
}
