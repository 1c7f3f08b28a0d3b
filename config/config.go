package config

import (
	"log"
	"os"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"foodcourt-api/models"
)

var DB *gorm.DB

// JWTSecret used to sign tokens — read from env or fallback
var JWTSecret = []byte(getEnv("JWT_SECRET", "foodcourt_super_secret_2024"))

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// LoadEnv reads a local .env if present. Missing files are fine; real
// environments set variables directly.
func LoadEnv() {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded configuration from .env")
	}
	JWTSecret = []byte(getEnv("JWT_SECRET", "foodcourt_super_secret_2024"))
}

// Open connects to the given sqlite database and migrates the schema.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Outlet{},
		&models.MenuItem{},
		&models.FoodCourtTable{},
		&models.Reservation{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
	)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func InitDB() {
	var err error
	DB, err = Open(getEnv("DB_PATH", "foodcourt.db"))
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	log.Println("database connected and migrated")
}
