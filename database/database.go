package database

import (
	"fmt"

	"baluarte/config"
	"baluarte/models"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init opens the MySQL connection pool and migrates the schema
func Init(cfg *config.Config) error {
	logLevel := logger.Info
	if cfg.IsRelease() {
		logLevel = logger.Warn
	}

	var err error
	DB, err = gorm.Open(mysql.Open(cfg.Database.MySQLDSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	if err := Migrate(DB); err != nil {
		return err
	}

	log.Info().Msg("database ready")
	return nil
}

// Migrate creates or updates the tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Transaction{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Close releases the pool
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
