package database

import (
	"fmt"
	"time"

	"storefront/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewLogger routes GORM's warnings and slow queries into log. Missing rows are
// an expected lookup result and are not reported.
func NewLogger(log logrus.FieldLogger) logger.Interface {
	return logger.New(log, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// Open connects to the configured database. TranslateError is always on so
// unique-index violations surface as gorm.ErrDuplicatedKey on every driver.
func Open(driver, dsn string, log logrus.FieldLogger) (*gorm.DB, error) {
	return open(driver, dsn, NewLogger(log))
}

func open(driver, dsn string, gormLogger logger.Interface) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	return db, nil
}

// Migrate creates or updates the storefront tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Product{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// OpenMemory opens a private in-memory SQLite database and migrates it.
// Connections are capped at one so concurrent writers queue instead of
// failing with a shared-cache table lock.
func OpenMemory(name string) (*gorm.DB, error) {
	db, err := open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name), logger.Discard)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
