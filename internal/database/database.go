package database

import (
	"fmt"
	"log"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"qrmenu/internal/domain"
	"qrmenu/internal/repository"
)

// DriverMemory keeps the catalog in process memory; nothing survives a restart.
const DriverMemory = "memory"

// OpenCatalog returns the catalog store for driver and a func releasing it.
func OpenCatalog(driver, source string, logSQL bool) (repository.Catalog, func() error, error) {
	if driver == DriverMemory {
		log.Printf("database: using in-memory catalog")
		return repository.NewMemoryStore(), func() error { return nil }, nil
	}
	db, err := Open(driver, source, logSQL)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	return repository.NewGormStore(db), sqlDB.Close, nil
}

// Open connects to the configured driver and migrates the catalog schema.
func Open(driver, source string, logSQL bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(sqliteDSN(source))
	case "postgres":
		dialector = postgres.Open(source)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	level := logger.Warn
	if logSQL {
		level = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == "sqlite" {
		// sqlite takes a single writer
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Printf("database connected (%s)", driver)
	return db, nil
}

// Migrate creates or updates the catalog tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.Restaurant{}, &domain.Category{}, &domain.Item{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// sqliteDSN turns foreign keys on unless the source already sets pragmas.
func sqliteDSN(source string) string {
	if strings.Contains(source, "?") {
		return source
	}
	return source + "?_pragma=foreign_keys(1)"
}
