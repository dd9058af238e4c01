package Models

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the database backing the shared rate-limit counters and
// migrates the counter table.
func Connect(cfg RateLimitConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Store {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("rate limit store %q has no database", cfg.Store)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", cfg.Store, err)
	}

	if cfg.Store == "sqlite" {
		// One writer at a time keeps increments from racing into SQLITE_BUSY.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&RateCounter{}); err != nil {
		return nil, fmt.Errorf("migrating rate counters: %w", err)
	}
	return db, nil
}
