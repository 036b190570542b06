package db

import (
	"fmt"

	"github.com/iheartbourbon/bourbon/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// ConnectDatabase opens the application database. Unique violations are
// translated to gorm.ErrDuplicatedKey so callers can report conflicts.
func ConnectDatabase(driver, dsn string) error {
	conn, err := Open(driver, dsn)

	if err != nil {
		return err
	}

	DB = conn

	return nil
}

func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch driver {
	case "", "postgres", "postgresql":
		dialector = postgres.Open(dsn)
	case "sqlite", "sqlite3":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})

	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	return conn, nil
}

func MigrateDatabase() error {
	return Migrate(DB)
}

// Migrate creates missing tables. Parents come before the tables that
// reference them.
func Migrate(conn *gorm.DB) error {
	models := []interface{}{
		&models.User{},
		&models.Bourbon{},
		&models.Group{},
		&models.GroupMembership{},
		&models.Entry{},
		&models.GroupEntry{},
	}

	migrator := conn.Migrator()

	for _, model := range models {
		if !migrator.HasTable(model) {
			if err := conn.AutoMigrate(model); err != nil {
				return err
			}
		}
	}

	return nil
}
