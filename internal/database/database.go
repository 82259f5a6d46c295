package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/taskmanager/taskmanager-api/internal/config"
	"github.com/taskmanager/taskmanager-api/internal/logging"
	"github.com/taskmanager/taskmanager-api/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Connect opens a GORM connection for the configured driver.
func Connect(cfg *config.Config, log *logrus.Entry) (*gorm.DB, error) {
	var dialector gorm.Dialector
	dsn := cfg.DB.DataSource()

	switch cfg.DB.Driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DB.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logging.GormLogger(log, cfg.GinMode != "release"),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.WithField("driver", cfg.DB.Driver).Info("database connection established")
	return db, nil
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB, log *logrus.Entry) error {
	log.Info("running database migrations")
	err := db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Task{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := AddIndexes(db, log); err != nil {
		return err
	}

	log.Info("database migrations completed")
	return nil
}
