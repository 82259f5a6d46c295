package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/taskmanager/taskmanager-api/internal/database"
	"github.com/taskmanager/taskmanager-api/internal/logging"
	"github.com/taskmanager/taskmanager-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory SQLite database that is closed when the
// test ends. A single connection keeps every query on the same memory DB.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db, logging.Discard()))
	return db
}

// CreateUser inserts a confirmed user with the given password.
func CreateUser(t *testing.T, db *gorm.DB, name, email, password string) *models.User {
	t.Helper()

	user := &models.User{
		Name:      name,
		Email:     email,
		Password:  password,
		Confirmed: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}
