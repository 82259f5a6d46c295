package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskmanager/taskmanager-api/internal/database"
	"github.com/taskmanager/taskmanager-api/internal/logging"
	"github.com/taskmanager/taskmanager-api/internal/testutil"
)

func TestMigrate_IsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)

	require.NoError(t, database.Migrate(db, logging.Discard()))

	assert.True(t, db.Migrator().HasTable("project_collaborators"))
	assert.True(t, db.Migrator().HasIndex("tasks", "idx_tasks_project_created"))
	assert.True(t, db.Migrator().HasIndex("project_collaborators", "idx_project_collaborators_user"))
}
