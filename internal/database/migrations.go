package database

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type indexSpec struct {
	table   string
	name    string
	columns []string
}

// Composite indexes backing the hot read paths. Single-column indexes are
// declared on the model tags.
var indexes = []indexSpec{
	// Project detail loads live tasks in creation order
	{"tasks", "idx_tasks_project_created", []string{"project_id", "created_at"}},
	// Project list filters by collaborator
	{"project_collaborators", "idx_project_collaborators_user", []string{"user_id", "project_id"}},
}

// AddIndexes creates any missing composite index. It goes through the GORM
// migrator so it works on every supported driver.
func AddIndexes(db *gorm.DB, log *logrus.Entry) error {
	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			log.WithField("index", idx.name).Debug("index already exists, skipping")
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, strings.Join(idx.columns, ", "))
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.WithField("index", idx.name).Info("created index")
	}

	return nil
}
