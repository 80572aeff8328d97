package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AddIndexes adds the composite indexes behind the task listings
func AddIndexes(db *gorm.DB, zl *zap.Logger) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// recency-first and chronological listings
		{"tasks", "idx_tasks_start_date_id", "start_date, id"},
		{"tasks", "idx_tasks_status_start_date", "status, start_date"},

		// "my tasks" lookups go through the assignee side
		{"task_assignments", "idx_task_assignments_user_id", "user_id"},

		// thread order
		{"task_comments", "idx_task_comments_task_created", "task_id, created_at"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			zl.Debug("Index already exists, skipping", zap.String("index", idx.name))
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		zl.Info("Created index",
			zap.String("index", idx.name),
			zap.String("table", idx.table),
			zap.String("columns", idx.columns),
		)
	}

	return nil
}
