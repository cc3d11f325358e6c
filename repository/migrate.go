package repository

import (
	"fmt"
	"log/slog"

	"github.com/hireready/hireready/models"
	"gorm.io/gorm"
)

// Columns added to interview_sessions after the original schema shipped.
// Presence or absence of a column is the only migration state there is:
// no version table, no down migrations.
var sessionColumnsAdded = []string{"ResumeText", "ResumeFilename", "ResumePDF"}

// Migrate creates missing tables and adds missing columns. Safe to run
// repeatedly and tolerant of another process racing the same statements at
// startup: a create failure is ignored when a re-check shows the object
// exists.
func (r *Repository) Migrate() error {
	return migrateSchema(r.db.Migrator())
}

func migrateSchema(m gorm.Migrator) error {
	tables := []interface{}{
		&models.User{},
		&models.InterviewSession{},
		&models.ChatMessage{},
	}

	for _, table := range tables {
		if m.HasTable(table) {
			continue
		}
		if err := m.CreateTable(table); err != nil {
			if m.HasTable(table) {
				// Another process created it first.
				continue
			}
			slog.Error("Failed to create table", "error", err, "table", fmt.Sprintf("%T", table))
			return fmt.Errorf("failed to create table %T: %w", table, err)
		}
	}

	for _, field := range sessionColumnsAdded {
		if m.HasColumn(&models.InterviewSession{}, field) {
			continue
		}
		if err := m.AddColumn(&models.InterviewSession{}, field); err != nil {
			if m.HasColumn(&models.InterviewSession{}, field) {
				continue
			}
			slog.Error("Failed to add column", "error", err, "column", field)
			return fmt.Errorf("failed to add column %s: %w", field, err)
		}
	}

	slog.Info("Database schema up to date")
	return nil
}
