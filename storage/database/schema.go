package database

import (
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS identities (
		id VARCHAR(36) PRIMARY KEY,
		role VARCHAR(20) NOT NULL,
		external_id VARCHAR(50) NOT NULL,
		name VARCHAR(100) NOT NULL,
		email VARCHAR(100) NOT NULL DEFAULT '',
		campus VARCHAR(50) NOT NULL DEFAULT '',
		grade VARCHAR(20) NOT NULL DEFAULT '',
		section VARCHAR(50) NOT NULL DEFAULT '',
		can_manage_students BOOLEAN NOT NULL DEFAULT FALSE,
		can_manage_tasks BOOLEAN NOT NULL DEFAULT FALSE,
		password_hash BYTEA NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		UNIQUE (role, external_id)
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id VARCHAR(36) PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		language VARCHAR(20) NOT NULL,
		campus_targets TEXT NOT NULL DEFAULT '[]',
		grade_targets TEXT NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS submissions (
		id VARCHAR(36) PRIMARY KEY,
		student_id VARCHAR(50) NOT NULL,
		task_id VARCHAR(36) NOT NULL,
		code TEXT NOT NULL DEFAULT '',
		output TEXT NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL DEFAULT 'completed',
		submitted_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id VARCHAR(36) PRIMARY KEY,
		type VARCHAR(50) NOT NULL DEFAULT '',
		title VARCHAR(255) NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		related_id VARCHAR(100) NOT NULL DEFAULT '',
		target_user_type VARCHAR(20) NOT NULL,
		target_campus VARCHAR(50) NOT NULL DEFAULT '',
		target_grade VARCHAR(20) NOT NULL DEFAULT '',
		icon VARCHAR(50) NOT NULL DEFAULT 'fas fa-bell',
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS submissions_student_task_idx
		ON submissions (student_id, task_id, submitted_at)`,
	`CREATE INDEX IF NOT EXISTS notifications_created_at_idx
		ON notifications (created_at)`,
}

// EnsureSchema creates missing tables and indexes; existing ones are left
// alone.
func EnsureSchema(db *sqlx.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return errors.Wrap(err, "ensuring schema")
		}
	}
	return nil
}
