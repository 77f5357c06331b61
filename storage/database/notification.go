package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/kostask/taskboard/core/identity"
	"github.com/kostask/taskboard/core/notification"
)

type notificationRow struct {
	ID           string    `db:"id"`
	Type         string    `db:"type"`
	Title        string    `db:"title"`
	Message      string    `db:"message"`
	RelatedID    string    `db:"related_id"`
	Audience     string    `db:"target_user_type"`
	TargetCampus string    `db:"target_campus"`
	TargetGrade  string    `db:"target_grade"`
	Icon         string    `db:"icon"`
	IsRead       bool      `db:"is_read"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r notificationRow) toNotification() notification.Notification {
	return notification.Notification{
		ID:           r.ID,
		Type:         r.Type,
		Title:        r.Title,
		Message:      r.Message,
		RelatedID:    r.RelatedID,
		Audience:     notification.Audience(r.Audience),
		TargetCampus: r.TargetCampus,
		TargetGrade:  r.TargetGrade,
		Icon:         r.Icon,
		IsRead:       r.IsRead,
		CreatedAt:    r.CreatedAt,
	}
}

func newNotificationRow(n notification.Notification) notificationRow {
	return notificationRow{
		ID:           n.ID,
		Type:         n.Type,
		Title:        n.Title,
		Message:      n.Message,
		RelatedID:    n.RelatedID,
		Audience:     string(n.Audience),
		TargetCampus: n.TargetCampus,
		TargetGrade:  n.TargetGrade,
		Icon:         n.Icon,
		IsRead:       n.IsRead,
		CreatedAt:    n.CreatedAt.UTC(),
	}
}

type notificationRepository struct {
	db *sqlx.DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *sqlx.DB) notification.Repository {
	return &notificationRepository{db: db}
}

func (repo *notificationRepository) CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	const q = `
		INSERT INTO notifications (id, type, title, message, related_id, target_user_type, target_campus, target_grade, icon, is_read, created_at)
		VALUES (:id, :type, :title, :message, :related_id, :target_user_type, :target_campus, :target_grade, :icon, :is_read, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, newNotificationRow(n)); err != nil {
		return notification.Notification{}, errors.Wrap(err, "creating notification")
	}
	return n, nil
}

// visibleWhere renders the viewer's visibility predicate as a WHERE clause so
// queries filter in the database rather than over every row in memory.
func visibleWhere(v notification.Viewer) (string, []interface{}) {
	switch v.Role {
	case identity.RoleAdmin:
		return `target_user_type IN ('admin', 'admin_and_teachers', 'admin_and_students')`, nil
	case identity.RoleTeacher:
		return `((target_user_type = 'teacher' AND target_campus = $1) OR target_user_type IN ('all_teachers', 'admin_and_teachers'))`,
			[]interface{}{v.Campus}
	case identity.RoleStudent:
		return `((target_user_type = 'student' AND target_campus = $1 AND target_grade = $2) OR target_user_type IN ('all_students', 'admin_and_students'))`,
			[]interface{}{v.Campus, v.Grade}
	}
	return `FALSE`, nil
}

func (repo *notificationRepository) QueryFor(ctx context.Context, v notification.Viewer, limit int) ([]notification.Notification, error) {
	where, args := visibleWhere(v)
	args = append(args, limit)
	q := fmt.Sprintf(`SELECT * FROM notifications WHERE %s ORDER BY created_at DESC LIMIT $%d`, where, len(args))

	var rows []notificationRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	notifs := make([]notification.Notification, 0, len(rows))
	for _, row := range rows {
		notifs = append(notifs, row.toNotification())
	}
	return notifs, nil
}

func (repo *notificationRepository) CountUnreadFor(ctx context.Context, v notification.Viewer) (int, error) {
	where, args := visibleWhere(v)
	q := `SELECT COUNT(*) FROM notifications WHERE is_read = FALSE AND ` + where
	var count int
	if err := repo.db.GetContext(ctx, &count, q, args...); err != nil {
		return 0, errors.Wrap(err, "counting unread notifications")
	}
	return count, nil
}

func (repo *notificationRepository) MarkRead(ctx context.Context, id string) error {
	const q = `UPDATE notifications SET is_read = TRUE WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q, id)
	if err != nil {
		return errors.Wrap(err, "marking notification read")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notification.ErrNotFound
	}
	return nil
}

func (repo *notificationRepository) MarkAllReadFor(ctx context.Context, v notification.Viewer) error {
	where, args := visibleWhere(v)
	q := `UPDATE notifications SET is_read = TRUE WHERE is_read = FALSE AND ` + where
	if _, err := repo.db.ExecContext(ctx, q, args...); err != nil {
		return errors.Wrap(err, "marking notifications read")
	}
	return nil
}
