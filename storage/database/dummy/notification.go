package dummydb

import (
	"context"

	"github.com/kostask/taskboard/core/notification"
)

type notificationRepository struct {
	db *notificationTable
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *DB) notification.Repository {
	return &notificationRepository{db: db.notification}
}

func (repo *notificationRepository) CreateNotification(_ context.Context, n notification.Notification) (notification.Notification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.rows = append(repo.db.rows, n)
	return n, nil
}

func (repo *notificationRepository) QueryFor(_ context.Context, v notification.Viewer, limit int) ([]notification.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	// newest first
	rows := make([]notification.Notification, 0, limit)
	for i := len(repo.db.rows) - 1; i >= 0 && len(rows) < limit; i-- {
		if notification.Visible(v, repo.db.rows[i]) {
			rows = append(rows, repo.db.rows[i])
		}
	}
	return rows, nil
}

func (repo *notificationRepository) CountUnreadFor(_ context.Context, v notification.Viewer) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var count int
	for _, row := range repo.db.rows {
		if !row.IsRead && notification.Visible(v, row) {
			count++
		}
	}
	return count, nil
}

func (repo *notificationRepository) MarkRead(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for i, row := range repo.db.rows {
		if row.ID == id {
			repo.db.rows[i].IsRead = true
			return nil
		}
	}
	return notification.ErrNotFound
}

func (repo *notificationRepository) MarkAllReadFor(_ context.Context, v notification.Viewer) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for i, row := range repo.db.rows {
		if !row.IsRead && notification.Visible(v, row) {
			repo.db.rows[i].IsRead = true
		}
	}
	return nil
}
