// Package dummydb provides mutex-guarded in-memory repositories used in
// tests and local development.
package dummydb

import (
	"sync"

	"github.com/kostask/taskboard/core/identity"
	"github.com/kostask/taskboard/core/notification"
	"github.com/kostask/taskboard/core/task"
)

type (
	DB struct {
		identity     *identityTable
		task         *taskTable
		submission   *submissionTable
		notification *notificationTable
	}

	identityTable struct {
		sync.RWMutex
		rows []identity.Identity
	}

	taskTable struct {
		sync.RWMutex
		rows []task.Task
	}

	submissionTable struct {
		sync.RWMutex
		rows []task.Submission
	}

	notificationTable struct {
		sync.RWMutex
		rows []notification.Notification
	}
)

func Open() (*DB, error) {
	db := &DB{
		identity:     &identityTable{},
		task:         &taskTable{},
		submission:   &submissionTable{},
		notification: &notificationTable{},
	}
	return db, nil
}
