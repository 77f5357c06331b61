package dummydb

import (
	"context"

	"github.com/kostask/taskboard/core/task"
)

type taskRepository struct {
	tasks       *taskTable
	submissions *submissionTable
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *DB) task.Repository {
	return &taskRepository{tasks: db.task, submissions: db.submission}
}

func (repo *taskRepository) CreateTask(_ context.Context, t task.Task) (task.Task, error) {
	repo.tasks.Lock()
	defer repo.tasks.Unlock()
	repo.tasks.rows = append(repo.tasks.rows, t)
	return t, nil
}

func (repo *taskRepository) GetTaskByID(_ context.Context, id string) (task.Task, error) {
	repo.tasks.RLock()
	defer repo.tasks.RUnlock()

	for _, row := range repo.tasks.rows {
		if row.ID == id {
			return row, nil
		}
	}
	return task.Task{}, task.ErrNotFound
}

func (repo *taskRepository) QueryAllTasks(_ context.Context) ([]task.Task, error) {
	repo.tasks.RLock()
	defer repo.tasks.RUnlock()

	// newest first
	rows := make([]task.Task, 0, len(repo.tasks.rows))
	for i := len(repo.tasks.rows) - 1; i >= 0; i-- {
		rows = append(rows, repo.tasks.rows[i])
	}
	return rows, nil
}

func (repo *taskRepository) UpdateTask(_ context.Context, t task.Task) (task.Task, error) {
	repo.tasks.Lock()
	defer repo.tasks.Unlock()

	for i, row := range repo.tasks.rows {
		if row.ID == t.ID {
			repo.tasks.rows[i] = t
			return t, nil
		}
	}
	return task.Task{}, task.ErrNotFound
}

func (repo *taskRepository) DeleteTask(_ context.Context, id string) error {
	repo.tasks.Lock()
	defer repo.tasks.Unlock()

	for i, row := range repo.tasks.rows {
		if row.ID == id {
			repo.tasks.rows = append(repo.tasks.rows[:i], repo.tasks.rows[i+1:]...)
			return nil
		}
	}
	return task.ErrNotFound
}

func (repo *taskRepository) CountTasks(_ context.Context) (int, error) {
	repo.tasks.RLock()
	defer repo.tasks.RUnlock()
	return len(repo.tasks.rows), nil
}

func (repo *taskRepository) CreateSubmission(_ context.Context, sub task.Submission) (task.Submission, error) {
	repo.submissions.Lock()
	defer repo.submissions.Unlock()
	repo.submissions.rows = append(repo.submissions.rows, sub)
	return sub, nil
}

func (repo *taskRepository) GetLatestSubmission(_ context.Context, studentID, taskID string) (task.Submission, error) {
	repo.submissions.RLock()
	defer repo.submissions.RUnlock()

	for i := len(repo.submissions.rows) - 1; i >= 0; i-- {
		row := repo.submissions.rows[i]
		if row.StudentID == studentID && row.TaskID == taskID {
			return row, nil
		}
	}
	return task.Submission{}, task.ErrSubmissionNotFound
}

func (repo *taskRepository) QuerySubmissionsByStudent(_ context.Context, studentID string) ([]task.Submission, error) {
	repo.submissions.RLock()
	defer repo.submissions.RUnlock()

	rows := make([]task.Submission, 0)
	for _, row := range repo.submissions.rows {
		if row.StudentID == studentID {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (repo *taskRepository) QuerySubmissionsByTask(_ context.Context, taskID string) ([]task.Submission, error) {
	repo.submissions.RLock()
	defer repo.submissions.RUnlock()

	rows := make([]task.Submission, 0)
	for _, row := range repo.submissions.rows {
		if row.TaskID == taskID {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (repo *taskRepository) CountSubmissionsByTask(_ context.Context, taskID string) (int, error) {
	repo.submissions.RLock()
	defer repo.submissions.RUnlock()

	var count int
	for _, row := range repo.submissions.rows {
		if row.TaskID == taskID {
			count++
		}
	}
	return count, nil
}
