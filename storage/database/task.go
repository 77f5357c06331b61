package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/kostask/taskboard/core/task"
)

// taskRow JSON-encodes the target sets; the domain never sees the encoding.
type taskRow struct {
	ID            string    `db:"id"`
	Title         string    `db:"title"`
	Description   string    `db:"description"`
	Language      string    `db:"language"`
	CampusTargets string    `db:"campus_targets"`
	GradeTargets  string    `db:"grade_targets"`
	CreatedAt     time.Time `db:"created_at"`
}

func (r taskRow) toTask() (task.Task, error) {
	t := task.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Language:    r.Language,
		CreatedAt:   r.CreatedAt,
	}
	if err := json.Unmarshal([]byte(r.CampusTargets), &t.CampusTargets); err != nil {
		return task.Task{}, errors.Wrap(err, "decoding campus targets")
	}
	if err := json.Unmarshal([]byte(r.GradeTargets), &t.GradeTargets); err != nil {
		return task.Task{}, errors.Wrap(err, "decoding grade targets")
	}
	return t, nil
}

func newTaskRow(t task.Task) (taskRow, error) {
	campuses, err := json.Marshal(t.CampusTargets)
	if err != nil {
		return taskRow{}, errors.Wrap(err, "encoding campus targets")
	}
	grades, err := json.Marshal(t.GradeTargets)
	if err != nil {
		return taskRow{}, errors.Wrap(err, "encoding grade targets")
	}
	return taskRow{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Language:      t.Language,
		CampusTargets: string(campuses),
		GradeTargets:  string(grades),
		CreatedAt:     t.CreatedAt.UTC(),
	}, nil
}

type submissionRow struct {
	ID          string    `db:"id"`
	StudentID   string    `db:"student_id"`
	TaskID      string    `db:"task_id"`
	Code        string    `db:"code"`
	Output      string    `db:"output"`
	Status      string    `db:"status"`
	SubmittedAt time.Time `db:"submitted_at"`
}

func (r submissionRow) toSubmission() task.Submission {
	return task.Submission(r)
}

type taskRepository struct {
	db *sqlx.DB
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *sqlx.DB) task.Repository {
	return &taskRepository{db: db}
}

func (repo *taskRepository) CreateTask(ctx context.Context, t task.Task) (task.Task, error) {
	row, err := newTaskRow(t)
	if err != nil {
		return task.Task{}, err
	}
	const q = `
		INSERT INTO tasks (id, title, description, language, campus_targets, grade_targets, created_at)
		VALUES (:id, :title, :description, :language, :campus_targets, :grade_targets, :created_at)`
	if _, err = repo.db.NamedExecContext(ctx, q, row); err != nil {
		return task.Task{}, errors.Wrap(err, "creating task")
	}
	return t, nil
}

func (repo *taskRepository) GetTaskByID(ctx context.Context, id string) (task.Task, error) {
	const q = `SELECT * FROM tasks WHERE id = $1`
	var row taskRow
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, errors.Wrap(err, "getting task")
	}
	return row.toTask()
}

func (repo *taskRepository) QueryAllTasks(ctx context.Context) ([]task.Task, error) {
	const q = `SELECT * FROM tasks ORDER BY created_at DESC`
	var rows []taskRow
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying tasks")
	}
	tasks := make([]task.Task, 0, len(rows))
	for _, row := range rows {
		t, err := row.toTask()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (repo *taskRepository) UpdateTask(ctx context.Context, t task.Task) (task.Task, error) {
	row, err := newTaskRow(t)
	if err != nil {
		return task.Task{}, err
	}
	const q = `
		UPDATE tasks SET
			title = :title, description = :description, language = :language,
			campus_targets = :campus_targets, grade_targets = :grade_targets
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return task.Task{}, errors.Wrap(err, "updating task")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return task.Task{}, task.ErrNotFound
	}
	return t, nil
}

func (repo *taskRepository) DeleteTask(ctx context.Context, id string) error {
	const q = `DELETE FROM tasks WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q, id)
	if err != nil {
		return errors.Wrap(err, "deleting task")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return task.ErrNotFound
	}
	return nil
}

func (repo *taskRepository) CountTasks(ctx context.Context) (int, error) {
	const q = `SELECT COUNT(*) FROM tasks`
	var count int
	if err := repo.db.GetContext(ctx, &count, q); err != nil {
		return 0, errors.Wrap(err, "counting tasks")
	}
	return count, nil
}

func (repo *taskRepository) CreateSubmission(ctx context.Context, sub task.Submission) (task.Submission, error) {
	const q = `
		INSERT INTO submissions (id, student_id, task_id, code, output, status, submitted_at)
		VALUES (:id, :student_id, :task_id, :code, :output, :status, :submitted_at)`
	row := submissionRow(sub)
	row.SubmittedAt = row.SubmittedAt.UTC()
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return task.Submission{}, errors.Wrap(err, "creating submission")
	}
	return sub, nil
}

func (repo *taskRepository) GetLatestSubmission(ctx context.Context, studentID, taskID string) (task.Submission, error) {
	const q = `
		SELECT * FROM submissions
		WHERE student_id = $1 AND task_id = $2
		ORDER BY submitted_at DESC LIMIT 1`
	var row submissionRow
	if err := repo.db.GetContext(ctx, &row, q, studentID, taskID); err != nil {
		if err == sql.ErrNoRows {
			return task.Submission{}, task.ErrSubmissionNotFound
		}
		return task.Submission{}, errors.Wrap(err, "getting submission")
	}
	return row.toSubmission(), nil
}

func (repo *taskRepository) querySubmissions(ctx context.Context, q string, args ...interface{}) ([]task.Submission, error) {
	var rows []submissionRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	subs := make([]task.Submission, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, row.toSubmission())
	}
	return subs, nil
}

func (repo *taskRepository) QuerySubmissionsByStudent(ctx context.Context, studentID string) ([]task.Submission, error) {
	const q = `SELECT * FROM submissions WHERE student_id = $1 ORDER BY submitted_at DESC`
	return repo.querySubmissions(ctx, q, studentID)
}

func (repo *taskRepository) QuerySubmissionsByTask(ctx context.Context, taskID string) ([]task.Submission, error) {
	const q = `SELECT * FROM submissions WHERE task_id = $1 ORDER BY submitted_at DESC`
	return repo.querySubmissions(ctx, q, taskID)
}

func (repo *taskRepository) CountSubmissionsByTask(ctx context.Context, taskID string) (int, error) {
	const q = `SELECT COUNT(*) FROM submissions WHERE task_id = $1`
	var count int
	if err := repo.db.GetContext(ctx, &count, q, taskID); err != nil {
		return 0, errors.Wrap(err, "counting submissions")
	}
	return count, nil
}
