package task

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/kostask/taskboard/core/identity"
)

var (
	// errors
	ErrNotFound           = errors.New("task not found")
	ErrSubmissionNotFound = errors.New("submission not found")
)

// Mutation actions as rendered in notification messages.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// StatusCompleted is the default status recorded with a submission.
const StatusCompleted = "completed"

type (
	Repository interface {
		CreateTask(ctx context.Context, t Task) (Task, error)
		GetTaskByID(ctx context.Context, id string) (Task, error)
		// QueryAllTasks returns every task, newest first.
		QueryAllTasks(ctx context.Context) ([]Task, error)
		UpdateTask(ctx context.Context, t Task) (Task, error)
		DeleteTask(ctx context.Context, id string) error
		CountTasks(ctx context.Context) (int, error)

		CreateSubmission(ctx context.Context, sub Submission) (Submission, error)
		// GetLatestSubmission resolves the (student, task) pair latest-wins;
		// older duplicates stay in storage.
		GetLatestSubmission(ctx context.Context, studentID, taskID string) (Submission, error)
		QuerySubmissionsByStudent(ctx context.Context, studentID string) ([]Submission, error)
		QuerySubmissionsByTask(ctx context.Context, taskID string) ([]Submission, error)
		CountSubmissionsByTask(ctx context.Context, taskID string) (int, error)
	}

	// Notifier is the notification fan-out engine as seen from this package.
	// Calls are best-effort: implementations log failures and never return them.
	Notifier interface {
		TaskChanged(ctx context.Context, t Task, action string)
		SubmissionCreated(ctx context.Context, sub Submission, student identity.Identity, t Task)
	}

	Service struct {
		repo     Repository
		notifier Notifier
	}
)

func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

func (svc *Service) Create(ctx context.Context, nt NewTask) (Task, error) {
	t := Task{
		ID:            uuid.New().String(),
		Title:         nt.Title,
		Description:   nt.Description,
		Language:      nt.Language,
		CampusTargets: nt.CampusTargets,
		GradeTargets:  nt.GradeTargets,
		CreatedAt:     time.Now().UTC(),
	}
	t, err := svc.repo.CreateTask(ctx, t)
	if err != nil {
		return Task{}, err
	}
	svc.notifier.TaskChanged(ctx, t, ActionCreated)
	return t, nil
}

func (svc *Service) Update(ctx context.Context, id string, ut UpdateTask) (Task, error) {
	t, err := svc.repo.GetTaskByID(ctx, id)
	if err != nil {
		return Task{}, err
	}
	if ut.Title != "" {
		t.Title = ut.Title
	}
	if ut.Description != "" {
		t.Description = ut.Description
	}
	if ut.Language != "" {
		t.Language = ut.Language
	}
	if len(ut.CampusTargets) > 0 {
		t.CampusTargets = ut.CampusTargets
	}
	if len(ut.GradeTargets) > 0 {
		t.GradeTargets = ut.GradeTargets
	}

	t, err = svc.repo.UpdateTask(ctx, t)
	if err != nil {
		return Task{}, err
	}
	svc.notifier.TaskChanged(ctx, t, ActionUpdated)
	return t, nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	t, err := svc.repo.GetTaskByID(ctx, id)
	if err != nil {
		return err
	}
	if err = svc.repo.DeleteTask(ctx, id); err != nil {
		return err
	}
	svc.notifier.TaskChanged(ctx, t, ActionDeleted)
	return nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Task, error) {
	return svc.repo.GetTaskByID(ctx, id)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Task, error) {
	return svc.repo.QueryAllTasks(ctx)
}

// QueryForCampus returns tasks whose campus targets include the given campus.
func (svc *Service) QueryForCampus(ctx context.Context, campus string) ([]Task, error) {
	tasks, err := svc.repo.QueryAllTasks(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.TargetsCampus(campus) {
			matched = append(matched, t)
		}
	}
	return matched, nil
}

// QueryForStudent returns tasks assigned to a (campus, grade) pair.
func (svc *Service) QueryForStudent(ctx context.Context, campus, grade string) ([]Task, error) {
	tasks, err := svc.repo.QueryAllTasks(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.AssignedTo(campus, grade) {
			matched = append(matched, t)
		}
	}
	return matched, nil
}

func (svc *Service) Count(ctx context.Context) (int, error) {
	return svc.repo.CountTasks(ctx)
}

// Submit records a student's submission. Resubmission is allowed; every call
// appends a new row and later lookups resolve latest-wins.
func (svc *Service) Submit(ctx context.Context, student identity.Identity, ns NewSubmission) (Submission, error) {
	t, err := svc.repo.GetTaskByID(ctx, ns.TaskID)
	if err != nil {
		return Submission{}, err
	}

	sub := Submission{
		ID:          uuid.New().String(),
		StudentID:   student.ExternalID,
		TaskID:      t.ID,
		Code:        ns.Code,
		Output:      ns.Output,
		Status:      StatusCompleted,
		SubmittedAt: time.Now().UTC(),
	}
	sub, err = svc.repo.CreateSubmission(ctx, sub)
	if err != nil {
		return Submission{}, err
	}
	svc.notifier.SubmissionCreated(ctx, sub, student, t)
	return sub, nil
}

func (svc *Service) GetSubmission(ctx context.Context, studentID, taskID string) (Submission, error) {
	return svc.repo.GetLatestSubmission(ctx, studentID, taskID)
}

func (svc *Service) QuerySubmissionsByStudent(ctx context.Context, studentID string) ([]Submission, error) {
	return svc.repo.QuerySubmissionsByStudent(ctx, studentID)
}

func (svc *Service) QuerySubmissionsByTask(ctx context.Context, taskID string) ([]Submission, error) {
	return svc.repo.QuerySubmissionsByTask(ctx, taskID)
}

func (svc *Service) CompletionCount(ctx context.Context, taskID string) (int, error) {
	return svc.repo.CountSubmissionsByTask(ctx, taskID)
}
