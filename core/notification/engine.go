package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kostask/taskboard/core"
	"github.com/kostask/taskboard/core/identity"
	"github.com/kostask/taskboard/core/task"
)

// Engine derives notification records from entity mutations. Emission is
// best-effort and non-transactional: a failed write is logged and dropped,
// never propagated to the mutation that triggered it. The caller's entity
// write has already been committed by the time the engine runs.
type Engine struct {
	repo   Repository
	logger core.Logger
}

var (
	_ identity.Notifier = (*Engine)(nil)
	_ task.Notifier     = (*Engine)(nil)
)

func NewEngine(repo Repository, logger core.Logger) *Engine {
	return &Engine{repo: repo, logger: logger}
}

func (e *Engine) emit(ctx context.Context, n Notification) {
	n.ID = uuid.New().String()
	n.CreatedAt = time.Now().UTC()
	if n.Icon == "" {
		n.Icon = IconBell
	}
	if _, err := e.repo.CreateNotification(ctx, n); err != nil {
		e.logger.Error(fmt.Sprintf("notification fan-out: %v", err), err)
	}
}

// TaskChanged fans a task mutation out to the admin, every targeted campus's
// teachers, and every targeted (campus, grade) pair's students:
// 1 + |campuses| + |campuses|*|grades| records.
func (e *Engine) TaskChanged(ctx context.Context, t task.Task, action string) {
	e.emit(ctx, Notification{
		Type:      TypeTask,
		Title:     fmt.Sprintf("Task %s", strings.Title(action)),
		Message:   fmt.Sprintf("Task %q has been %s", t.Title, action),
		RelatedID: t.ID,
		Audience:  AudienceAdmin,
		Icon:      IconTask,
	})

	for _, campus := range t.CampusTargets {
		e.emit(ctx, Notification{
			Type:         TypeTask,
			Title:        fmt.Sprintf("New Task %s", strings.Title(action)),
			Message:      fmt.Sprintf("New task %q has been %s for %s campus", t.Title, action, campus),
			RelatedID:    t.ID,
			Audience:     AudienceTeacher,
			TargetCampus: campus,
			Icon:         IconTask,
		})

		for _, grade := range t.GradeTargets {
			e.emit(ctx, Notification{
				Type:         TypeTask,
				Title:        "New Task Assigned",
				Message:      fmt.Sprintf("New task %q has been assigned to your class", t.Title),
				RelatedID:    t.ID,
				Audience:     AudienceStudent,
				TargetCampus: campus,
				TargetGrade:  grade,
				Icon:         IconTask,
			})
		}
	}
}

// StudentChanged fans a student mutation out to the admin and the student's
// campus teachers: 2 records.
func (e *Engine) StudentChanged(ctx context.Context, student identity.Identity, action string) {
	e.emit(ctx, Notification{
		Type:      TypeStudent,
		Title:     fmt.Sprintf("Student %s", strings.Title(action)),
		Message:   fmt.Sprintf("Student %q has been %s to %s campus", student.Name, action, student.Campus),
		RelatedID: student.ExternalID,
		Audience:  AudienceAdmin,
		Icon:      IconStudent,
	})
	e.emit(ctx, Notification{
		Type:         TypeStudent,
		Title:        fmt.Sprintf("New Student %s", strings.Title(action)),
		Message:      fmt.Sprintf("New student %q has been %s to your campus", student.Name, action),
		RelatedID:    student.ExternalID,
		Audience:     AudienceTeacher,
		TargetCampus: student.Campus,
		Icon:         IconStudent,
	})
}

// TeacherChanged notifies the admin only: 1 record.
func (e *Engine) TeacherChanged(ctx context.Context, teacher identity.Identity, action string) {
	e.emit(ctx, Notification{
		Type:      TypeTeacher,
		Title:     fmt.Sprintf("Teacher %s", strings.Title(action)),
		Message:   fmt.Sprintf("Teacher %q has been %s to %s campus", teacher.Name, action, teacher.Campus),
		RelatedID: teacher.ExternalID,
		Audience:  AudienceAdmin,
		Icon:      IconTeacher,
	})
}

// SubmissionCreated notifies the admin and the submitting student's campus
// teachers: 2 records.
func (e *Engine) SubmissionCreated(ctx context.Context, sub task.Submission, student identity.Identity, t task.Task) {
	msg := fmt.Sprintf("Student %q submitted task %q", student.Name, t.Title)
	e.emit(ctx, Notification{
		Type:      TypeSubmission,
		Title:     "Task Submitted",
		Message:   msg,
		RelatedID: sub.ID,
		Audience:  AudienceAdmin,
		Icon:      IconSubmission,
	})
	e.emit(ctx, Notification{
		Type:         TypeSubmission,
		Title:        "Task Submission",
		Message:      msg,
		RelatedID:    sub.ID,
		Audience:     AudienceTeacher,
		TargetCampus: student.Campus,
		Icon:         IconSubmission,
	})
}
