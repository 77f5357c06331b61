package task

import (
	"time"

	"github.com/kostask/taskboard/core"
)

// Task is a coding assignment targeted at a set of campuses and grades.
// Target sets are first-class slices here; the storage layer owns whatever
// encoding its engine needs.
type Task struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Language      string    `json:"language"`
	CampusTargets []string  `json:"campus_targets"`
	GradeTargets  []string  `json:"grade_targets"`
	CreatedAt     time.Time `json:"created_at"` // UTC
}

// TargetsCampus reports whether the task is assigned to the given campus.
func (t *Task) TargetsCampus(campus string) bool {
	for _, c := range t.CampusTargets {
		if c == campus {
			return true
		}
	}
	return false
}

// TargetsGrade reports whether the task is assigned to the given grade.
func (t *Task) TargetsGrade(grade string) bool {
	for _, g := range t.GradeTargets {
		if g == grade {
			return true
		}
	}
	return false
}

// AssignedTo reports whether a student at (campus, grade) should see the task.
func (t *Task) AssignedTo(campus, grade string) bool {
	return t.TargetsCampus(campus) && t.TargetsGrade(grade)
}

// Submission records a student's answer to a task. Duplicates per
// (student, task) are allowed: resubmission is supported and lookups resolve
// latest-wins.
type Submission struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"student_id"` // student external ID
	TaskID      string    `json:"task_id"`
	Code        string    `json:"code"`
	Output      string    `json:"output"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"` // UTC
}

// NewTask contains information needed to create a new Task. Both target sets
// must be non-empty.
type NewTask struct {
	Title         string   `json:"title" validate:"required"`
	Description   string   `json:"description" validate:"required"`
	Language      string   `json:"language" validate:"required"`
	CampusTargets []string `json:"campus_targets" validate:"required,min=1"`
	GradeTargets  []string `json:"grade_targets" validate:"required,min=1"`
}

func (nt *NewTask) Validate() error {
	nt.Title = core.CleanString(nt.Title)
	nt.Description = core.CleanString(nt.Description)
	nt.Language = core.CleanString(nt.Language, true /* lower */)
	return core.Validate.Struct(nt)
}

// UpdateTask defines what may be modified on an existing Task; zero fields
// are left untouched, provided target sets must be non-empty.
type UpdateTask struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Language      string   `json:"language"`
	CampusTargets []string `json:"campus_targets" validate:"omitempty,min=1"`
	GradeTargets  []string `json:"grade_targets" validate:"omitempty,min=1"`
}

func (ut *UpdateTask) Validate() error {
	ut.Title = core.CleanString(ut.Title)
	ut.Description = core.CleanString(ut.Description)
	ut.Language = core.CleanString(ut.Language, true /* lower */)
	return core.Validate.Struct(ut)
}

// NewSubmission contains a student's submitted code for a task.
type NewSubmission struct {
	TaskID string `json:"task_id" validate:"required"`
	Code   string `json:"code" validate:"required"`
	Output string `json:"output"`
}

func (ns *NewSubmission) Validate() error {
	return core.Validate.Struct(ns)
}
