package notification

import (
	"time"

	"github.com/kostask/taskboard/core/identity"
)

// Audience is the targetUserType of a notification: either a single scoped
// role or one of the broadcast combinations.
type Audience string

const (
	AudienceAdmin            Audience = "admin"
	AudienceTeacher          Audience = "teacher"
	AudienceStudent          Audience = "student"
	AudienceAllTeachers      Audience = "all_teachers"
	AudienceAllStudents      Audience = "all_students"
	AudienceAdminAndTeachers Audience = "admin_and_teachers"
	AudienceAdminAndStudents Audience = "admin_and_students"
)

// Notification kinds.
const (
	TypeTask       = "task"
	TypeStudent    = "student"
	TypeTeacher    = "teacher"
	TypeSubmission = "submission"
)

// Dashboard icons.
const (
	IconBell       = "fas fa-bell"
	IconTask       = "fas fa-tasks"
	IconStudent    = "fas fa-user-graduate"
	IconTeacher    = "fas fa-chalkboard-teacher"
	IconSubmission = "fas fa-check-circle"
)

// Notification is a denormalized record derived from an entity mutation.
// RelatedID is a loose back-reference; no referential integrity is kept.
type Notification struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	RelatedID    string    `json:"related_id,omitempty"`
	Audience     Audience  `json:"target_user_type"`
	TargetCampus string    `json:"target_campus,omitempty"`
	TargetGrade  string    `json:"target_grade,omitempty"`
	Icon         string    `json:"icon"`
	IsRead       bool      `json:"is_read"`
	CreatedAt    time.Time `json:"created_at"` // UTC
}

// Viewer identifies who is asking for notifications. Campus is required for
// teachers, Campus and Grade for students.
type Viewer struct {
	Role   identity.Role
	Campus string
	Grade  string
}

// Scoped reports whether the viewer carries every scope value its role
// requires. An unscoped viewer sees nothing (empty result, not an error).
func (v Viewer) Scoped() bool {
	switch v.Role {
	case identity.RoleAdmin:
		return true
	case identity.RoleTeacher:
		return v.Campus != ""
	case identity.RoleStudent:
		return v.Campus != "" && v.Grade != ""
	}
	return false
}

// Predicate decides whether a viewer may see a notification.
type Predicate func(v Viewer, n Notification) bool

// visibility is the per-role predicate table; roles absent from the table see
// nothing.
var visibility = map[identity.Role]Predicate{
	identity.RoleAdmin: func(_ Viewer, n Notification) bool {
		switch n.Audience {
		case AudienceAdmin, AudienceAdminAndTeachers, AudienceAdminAndStudents:
			return true
		}
		return false
	},
	identity.RoleTeacher: func(v Viewer, n Notification) bool {
		if n.Audience == AudienceTeacher {
			return n.TargetCampus == v.Campus
		}
		return n.Audience == AudienceAllTeachers || n.Audience == AudienceAdminAndTeachers
	},
	identity.RoleStudent: func(v Viewer, n Notification) bool {
		if n.Audience == AudienceStudent {
			return n.TargetCampus == v.Campus && n.TargetGrade == v.Grade
		}
		return n.Audience == AudienceAllStudents || n.Audience == AudienceAdminAndStudents
	},
}

// Visible reports whether the notification may be shown to the viewer.
func Visible(v Viewer, n Notification) bool {
	if !v.Scoped() {
		return false
	}
	pred, ok := visibility[v.Role]
	if !ok {
		return false
	}
	return pred(v, n)
}
