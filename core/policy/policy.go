// Package policy holds the pure authorization decisions: role gates, campus
// scoping and teacher capability checks. Denials never surface as bare
// "forbidden" signals; each one names the safe landing the boundary should
// send the caller to.
package policy

import (
	"github.com/kostask/taskboard/core/identity"
	"github.com/kostask/taskboard/core/task"
)

// Well-known landing paths.
const (
	LoginPath            = "/login"
	AdminDashboardPath   = "/admin/dashboard"
	TeacherDashboardPath = "/teacher/dashboard"
	StudentDashboardPath = "/student/dashboard"
	TeacherStudentsPath  = "/teacher/students"
	TeacherTasksPath     = "/teacher/tasks"
)

// Capability is a fine-grained permission flag on a teacher account.
type Capability string

const (
	CapManageStudents Capability = "manage_students"
	CapManageTasks    Capability = "manage_tasks"
)

// DeniedError carries the landing the boundary should redirect to instead of
// serving the request.
type DeniedError struct {
	Reason   string
	Redirect string
}

func (e *DeniedError) Error() string { return e.Reason }

func Denied(reason, redirect string) error {
	return &DeniedError{Reason: reason, Redirect: redirect}
}

type (
	// Config makes the role-mismatch redirect targets policy rather than
	// accident: the upstream system sent admin-guard mismatches to the
	// student dashboard and everything else to login, and that behavior is
	// preserved here as the default but stays configurable.
	Config struct {
		MismatchRedirects map[identity.Role]string // guarded role -> redirect
	}

	Policy struct {
		conf Config
	}
)

func DefaultConfig() Config {
	return Config{
		MismatchRedirects: map[identity.Role]string{
			identity.RoleAdmin:   StudentDashboardPath,
			identity.RoleTeacher: LoginPath,
			identity.RoleStudent: LoginPath,
		},
	}
}

func New(conf Config) *Policy {
	return &Policy{conf: conf}
}

// RequireRole denies unless the caller's role equals the guarded role.
func (p *Policy) RequireRole(have, want identity.Role) error {
	if have == want {
		return nil
	}
	redirect, ok := p.conf.MismatchRedirects[want]
	if !ok {
		redirect = LoginPath
	}
	return Denied("role mismatch", redirect)
}

// RequireCapability denies a teacher lacking the permission flag; the landing
// is the corresponding list view, not an error page.
func (p *Policy) RequireCapability(teacher identity.Identity, cap Capability) error {
	switch cap {
	case CapManageStudents:
		if teacher.CanManageStudents {
			return nil
		}
		return Denied("missing capability: manage students", TeacherStudentsPath)
	case CapManageTasks:
		if teacher.CanManageTasks {
			return nil
		}
		return Denied("missing capability: manage tasks", TeacherTasksPath)
	}
	return Denied("unknown capability", LoginPath)
}

// RequireOwnStudent denies a teacher touching a student outside their campus.
func (p *Policy) RequireOwnStudent(teacher, student identity.Identity) error {
	if student.Campus == teacher.Campus {
		return nil
	}
	return Denied("student outside teacher campus", TeacherStudentsPath)
}

// RequireOwnTask denies a teacher touching a task that does not target their
// campus.
func (p *Policy) RequireOwnTask(teacher identity.Identity, t task.Task) error {
	if t.TargetsCampus(teacher.Campus) {
		return nil
	}
	return Denied("task outside teacher campus", TeacherTasksPath)
}

// ScopeToCampus forces a teacher-authored task's campus targets to exactly
// the teacher's own campus.
func (p *Policy) ScopeToCampus(teacher identity.Identity, targets []string) []string {
	return []string{teacher.Campus}
}
