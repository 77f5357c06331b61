package identity

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/kostask/taskboard/core"
)

// Role discriminates the three identity kinds. Role-specific fields on
// Identity are only meaningful for the matching role.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

var AllRoles = []Role{RoleAdmin, RoleTeacher, RoleStudent}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// Default reference data. Campuses partition most scoping rules; the code is
// used as the prefix of generated external IDs.
type Campus struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

var DefaultCampuses = []Campus{
	{Name: "Subhash Nagar", Code: "SUB"},
	{Name: "Yamuna", Code: "YAM"},
	{Name: "I20", Code: "I20"},
}

// DefaultGrades lists "1st Class" .. "10th Class".
var DefaultGrades = defaultGrades()

func defaultGrades() []string {
	grades := make([]string, 0, 10)
	for lvl := 1; lvl <= 10; lvl++ {
		grades = append(grades, fmt.Sprintf("%s Class", ordinal(lvl)))
	}
	return grades
}

func ordinal(n int) string {
	switch n {
	case 1:
		return "1st"
	case 2:
		return "2nd"
	case 3:
		return "3rd"
	default:
		return fmt.Sprintf("%dth", n)
	}
}

var DefaultSections = []string{
	"LL", "HH", "DD", "FF",
	"Tata Boys", "Tata Girls",
	"Google Boys", "Google Girls",
	"Infosys Boys", "Infosys Girls",
	"Adobe", "Adobe Boys", "Adobe Girls",
	"Mahendra Boys", "Mahendra Girls",
	"Verizon Boys", "Verizon Girls",
	"Microsoft Boys", "Microsoft Girls",
}

func campusCode(campus string, fallback string) string {
	for _, c := range DefaultCampuses {
		if c.Name == campus {
			return c.Code
		}
	}
	return fallback
}

// StudentExternalID derives the human-facing ID for the nth student of a
// campus, e.g. "SUB-001".
func StudentExternalID(campus string, sequence int) string {
	return fmt.Sprintf("%s-%03d", campusCode(campus, "STD"), sequence)
}

// TeacherExternalID derives the human-facing ID for the nth teacher of a
// campus, e.g. "SUB-T001".
func TeacherExternalID(campus string, sequence int) string {
	return fmt.Sprintf("%s-T%03d", campusCode(campus, "TCH"), sequence)
}

// Identity is a single authenticated party: admin, teacher or student.
type Identity struct {
	ID         string `json:"id"`
	Role       Role   `json:"role"`
	ExternalID string `json:"external_id"` // admin: username
	Name       string `json:"name"`

	// teacher only
	Email             string `json:"email,omitempty"`
	CanManageStudents bool   `json:"can_manage_students,omitempty"`
	CanManageTasks    bool   `json:"can_manage_tasks,omitempty"`

	// teacher & student
	Campus string `json:"campus,omitempty"`

	// student only
	Grade   string `json:"grade,omitempty"`
	Section string `json:"section,omitempty"`

	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

func (i *Identity) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	i.PasswordHash = hash
	return nil
}

func (i *Identity) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(i.PasswordHash, []byte(pwd))
}

func (i *Identity) IsAdmin() bool   { return i.Role == RoleAdmin }
func (i *Identity) IsTeacher() bool { return i.Role == RoleTeacher }
func (i *Identity) IsStudent() bool { return i.Role == RoleStudent }

// NewStudent contains information needed to enroll a new student.
type NewStudent struct {
	Name     string `json:"name" validate:"required"`
	Campus   string `json:"campus" validate:"required"`
	Grade    string `json:"grade" validate:"required"`
	Section  string `json:"section"`
	Password string `json:"password"`
}

func (ns *NewStudent) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	ns.Campus = core.CleanString(ns.Campus)
	ns.Grade = core.CleanString(ns.Grade)
	ns.Section = core.CleanString(ns.Section)
	return core.Validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an
// existing student; empty fields are left untouched.
type UpdateStudent struct {
	Name     string `json:"name"`
	Campus   string `json:"campus"`
	Grade    string `json:"grade"`
	Section  string `json:"section"`
	Password string `json:"password"`
}

// NewTeacher contains information needed to register a new teacher.
type NewTeacher struct {
	Name              string `json:"name" validate:"required"`
	Email             string `json:"email" validate:"omitempty,email"`
	Campus            string `json:"campus" validate:"required"`
	Password          string `json:"password"`
	CanManageStudents bool   `json:"can_manage_students"`
	CanManageTasks    bool   `json:"can_manage_tasks"`
}

func (nt *NewTeacher) Validate() error {
	nt.Name = core.CleanString(nt.Name)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	nt.Campus = core.CleanString(nt.Campus)
	return core.Validate.Struct(nt)
}

// UpdateTeacher defines what information may be provided to modify an
// existing teacher; nil booleans and empty strings are left untouched.
type UpdateTeacher struct {
	Name              string `json:"name"`
	Email             string `json:"email" validate:"omitempty,email"`
	Campus            string `json:"campus"`
	Password          string `json:"password"`
	CanManageStudents *bool  `json:"can_manage_students"`
	CanManageTasks    *bool  `json:"can_manage_tasks"`
}

func (ut *UpdateTeacher) Validate() error {
	ut.Name = core.CleanString(ut.Name)
	ut.Email = core.CleanString(ut.Email, true /* lower */)
	ut.Campus = core.CleanString(ut.Campus)
	return core.Validate.Struct(ut)
}
