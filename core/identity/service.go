package identity

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/kostask/taskboard/core"
)

var (
	// errors
	ErrNotFound         = errors.New("identity not found")
	ErrExternalIDExists = errors.New("an identity with this ID already exists")
)

// Mutation actions as rendered in notification messages.
const (
	ActionAdded   = "added"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

type (
	Repository interface {
		CreateIdentity(ctx context.Context, idt Identity) (Identity, error)
		GetByExternalID(ctx context.Context, role Role, externalID string) (Identity, error)
		// QueryByRole returns identities of a role, newest first.
		QueryByRole(ctx context.Context, role Role) ([]Identity, error)
		QueryByRoleCampus(ctx context.Context, role Role, campus string) ([]Identity, error)
		QueryStudentsByCampusGrade(ctx context.Context, campus, grade string) ([]Identity, error)
		CountByRole(ctx context.Context, role Role) (int, error)
		CountByRoleCampus(ctx context.Context, role Role, campus string) (int, error)
		UpdateIdentity(ctx context.Context, idt Identity) (Identity, error)
		DeleteIdentity(ctx context.Context, role Role, externalID string) error
	}

	// Notifier is the notification fan-out engine as seen from this package.
	// Calls are best-effort: implementations log failures and never return them.
	Notifier interface {
		StudentChanged(ctx context.Context, student Identity, action string)
		TeacherChanged(ctx context.Context, teacher Identity, action string)
	}

	Service struct {
		repo     Repository
		notifier Notifier
		mailSvc  core.EmailService
		logger   core.Logger
		conf     *core.Config
	}
)

func NewService(repo Repository, notifier Notifier, mailSvc core.EmailService, logger core.Logger, conf *core.Config) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		mailSvc:  mailSvc,
		logger:   logger,
		conf:     conf,
	}
}

// VerifyCredentials authenticates an external ID (admins: username) and
// password for a given role. Returns ErrNotFound for unknown IDs and bad
// passwords alike.
func (svc *Service) VerifyCredentials(ctx context.Context, role Role, externalID, password string) (Identity, error) {
	idt, err := svc.repo.GetByExternalID(ctx, role, core.CleanString(externalID))
	if err != nil {
		return Identity{}, err
	}
	if err = idt.CheckPassword(password); err != nil {
		return Identity{}, ErrNotFound
	}
	return idt, nil
}

// CreateStudent enrolls a student, deriving the external ID from the campus
// code and the campus enrollment sequence.
func (svc *Service) CreateStudent(ctx context.Context, ns NewStudent) (Identity, error) {
	count, err := svc.repo.CountByRoleCampus(ctx, RoleStudent, ns.Campus)
	if err != nil {
		return Identity{}, errors.Wrap(err, "counting campus students")
	}

	pwd := ns.Password
	if pwd == "" {
		pwd = svc.conf.DefaultPassword
	}
	section := ns.Section
	if section == "" {
		section = "LL"
	}

	now := time.Now().UTC()
	student := Identity{
		ID:         uuid.New().String(),
		Role:       RoleStudent,
		ExternalID: StudentExternalID(ns.Campus, count+1),
		Name:       ns.Name,
		Campus:     ns.Campus,
		Grade:      ns.Grade,
		Section:    section,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err = student.SetPassword(pwd); err != nil {
		return Identity{}, err
	}

	student, err = svc.repo.CreateIdentity(ctx, student)
	if err != nil {
		return Identity{}, err
	}
	svc.notifier.StudentChanged(ctx, student, ActionAdded)
	return student, nil
}

func (svc *Service) UpdateStudent(ctx context.Context, externalID string, us UpdateStudent) (Identity, error) {
	student, err := svc.repo.GetByExternalID(ctx, RoleStudent, externalID)
	if err != nil {
		return Identity{}, err
	}
	if name := core.CleanString(us.Name); name != "" {
		student.Name = name
	}
	if campus := core.CleanString(us.Campus); campus != "" {
		student.Campus = campus
	}
	if grade := core.CleanString(us.Grade); grade != "" {
		student.Grade = grade
	}
	if section := core.CleanString(us.Section); section != "" {
		student.Section = section
	}
	if us.Password != "" {
		if err = student.SetPassword(us.Password); err != nil {
			return Identity{}, err
		}
	}
	student.UpdatedAt = time.Now().UTC()

	student, err = svc.repo.UpdateIdentity(ctx, student)
	if err != nil {
		return Identity{}, err
	}
	svc.notifier.StudentChanged(ctx, student, ActionUpdated)
	return student, nil
}

func (svc *Service) DeleteStudent(ctx context.Context, externalID string) error {
	student, err := svc.repo.GetByExternalID(ctx, RoleStudent, externalID)
	if err != nil {
		return err
	}
	if err = svc.repo.DeleteIdentity(ctx, RoleStudent, externalID); err != nil {
		return err
	}
	svc.notifier.StudentChanged(ctx, student, ActionDeleted)
	return nil
}

// CreateTeacher registers a teacher and, when an email is known, mails their
// login credentials.
func (svc *Service) CreateTeacher(ctx context.Context, nt NewTeacher) (Identity, error) {
	count, err := svc.repo.CountByRoleCampus(ctx, RoleTeacher, nt.Campus)
	if err != nil {
		return Identity{}, errors.Wrap(err, "counting campus teachers")
	}

	pwd := nt.Password
	if pwd == "" {
		pwd = svc.conf.DefaultPassword
	}

	now := time.Now().UTC()
	teacher := Identity{
		ID:                uuid.New().String(),
		Role:              RoleTeacher,
		ExternalID:        TeacherExternalID(nt.Campus, count+1),
		Name:              nt.Name,
		Email:             nt.Email,
		Campus:            nt.Campus,
		CanManageStudents: nt.CanManageStudents,
		CanManageTasks:    nt.CanManageTasks,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err = teacher.SetPassword(pwd); err != nil {
		return Identity{}, err
	}

	teacher, err = svc.repo.CreateIdentity(ctx, teacher)
	if err != nil {
		return Identity{}, err
	}
	svc.notifier.TeacherChanged(ctx, teacher, ActionAdded)
	svc.sendCredentials(teacher, pwd)
	return teacher, nil
}

func (svc *Service) UpdateTeacher(ctx context.Context, externalID string, utr UpdateTeacher) (Identity, error) {
	teacher, err := svc.repo.GetByExternalID(ctx, RoleTeacher, externalID)
	if err != nil {
		return Identity{}, err
	}
	if name := core.CleanString(utr.Name); name != "" {
		teacher.Name = name
	}
	if email := core.CleanString(utr.Email, true); email != "" {
		teacher.Email = email
	}
	if campus := core.CleanString(utr.Campus); campus != "" {
		teacher.Campus = campus
	}
	if utr.CanManageStudents != nil {
		teacher.CanManageStudents = *utr.CanManageStudents
	}
	if utr.CanManageTasks != nil {
		teacher.CanManageTasks = *utr.CanManageTasks
	}
	if utr.Password != "" {
		if err = teacher.SetPassword(utr.Password); err != nil {
			return Identity{}, err
		}
	}
	teacher.UpdatedAt = time.Now().UTC()

	teacher, err = svc.repo.UpdateIdentity(ctx, teacher)
	if err != nil {
		return Identity{}, err
	}
	svc.notifier.TeacherChanged(ctx, teacher, ActionUpdated)
	return teacher, nil
}

func (svc *Service) DeleteTeacher(ctx context.Context, externalID string) error {
	teacher, err := svc.repo.GetByExternalID(ctx, RoleTeacher, externalID)
	if err != nil {
		return err
	}
	if err = svc.repo.DeleteIdentity(ctx, RoleTeacher, externalID); err != nil {
		return err
	}
	svc.notifier.TeacherChanged(ctx, teacher, ActionDeleted)
	return nil
}

// CreateAdmin provisions an admin account; used by the operator CLI.
func (svc *Service) CreateAdmin(ctx context.Context, username, password string) (Identity, error) {
	now := time.Now().UTC()
	admin := Identity{
		ID:         uuid.New().String(),
		Role:       RoleAdmin,
		ExternalID: core.CleanString(username, true /* lower */),
		Name:       username,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := admin.SetPassword(password); err != nil {
		return Identity{}, err
	}
	return svc.repo.CreateIdentity(ctx, admin)
}

func (svc *Service) GetStudent(ctx context.Context, externalID string) (Identity, error) {
	return svc.repo.GetByExternalID(ctx, RoleStudent, externalID)
}

func (svc *Service) GetTeacher(ctx context.Context, externalID string) (Identity, error) {
	return svc.repo.GetByExternalID(ctx, RoleTeacher, externalID)
}

func (svc *Service) GetByExternalID(ctx context.Context, role Role, externalID string) (Identity, error) {
	return svc.repo.GetByExternalID(ctx, role, externalID)
}

func (svc *Service) QueryStudents(ctx context.Context) ([]Identity, error) {
	return svc.repo.QueryByRole(ctx, RoleStudent)
}

func (svc *Service) QueryStudentsByCampus(ctx context.Context, campus string) ([]Identity, error) {
	return svc.repo.QueryByRoleCampus(ctx, RoleStudent, campus)
}

func (svc *Service) QueryStudentsByCampusGrade(ctx context.Context, campus, grade string) ([]Identity, error) {
	return svc.repo.QueryStudentsByCampusGrade(ctx, campus, grade)
}

func (svc *Service) QueryTeachers(ctx context.Context) ([]Identity, error) {
	return svc.repo.QueryByRole(ctx, RoleTeacher)
}

func (svc *Service) CountByRole(ctx context.Context, role Role) (int, error) {
	return svc.repo.CountByRole(ctx, role)
}

func (svc *Service) CountByRoleCampus(ctx context.Context, role Role, campus string) (int, error) {
	return svc.repo.CountByRoleCampus(ctx, role, campus)
}

// sendCredentials mails a new teacher their login. Failures are the mail
// service's problem; account creation has already succeeded.
func (svc *Service) sendCredentials(teacher Identity, password string) {
	if svc.mailSvc == nil || teacher.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: teacher.Name, Address: teacher.Email}},
		Subject: "Your teacher account",
		Body: fmt.Sprintf(
			"Hello %s,\n\nYour teacher account for %s campus is ready.\n\nTeacher ID: %s\nPassword: %s\n\nPlease change your password after first login.",
			teacher.Name, teacher.Campus, teacher.ExternalID, password,
		),
	})
}
