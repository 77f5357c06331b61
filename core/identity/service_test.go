package identity_test

import (
	"context"
	"io/ioutil"
	"log"
	"testing"

	"github.com/kostask/taskboard/core"
	"github.com/kostask/taskboard/core/identity"
	dummydb "github.com/kostask/taskboard/storage/database/dummy"
)

type fakeNotifier struct {
	studentCalls []string
	teacherCalls []string
}

var _ identity.Notifier = (*fakeNotifier)(nil)

func (n *fakeNotifier) StudentChanged(_ context.Context, _ identity.Identity, action string) {
	n.studentCalls = append(n.studentCalls, action)
}

func (n *fakeNotifier) TeacherChanged(_ context.Context, _ identity.Identity, action string) {
	n.teacherCalls = append(n.teacherCalls, action)
}

type fakeMailer struct {
	sent []*core.EmailMessage
}

var _ core.EmailService = (*fakeMailer)(nil)

func (m *fakeMailer) SendMessages(messages ...*core.EmailMessage) {
	m.sent = append(m.sent, messages...)
}

func setup(t *testing.T) (*identity.Service, *fakeNotifier, *fakeMailer) {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	notifier := &fakeNotifier{}
	mailer := &fakeMailer{}
	logger := core.NewStdLogger(log.New(ioutil.Discard, "", 0))
	svc := identity.NewService(dummydb.NewIdentityRepository(db), notifier, mailer, logger, core.NewTestConfig())
	return svc, notifier, mailer
}

func TestCreateStudent(t *testing.T) {
	ctx := context.Background()
	svc, notifier, _ := setup(t)

	student, err := svc.CreateStudent(ctx, identity.NewStudent{
		Name:   "Asha",
		Campus: "Yamuna",
		Grade:  "3rd Class",
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	if student.ExternalID != "YAM-001" {
		t.Errorf("ExternalID = %q; want YAM-001", student.ExternalID)
	}
	if student.Section != "LL" {
		t.Errorf("Section = %q; want default LL", student.Section)
	}
	if student.ID == "" {
		t.Error("ID not generated")
	}
	if err = student.CheckPassword("123456"); err != nil {
		t.Error("default password not set")
	}
	if len(notifier.studentCalls) != 1 || notifier.studentCalls[0] != identity.ActionAdded {
		t.Errorf("notifier calls = %v; want [added]", notifier.studentCalls)
	}

	// sequence is campus-scoped
	second, err := svc.CreateStudent(ctx, identity.NewStudent{Name: "Binod", Campus: "Yamuna", Grade: "4th Class"})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	if second.ExternalID != "YAM-002" {
		t.Errorf("second ExternalID = %q; want YAM-002", second.ExternalID)
	}

	other, err := svc.CreateStudent(ctx, identity.NewStudent{Name: "Chitra", Campus: "I20", Grade: "3rd Class"})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	if other.ExternalID != "I20-001" {
		t.Errorf("other campus ExternalID = %q; want I20-001", other.ExternalID)
	}
}

func TestCreateTeacher(t *testing.T) {
	ctx := context.Background()
	svc, notifier, mailer := setup(t)

	teacher, err := svc.CreateTeacher(ctx, identity.NewTeacher{
		Name:           "Ravi",
		Email:          "ravi@example.com",
		Campus:         "Subhash Nagar",
		CanManageTasks: true,
	})
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	if teacher.ExternalID != "SUB-T001" {
		t.Errorf("ExternalID = %q; want SUB-T001", teacher.ExternalID)
	}
	if !teacher.CanManageTasks || teacher.CanManageStudents {
		t.Errorf("capabilities = (%v, %v); want (false, true)", teacher.CanManageStudents, teacher.CanManageTasks)
	}
	if len(notifier.teacherCalls) != 1 {
		t.Errorf("notifier calls = %v; want 1", notifier.teacherCalls)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("sent %d credential mails; want 1", len(mailer.sent))
	}
	if mailer.sent[0].To[0].Address != "ravi@example.com" {
		t.Errorf("mail to = %q", mailer.sent[0].To[0].Address)
	}

	// no email, no credentials mail
	_, err = svc.CreateTeacher(ctx, identity.NewTeacher{Name: "Sita", Campus: "Subhash Nagar"})
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	if len(mailer.sent) != 1 {
		t.Errorf("sent %d credential mails; want still 1", len(mailer.sent))
	}
}

func TestVerifyCredentials(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setup(t)

	student, err := svc.CreateStudent(ctx, identity.NewStudent{
		Name:     "Asha",
		Campus:   "Yamuna",
		Grade:    "3rd Class",
		Password: "hunter2",
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}

	got, err := svc.VerifyCredentials(ctx, identity.RoleStudent, student.ExternalID, "hunter2")
	if err != nil {
		t.Fatalf("VerifyCredentials() failed: %v", err)
	}
	if got.ID != student.ID {
		t.Errorf("got identity %q; want %q", got.ID, student.ID)
	}

	// bad password and unknown ID are indistinguishable
	if _, err = svc.VerifyCredentials(ctx, identity.RoleStudent, student.ExternalID, "wrong"); err != identity.ErrNotFound {
		t.Errorf("bad password err = %v; want ErrNotFound", err)
	}
	if _, err = svc.VerifyCredentials(ctx, identity.RoleStudent, "YAM-999", "hunter2"); err != identity.ErrNotFound {
		t.Errorf("unknown ID err = %v; want ErrNotFound", err)
	}
	// role is part of the key
	if _, err = svc.VerifyCredentials(ctx, identity.RoleTeacher, student.ExternalID, "hunter2"); err != identity.ErrNotFound {
		t.Errorf("wrong role err = %v; want ErrNotFound", err)
	}
}

func TestUpdateStudent(t *testing.T) {
	ctx := context.Background()
	svc, notifier, _ := setup(t)

	student, err := svc.CreateStudent(ctx, identity.NewStudent{
		Name:    "Asha",
		Campus:  "Yamuna",
		Grade:   "3rd Class",
		Section: "HH",
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}

	// empty fields stay untouched
	updated, err := svc.UpdateStudent(ctx, student.ExternalID, identity.UpdateStudent{Grade: "4th Class"})
	if err != nil {
		t.Fatalf("UpdateStudent() failed: %v", err)
	}
	if updated.Grade != "4th Class" {
		t.Errorf("Grade = %q; want 4th Class", updated.Grade)
	}
	if updated.Name != "Asha" || updated.Campus != "Yamuna" || updated.Section != "HH" {
		t.Errorf("untouched fields changed: %+v", updated)
	}
	if updated.ExternalID != student.ExternalID {
		t.Errorf("ExternalID changed to %q", updated.ExternalID)
	}
	if got := notifier.studentCalls; len(got) != 2 || got[1] != identity.ActionUpdated {
		t.Errorf("notifier calls = %v; want [added updated]", got)
	}
}

func TestDeleteStudent(t *testing.T) {
	ctx := context.Background()
	svc, notifier, _ := setup(t)

	student, err := svc.CreateStudent(ctx, identity.NewStudent{Name: "Asha", Campus: "Yamuna", Grade: "3rd Class"})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}

	if err = svc.DeleteStudent(ctx, student.ExternalID); err != nil {
		t.Fatalf("DeleteStudent() failed: %v", err)
	}
	if _, err = svc.GetStudent(ctx, student.ExternalID); err != identity.ErrNotFound {
		t.Errorf("GetStudent() after delete = %v; want ErrNotFound", err)
	}
	if got := notifier.studentCalls; len(got) != 2 || got[1] != identity.ActionDeleted {
		t.Errorf("notifier calls = %v; want [added deleted]", got)
	}

	if err = svc.DeleteStudent(ctx, student.ExternalID); err != identity.ErrNotFound {
		t.Errorf("second delete = %v; want ErrNotFound", err)
	}
}
