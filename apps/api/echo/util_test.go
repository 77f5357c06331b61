package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kostask/taskboard/core"
	"github.com/kostask/taskboard/core/identity"
	"github.com/kostask/taskboard/core/notification"
	"github.com/kostask/taskboard/core/policy"
	"github.com/kostask/taskboard/core/task"
	advisorsvc "github.com/kostask/taskboard/services/codeadvisor"
	dummydb "github.com/kostask/taskboard/storage/database/dummy"
)

type testMailer struct {
	sent []*core.EmailMessage
}

func (m *testMailer) SendMessages(messages ...*core.EmailMessage) {
	m.sent = append(m.sent, messages...)
}

type testDeps struct {
	conf        *core.Config
	identitySvc *identity.Service
	taskSvc     *task.Service
	notifSvc    *notification.Service
	advisor     *advisorsvc.DummyAdvisor
	mailer      *testMailer
}

func setupServer(t *testing.T) (Server, *testDeps) {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setupServer() failed: %v", err)
	}

	conf := core.NewTestConfig()
	logger := core.NewStdLogger(log.New(ioutil.Discard, "", 0))
	mailer := &testMailer{}

	notifRepo := dummydb.NewNotificationRepository(db)
	engine := notification.NewEngine(notifRepo, logger)
	notifSvc := notification.NewService(notifRepo)
	identitySvc := identity.NewService(dummydb.NewIdentityRepository(db), engine, mailer, logger, conf)
	taskSvc := task.NewService(dummydb.NewTaskRepository(db), engine)
	advisor := advisorsvc.NewDummyAdvisor()

	srv := NewServer(ServerDeps{
		Conf:            conf,
		Logger:          logger,
		IdentitySvc:     identitySvc,
		TaskSvc:         taskSvc,
		NotificationSvc: notifSvc,
		Advisor:         advisor,
		Policy:          policy.New(policy.DefaultConfig()),
		DisableReqLogs:  true,
	})

	return srv, &testDeps{
		conf:        conf,
		identitySvc: identitySvc,
		taskSvc:     taskSvc,
		notifSvc:    notifSvc,
		advisor:     advisor,
		mailer:      mailer,
	}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, idt identity.Identity) string {
	t.Helper()
	token, err := GenerateToken(GetIdentityClaims(idt))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func externalIDs(idts []identity.Identity) []string {
	ids := make([]string, 0, len(idts))
	for _, idt := range idts {
		ids = append(ids, idt.ExternalID)
	}
	return ids
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decoding response %q failed: %v", rec.Body.String(), err)
	}
}

// seedAdmin provisions an admin account and returns it with a valid token.
func seedAdmin(t *testing.T, deps *testDeps) (identity.Identity, string) {
	t.Helper()
	admin, err := deps.identitySvc.CreateAdmin(context.Background(), "admin", "admin-pass")
	if err != nil {
		t.Fatalf("seedAdmin() failed: %v", err)
	}
	return admin, getToken(t, admin)
}

func seedTeacher(t *testing.T, deps *testDeps, campus string, canStudents, canTasks bool) (identity.Identity, string) {
	t.Helper()
	teacher, err := deps.identitySvc.CreateTeacher(context.Background(), identity.NewTeacher{
		Name:              "Ravi",
		Campus:            campus,
		CanManageStudents: canStudents,
		CanManageTasks:    canTasks,
	})
	if err != nil {
		t.Fatalf("seedTeacher() failed: %v", err)
	}
	return teacher, getToken(t, teacher)
}

func seedStudent(t *testing.T, deps *testDeps, campus, grade string) (identity.Identity, string) {
	t.Helper()
	student, err := deps.identitySvc.CreateStudent(context.Background(), identity.NewStudent{
		Name:   "Asha",
		Campus: campus,
		Grade:  grade,
	})
	if err != nil {
		t.Fatalf("seedStudent() failed: %v", err)
	}
	return student, getToken(t, student)
}

func seedTask(t *testing.T, deps *testDeps, campuses, grades []string) task.Task {
	t.Helper()
	tsk, err := deps.taskSvc.Create(context.Background(), task.NewTask{
		Title:         "Blink LED",
		Description:   "make it blink",
		Language:      "arduino",
		CampusTargets: campuses,
		GradeTargets:  grades,
	})
	if err != nil {
		t.Fatalf("seedTask() failed: %v", err)
	}
	return tsk
}
