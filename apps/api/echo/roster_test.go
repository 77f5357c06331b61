package echoapi

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kostask/taskboard/core/identity"
)

func TestAdminRosterCRUD(t *testing.T) {
	srv, deps := setupServer(t)
	_, token := seedAdmin(t, deps)

	// enroll a student
	req, rec := newAuthRequest(http.MethodPost, "/v1/admin/students", token, marshallObj(t, identity.NewStudent{
		Name:   "Asha",
		Campus: "Yamuna",
		Grade:  "3rd Class",
	}))
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create student returned %d; body %s", rec.Code, rec.Body.String())
	}
	var student identity.Identity
	decodeBody(t, rec, &student)
	if student.ExternalID != "YAM-001" {
		t.Errorf("student ExternalID = %q; want %q", student.ExternalID, "YAM-001")
	}
	if student.Section != "LL" {
		t.Errorf("student Section = %q; want default %q", student.Section, "LL")
	}

	// register a teacher
	req, rec = newAuthRequest(http.MethodPost, "/v1/admin/teachers", token, marshallObj(t, identity.NewTeacher{
		Name:           "Ravi",
		Campus:         "Subhash Nagar",
		CanManageTasks: true,
	}))
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create teacher returned %d; body %s", rec.Code, rec.Body.String())
	}
	var teacher identity.Identity
	decodeBody(t, rec, &teacher)
	if teacher.ExternalID != "SUB-T001" {
		t.Errorf("teacher ExternalID = %q; want %q", teacher.ExternalID, "SUB-T001")
	}
	if !teacher.CanManageTasks || teacher.CanManageStudents {
		t.Errorf("teacher capabilities = (%t, %t); want (false, true)", teacher.CanManageStudents, teacher.CanManageTasks)
	}

	// dashboard counts reflect the roster
	req, rec = newAuthRequest(http.MethodGet, "/v1/admin/dashboard", token)
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard returned %d; body %s", rec.Code, rec.Body.String())
	}
	var counts map[string]int
	decodeBody(t, rec, &counts)
	if counts["total_students"] != 1 || counts["total_teachers"] != 1 {
		t.Errorf("dashboard counts = %v; want 1 student and 1 teacher", counts)
	}

	// the roster listings reflect both accounts
	req, rec = newAuthRequest(http.MethodGet, "/v1/admin/students", token)
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list students returned %d; body %s", rec.Code, rec.Body.String())
	}
	var students []identity.Identity
	decodeBody(t, rec, &students)
	assert.ElementsMatch(t, externalIDs(students), []string{"YAM-001"})

	req, rec = newAuthRequest(http.MethodGet, "/v1/admin/teachers", token)
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list teachers returned %d; body %s", rec.Code, rec.Body.String())
	}
	var teachers []identity.Identity
	decodeBody(t, rec, &teachers)
	assert.ElementsMatch(t, externalIDs(teachers), []string{"SUB-T001"})

	// partial update leaves other fields alone
	req, rec = newAuthRequest(http.MethodPut, "/v1/admin/students/"+student.ExternalID, token,
		marshallObj(t, identity.UpdateStudent{Name: "Asha K"}))
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update student returned %d; body %s", rec.Code, rec.Body.String())
	}
	var updated identity.Identity
	decodeBody(t, rec, &updated)
	if updated.Name != "Asha K" {
		t.Errorf("updated Name = %q; want %q", updated.Name, "Asha K")
	}
	if updated.Campus != "Yamuna" || updated.Grade != "3rd Class" {
		t.Errorf("update touched campus/grade: %q, %q", updated.Campus, updated.Grade)
	}

	// remove the student
	req, rec = newAuthRequest(http.MethodDelete, "/v1/admin/students/"+student.ExternalID, token)
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete student returned %d; body %s", rec.Code, rec.Body.String())
	}
	req, rec = newAuthRequest(http.MethodDelete, "/v1/admin/students/"+student.ExternalID, token)
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("deleting a removed student returned %d; want %d", rec.Code, http.StatusNotFound)
	}
}

func TestTeacherQueryStudentsScopedToCampus(t *testing.T) {
	srv, deps := setupServer(t)
	_, token := seedTeacher(t, deps, "Yamuna", false, false)
	seedStudent(t, deps, "Yamuna", "3rd Class")
	seedStudent(t, deps, "Subhash Nagar", "4th Class")

	req, rec := newAuthRequest(http.MethodGet, "/v1/teacher/students", token)
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list students returned %d; body %s", rec.Code, rec.Body.String())
	}
	var students []identity.Identity
	decodeBody(t, rec, &students)
	if len(students) != 1 {
		t.Fatalf("got %d students; want only the teacher's campus", len(students))
	}
	if students[0].Campus != "Yamuna" {
		t.Errorf("student Campus = %q; want %q", students[0].Campus, "Yamuna")
	}
}

func TestTeacherCreateStudent(t *testing.T) {
	srv, deps := setupServer(t)
	_, token := seedTeacher(t, deps, "Yamuna", true, false)

	// the requested campus is ignored; enrollment lands on the teacher's own
	req, rec := newAuthRequest(http.MethodPost, "/v1/teacher/students", token, marshallObj(t, identity.NewStudent{
		Name:   "Asha",
		Campus: "Subhash Nagar",
		Grade:  "3rd Class",
	}))
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create student returned %d; body %s", rec.Code, rec.Body.String())
	}
	var student identity.Identity
	decodeBody(t, rec, &student)
	if student.Campus != "Yamuna" {
		t.Errorf("student Campus = %q; want teacher's campus %q", student.Campus, "Yamuna")
	}
	if student.ExternalID != "YAM-001" {
		t.Errorf("student ExternalID = %q; want %q", student.ExternalID, "YAM-001")
	}
}

func TestTeacherStudentCapabilityDenied(t *testing.T) {
	srv, deps := setupServer(t)
	_, token := seedTeacher(t, deps, "Yamuna", false, true)
	student, _ := seedStudent(t, deps, "Yamuna", "3rd Class")

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/v1/teacher/students"},
		{http.MethodPut, "/v1/teacher/students/" + student.ExternalID},
		{http.MethodDelete, "/v1/teacher/students/" + student.ExternalID},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("%s %s", tc.method, tc.path), func(t *testing.T) {
			req, rec := newAuthRequest(tc.method, tc.path, token, marshallObj(t, identity.NewStudent{
				Name: "Asha", Campus: "Yamuna", Grade: "3rd Class",
			}))
			srv.ServeHTTP(rec, req)

			if rec.Code != http.StatusForbidden {
				t.Fatalf("returned %d; want %d; body %s", rec.Code, http.StatusForbidden, rec.Body.String())
			}
			var resp map[string]string
			decodeBody(t, rec, &resp)
			if resp["redirect"] != "/teacher/students" {
				t.Errorf("redirect = %q; want %q", resp["redirect"], "/teacher/students")
			}
		})
	}
}

func TestTeacherCannotTouchOtherCampusStudent(t *testing.T) {
	srv, deps := setupServer(t)
	_, token := seedTeacher(t, deps, "Yamuna", true, false)
	other, _ := seedStudent(t, deps, "Subhash Nagar", "4th Class")

	req, rec := newAuthRequest(http.MethodPut, "/v1/teacher/students/"+other.ExternalID, token,
		marshallObj(t, identity.UpdateStudent{Name: "Hacked"}))
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("update returned %d; want %d; body %s", rec.Code, http.StatusForbidden, rec.Body.String())
	}

	req, rec = newAuthRequest(http.MethodDelete, "/v1/teacher/students/"+other.ExternalID, token)
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("delete returned %d; want %d", rec.Code, http.StatusForbidden)
	}

	// the student is untouched
	got, err := deps.identitySvc.GetStudent(context.Background(), other.ExternalID)
	if err != nil {
		t.Fatalf("GetStudent() failed: %v", err)
	}
	if got.Name != other.Name {
		t.Errorf("student Name = %q; want %q", got.Name, other.Name)
	}
}

func TestTeacherUpdateCannotMoveCampus(t *testing.T) {
	srv, deps := setupServer(t)
	_, token := seedTeacher(t, deps, "Yamuna", true, false)
	student, _ := seedStudent(t, deps, "Yamuna", "3rd Class")

	req, rec := newAuthRequest(http.MethodPut, "/v1/teacher/students/"+student.ExternalID, token,
		marshallObj(t, map[string]string{"name": "Asha K", "campus": "Subhash Nagar"}))
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update returned %d; body %s", rec.Code, rec.Body.String())
	}
	var updated identity.Identity
	decodeBody(t, rec, &updated)
	if updated.Name != "Asha K" {
		t.Errorf("updated Name = %q; want %q", updated.Name, "Asha K")
	}
	if updated.Campus != "Yamuna" {
		t.Errorf("updated Campus = %q; campus moves are reserved for admins", updated.Campus)
	}
}
