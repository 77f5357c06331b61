package notification

import (
	"testing"

	"github.com/kostask/taskboard/core/identity"
)

func TestViewerScoped(t *testing.T) {
	tests := []struct {
		name string
		v    Viewer
		want bool
	}{
		{"admin needs nothing", Viewer{Role: identity.RoleAdmin}, true},
		{"teacher needs campus", Viewer{Role: identity.RoleTeacher}, false},
		{"teacher with campus", Viewer{Role: identity.RoleTeacher, Campus: "Yamuna"}, true},
		{"student needs campus and grade", Viewer{Role: identity.RoleStudent, Campus: "Yamuna"}, false},
		{"student with both", Viewer{Role: identity.RoleStudent, Campus: "Yamuna", Grade: "3rd Class"}, true},
		{"unknown role", Viewer{Role: "ghost", Campus: "Yamuna"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Scoped(); got != tt.want {
				t.Errorf("Scoped() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestVisible(t *testing.T) {
	admin := Viewer{Role: identity.RoleAdmin}
	teacher := Viewer{Role: identity.RoleTeacher, Campus: "Yamuna"}
	student := Viewer{Role: identity.RoleStudent, Campus: "Yamuna", Grade: "3rd Class"}

	tests := []struct {
		name string
		v    Viewer
		n    Notification
		want bool
	}{
		{"admin sees admin", admin, Notification{Audience: AudienceAdmin}, true},
		{"admin sees admin_and_teachers", admin, Notification{Audience: AudienceAdminAndTeachers}, true},
		{"admin sees admin_and_students", admin, Notification{Audience: AudienceAdminAndStudents}, true},
		{"admin does not see teacher", admin, Notification{Audience: AudienceTeacher, TargetCampus: "Yamuna"}, false},
		{"admin does not see student", admin, Notification{Audience: AudienceStudent, TargetCampus: "Yamuna", TargetGrade: "3rd Class"}, false},

		{"teacher sees own campus", teacher, Notification{Audience: AudienceTeacher, TargetCampus: "Yamuna"}, true},
		{"teacher does not see other campus", teacher, Notification{Audience: AudienceTeacher, TargetCampus: "I20"}, false},
		{"teacher sees all_teachers", teacher, Notification{Audience: AudienceAllTeachers}, true},
		{"teacher sees admin_and_teachers", teacher, Notification{Audience: AudienceAdminAndTeachers}, true},
		{"teacher does not see admin", teacher, Notification{Audience: AudienceAdmin}, false},
		{"teacher does not see student", teacher, Notification{Audience: AudienceStudent, TargetCampus: "Yamuna", TargetGrade: "3rd Class"}, false},

		{"student sees own campus and grade", student, Notification{Audience: AudienceStudent, TargetCampus: "Yamuna", TargetGrade: "3rd Class"}, true},
		{"student does not see other grade", student, Notification{Audience: AudienceStudent, TargetCampus: "Yamuna", TargetGrade: "4th Class"}, false},
		{"student does not see other campus", student, Notification{Audience: AudienceStudent, TargetCampus: "I20", TargetGrade: "3rd Class"}, false},
		{"student sees all_students", student, Notification{Audience: AudienceAllStudents}, true},
		{"student sees admin_and_students", student, Notification{Audience: AudienceAdminAndStudents}, true},
		{"student does not see teacher", student, Notification{Audience: AudienceTeacher, TargetCampus: "Yamuna"}, false},

		{"unscoped teacher sees nothing", Viewer{Role: identity.RoleTeacher}, Notification{Audience: AudienceAllTeachers}, false},
		{"unknown role sees nothing", Viewer{Role: "ghost"}, Notification{Audience: AudienceAdmin}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Visible(tt.v, tt.n); got != tt.want {
				t.Errorf("Visible() = %v; want %v", got, tt.want)
			}
		})
	}
}
