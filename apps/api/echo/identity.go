package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kostask/taskboard/core"
	"github.com/kostask/taskboard/core/identity"
	"github.com/kostask/taskboard/core/policy"
)

type (
	LoginRequest struct {
		Role       identity.Role `json:"role" validate:"required"`
		ExternalID string        `json:"external_id" validate:"required"`
		Password   string        `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token    string        `json:"token"`
		Role     identity.Role `json:"role"`
		Redirect string        `json:"redirect"`
	}
)

func (r *LoginRequest) Validate() error {
	r.ExternalID = core.CleanString(r.ExternalID)
	if err := core.Validate.Struct(r); err != nil {
		return err
	}
	if !r.Role.Valid() {
		return core.NewValidationError(nil, core.FieldError{Field: "role", Error: "unknown role"})
	}
	return nil
}

func dashboardPath(role identity.Role) string {
	switch role {
	case identity.RoleAdmin:
		return policy.AdminDashboardPath
	case identity.RoleTeacher:
		return policy.TeacherDashboardPath
	}
	return policy.StudentDashboardPath
}

type authApi struct {
	identitySvc *identity.Service
}

func registerAuthAPI(g *echo.Group, deps ServerDeps) {
	api := authApi{identitySvc: deps.IdentitySvc}

	ag := g.Group("/auth")
	ag.POST("/login", api.login)
	ag.POST("/logout", api.logout)
}

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := authenticate(ctx, data.Role, data.ExternalID, data.Password, api.identitySvc)
	if err != nil {
		return err
	}
	token, err := GenerateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{
		Token:    token,
		Role:     claims.Role,
		Redirect: dashboardPath(claims.Role),
	})
}

// logout is stateless; clients drop the token. The endpoint exists so the
// frontend has a single place to land on after clearing local state.
func (api *authApi) logout(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"redirect": policy.LoginPath})
}

type rosterApi struct {
	identitySvc *identity.Service
	policy      *policy.Policy
}

func registerRosterAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := rosterApi{identitySvc: deps.IdentitySvc, policy: deps.Policy}

	admin := g.Group("/admin", jwt, roleMiddleware(deps.Policy, identity.RoleAdmin))
	admin.GET("/dashboard", api.adminDashboard)
	admin.GET("/students", api.adminQueryStudents)
	admin.POST("/students", api.adminCreateStudent)
	admin.PUT("/students/:id", api.adminUpdateStudent)
	admin.DELETE("/students/:id", api.adminDestroyStudent)
	admin.GET("/teachers", api.queryTeachers)
	admin.POST("/teachers", api.createTeacher)
	admin.PUT("/teachers/:id", api.updateTeacher)
	admin.DELETE("/teachers/:id", api.destroyTeacher)

	teacher := g.Group("/teacher", jwt, roleMiddleware(deps.Policy, identity.RoleTeacher))
	teacher.GET("/students", api.teacherQueryStudents)
	teacher.POST("/students", api.teacherCreateStudent)
	teacher.PUT("/students/:id", api.teacherUpdateStudent)
	teacher.DELETE("/students/:id", api.teacherDestroyStudent)
}

// Admin handlers

func (api *rosterApi) adminDashboard(ctx echo.Context) error {
	rctx := ctx.Request().Context()

	students, err := api.identitySvc.CountByRole(rctx, identity.RoleStudent)
	if err != nil {
		return errors.Wrap(err, "counting students")
	}
	teachers, err := api.identitySvc.CountByRole(rctx, identity.RoleTeacher)
	if err != nil {
		return errors.Wrap(err, "counting teachers")
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"total_students": students,
		"total_teachers": teachers,
	})
}

func (api *rosterApi) adminQueryStudents(ctx echo.Context) error {
	students, err := api.identitySvc.QueryStudents(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *rosterApi) adminCreateStudent(ctx echo.Context) error {
	var data identity.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	student, err := api.identitySvc.CreateStudent(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, student)
}

func (api *rosterApi) adminUpdateStudent(ctx echo.Context) error {
	var data identity.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}

	student, err := api.identitySvc.UpdateStudent(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, student)
}

func (api *rosterApi) adminDestroyStudent(ctx echo.Context) error {
	if err := api.identitySvc.DeleteStudent(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *rosterApi) queryTeachers(ctx echo.Context) error {
	teachers, err := api.identitySvc.QueryTeachers(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (api *rosterApi) createTeacher(ctx echo.Context) error {
	var data identity.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	teacher, err := api.identitySvc.CreateTeacher(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating teacher")
	}
	return ctx.JSON(http.StatusCreated, teacher)
}

func (api *rosterApi) updateTeacher(ctx echo.Context) error {
	var data identity.UpdateTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTeacher")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	teacher, err := api.identitySvc.UpdateTeacher(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, teacher)
}

func (api *rosterApi) destroyTeacher(ctx echo.Context) error {
	if err := api.identitySvc.DeleteTeacher(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Teacher handlers; everything is scoped to the teacher's own campus.

func (api *rosterApi) teacherQueryStudents(ctx echo.Context) error {
	teacher, err := getContextIdentity(ctx, api.identitySvc)
	if err != nil {
		return err
	}
	students, err := api.identitySvc.QueryStudentsByCampus(ctx.Request().Context(), teacher.Campus)
	if err != nil {
		return errors.Wrap(err, "querying campus students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *rosterApi) teacherCreateStudent(ctx echo.Context) error {
	teacher, err := getContextIdentity(ctx, api.identitySvc)
	if err != nil {
		return err
	}
	if err = api.policy.RequireCapability(teacher, policy.CapManageStudents); err != nil {
		return err
	}

	var data identity.NewStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	// a teacher can only enroll into their own campus
	data.Campus = teacher.Campus
	if err = data.Validate(); err != nil {
		return err
	}

	student, err := api.identitySvc.CreateStudent(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, student)
}

func (api *rosterApi) teacherUpdateStudent(ctx echo.Context) error {
	teacher, err := getContextIdentity(ctx, api.identitySvc)
	if err != nil {
		return err
	}
	if err = api.policy.RequireCapability(teacher, policy.CapManageStudents); err != nil {
		return err
	}

	student, err := api.identitySvc.GetStudent(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if err = api.policy.RequireOwnStudent(teacher, student); err != nil {
		return err
	}

	var data identity.UpdateStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	// campus moves are an admin operation
	data.Campus = ""

	student, err = api.identitySvc.UpdateStudent(ctx.Request().Context(), student.ExternalID, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, student)
}

func (api *rosterApi) teacherDestroyStudent(ctx echo.Context) error {
	teacher, err := getContextIdentity(ctx, api.identitySvc)
	if err != nil {
		return err
	}
	if err = api.policy.RequireCapability(teacher, policy.CapManageStudents); err != nil {
		return err
	}

	student, err := api.identitySvc.GetStudent(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if err = api.policy.RequireOwnStudent(teacher, student); err != nil {
		return err
	}

	if err = api.identitySvc.DeleteStudent(ctx.Request().Context(), student.ExternalID); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
