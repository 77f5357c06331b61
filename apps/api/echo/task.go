package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kostask/taskboard/core/identity"
	"github.com/kostask/taskboard/core/policy"
	"github.com/kostask/taskboard/core/task"
)

type taskApi struct {
	taskSvc     *task.Service
	identitySvc *identity.Service
	policy      *policy.Policy
}

func registerTaskAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := taskApi{taskSvc: deps.TaskSvc, identitySvc: deps.IdentitySvc, policy: deps.Policy}

	admin := g.Group("/admin", jwt, roleMiddleware(deps.Policy, identity.RoleAdmin))
	admin.GET("/tasks", api.adminQueryTasks)
	admin.POST("/tasks", api.adminCreateTask)
	admin.GET("/tasks/:id", api.adminRetrieveTask)
	admin.PUT("/tasks/:id", api.adminUpdateTask)
	admin.DELETE("/tasks/:id", api.adminDestroyTask)
	admin.GET("/tasks/:id/submissions", api.adminQueryTaskSubmissions)
	admin.GET("/tasks/:id/submissions/:studentID", api.adminRetrieveSubmission)
	admin.GET("/progress", api.adminProgress)

	teacher := g.Group("/teacher", jwt, roleMiddleware(deps.Policy, identity.RoleTeacher))
	teacher.GET("/dashboard", api.teacherDashboard)
	teacher.GET("/tasks", api.teacherQueryTasks)
	teacher.POST("/tasks", api.teacherCreateTask)
	teacher.GET("/tasks/:id", api.teacherRetrieveTask)
	teacher.PUT("/tasks/:id", api.teacherUpdateTask)
	teacher.DELETE("/tasks/:id", api.teacherDestroyTask)
	teacher.GET("/tasks/:id/submissions/:studentID", api.teacherRetrieveSubmission)

	student := g.Group("/student", jwt, roleMiddleware(deps.Policy, identity.RoleStudent))
	student.GET("/dashboard", api.studentDashboard)
	student.POST("/submissions", api.studentSubmit)
}

// Admin handlers

func (api *taskApi) adminQueryTasks(ctx echo.Context) error {
	tasks, err := api.taskSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying tasks")
	}
	return ctx.JSON(http.StatusOK, tasks)
}

func (api *taskApi) adminCreateTask(ctx echo.Context) error {
	var data task.NewTask
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTask")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	t, err := api.taskSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating task")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *taskApi) adminRetrieveTask(ctx echo.Context) error {
	t, err := api.taskSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *taskApi) adminUpdateTask(ctx echo.Context) error {
	var data task.UpdateTask
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTask")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	t, err := api.taskSvc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *taskApi) adminDestroyTask(ctx echo.Context) error {
	if err := api.taskSvc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *taskApi) adminQueryTaskSubmissions(ctx echo.Context) error {
	subs, err := api.taskSvc.QuerySubmissionsByTask(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying task submissions")
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *taskApi) adminRetrieveSubmission(ctx echo.Context) error {
	sub, err := api.taskSvc.GetSubmission(ctx.Request().Context(), ctx.Param("studentID"), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *taskApi) adminProgress(ctx echo.Context) error {
	data, err := api.progressData(ctx, ctx.QueryParam("campus"))
	if err != nil {
		return errors.Wrap(err, "computing progress data")
	}
	return ctx.JSON(http.StatusOK, data)
}

// Teacher handlers

func (api *taskApi) teacherDashboard(ctx echo.Context) error {
	teacher, err := getContextIdentity(ctx, api.identitySvc)
	if err != nil {
		return err
	}
	rctx := ctx.Request().Context()

	students, err := api.identitySvc.CountByRoleCampus(rctx, identity.RoleStudent, teacher.Campus)
	if err != nil {
		return errors.Wrap(err, "counting campus students")
	}
	tasks, err := api.taskSvc.QueryForCampus(rctx, teacher.Campus)
	if err != nil {
		return errors.Wrap(err, "querying campus tasks")
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"campus":         teacher.Campus,
		"total_students": students,
		"total_tasks":    len(tasks),
		"tasks":          tasks,
	})
}

func (api *taskApi) teacherQueryTasks(ctx echo.Context) error {
	teacher, err := getContextIdentity(ctx, api.identitySvc)
	if err != nil {
		return err
	}
	tasks, err := api.taskSvc.QueryForCampus(ctx.Request().Context(), teacher.Campus)
	if err != nil {
		return errors.Wrap(err, "querying campus tasks")
	}
	return ctx.JSON(http.StatusOK, tasks)
}

func (api *taskApi) teacherCreateTask(ctx echo.Context) error {
	teacher, err := getContextIdentity(ctx, api.identitySvc)
	if err != nil {
		return err
	}
	if err = api.policy.RequireCapability(teacher, policy.CapManageTasks); err != nil {
		return err
	}

	var data task.NewTask
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTask")
	}
	// teacher-authored tasks target exactly the teacher's campus
	data.CampusTargets = api.policy.ScopeToCampus(teacher, data.CampusTargets)
	if err = data.Validate(); err != nil {
		return err
	}

	t, err := api.taskSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating task")
	}
	return ctx.JSON(http.StatusCreated, t)
}

// ownTask resolves a task and denies unless it targets the teacher's campus.
func (api *taskApi) ownTask(ctx echo.Context, teacher identity.Identity) (task.Task, error) {
	t, err := api.taskSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return task.Task{}, err
	}
	if err = api.policy.RequireOwnTask(teacher, t); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

func (api *taskApi) teacherRetrieveTask(ctx echo.Context) error {
	teacher, err := getContextIdentity(ctx, api.identitySvc)
	if err != nil {
		return err
	}
	t, err := api.ownTask(ctx, teacher)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *taskApi) teacherUpdateTask(ctx echo.Context) error {
	teacher, err := getContextIdentity(ctx, api.identitySvc)
	if err != nil {
		return err
	}
	if err = api.policy.RequireCapability(teacher, policy.CapManageTasks); err != nil {
		return err
	}
	t, err := api.ownTask(ctx, teacher)
	if err != nil {
		return err
	}

	var data task.UpdateTask
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTask")
	}
	if len(data.CampusTargets) > 0 {
		data.CampusTargets = api.policy.ScopeToCampus(teacher, data.CampusTargets)
	}
	if err = data.Validate(); err != nil {
		return err
	}

	t, err = api.taskSvc.Update(ctx.Request().Context(), t.ID, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *taskApi) teacherDestroyTask(ctx echo.Context) error {
	teacher, err := getContextIdentity(ctx, api.identitySvc)
	if err != nil {
		return err
	}
	if err = api.policy.RequireCapability(teacher, policy.CapManageTasks); err != nil {
		return err
	}
	t, err := api.ownTask(ctx, teacher)
	if err != nil {
		return err
	}

	if err = api.taskSvc.Delete(ctx.Request().Context(), t.ID); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *taskApi) teacherRetrieveSubmission(ctx echo.Context) error {
	teacher, err := getContextIdentity(ctx, api.identitySvc)
	if err != nil {
		return err
	}
	t, err := api.ownTask(ctx, teacher)
	if err != nil {
		return err
	}

	sub, err := api.taskSvc.GetSubmission(ctx.Request().Context(), ctx.Param("studentID"), t.ID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}

// Student handlers

type studentTask struct {
	task.Task
	Completed  bool             `json:"completed"`
	Submission *task.Submission `json:"submission,omitempty"`
}

func (api *taskApi) studentDashboard(ctx echo.Context) error {
	student, err := getContextIdentity(ctx, api.identitySvc)
	if err != nil {
		return err
	}
	rctx := ctx.Request().Context()

	tasks, err := api.taskSvc.QueryForStudent(rctx, student.Campus, student.Grade)
	if err != nil {
		return errors.Wrap(err, "querying assigned tasks")
	}

	assigned := make([]studentTask, 0, len(tasks))
	var completed int
	for _, t := range tasks {
		st := studentTask{Task: t}
		sub, err := api.taskSvc.GetSubmission(rctx, student.ExternalID, t.ID)
		if err == nil {
			st.Completed = true
			st.Submission = &sub
			completed++
		} else if errors.Cause(err) != task.ErrSubmissionNotFound {
			return errors.Wrap(err, "getting submission")
		}
		assigned = append(assigned, st)
	}

	return ctx.JSON(http.StatusOK, echo.Map{
		"student":         student,
		"tasks":           assigned,
		"total_tasks":     len(assigned),
		"completed_tasks": completed,
	})
}

func (api *taskApi) studentSubmit(ctx echo.Context) error {
	student, err := getContextIdentity(ctx, api.identitySvc)
	if err != nil {
		return err
	}

	var data task.NewSubmission
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	sub, err := api.taskSvc.Submit(ctx.Request().Context(), student, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, sub)
}
