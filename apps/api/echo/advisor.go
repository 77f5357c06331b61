package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kostask/taskboard/core"
	"github.com/kostask/taskboard/core/task"
)

type (
	ValidateRequest struct {
		TaskID string `json:"task_id" validate:"required"`
		Code   string `json:"code" validate:"required"`
	}

	SimulateRequest struct {
		Code     string `json:"code" validate:"required"`
		Language string `json:"language"`
	}

	GenerateRequest struct {
		Prompt   string `json:"prompt" validate:"required"`
		Language string `json:"language"`
	}

	ChatRequest struct {
		Messages []core.ChatMessage `json:"messages" validate:"required,min=1"`
	}
)

func (r *ValidateRequest) Validate() error { return core.Validate.Struct(r) }
func (r *SimulateRequest) Validate() error { return core.Validate.Struct(r) }
func (r *GenerateRequest) Validate() error { return core.Validate.Struct(r) }
func (r *ChatRequest) Validate() error     { return core.Validate.Struct(r) }

type advisorApi struct {
	advisor core.CodeAdvisor
	taskSvc *task.Service
}

func registerAdvisorAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := advisorApi{advisor: deps.Advisor, taskSvc: deps.TaskSvc}

	ag := g.Group("/advisor", jwt, anyRoleMiddleware())
	ag.POST("/validate", api.validate)
	ag.POST("/simulate", api.simulate)
	ag.POST("/generate", api.generate)
	ag.POST("/chat", api.chat)
}

func (api *advisorApi) validate(ctx echo.Context) error {
	var data ValidateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ValidateRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	t, err := api.taskSvc.GetByID(ctx.Request().Context(), data.TaskID)
	if err != nil {
		return err
	}

	res := api.advisor.Validate(ctx.Request().Context(), data.Code, t.Description)
	return ctx.JSON(http.StatusOK, echo.Map{
		"validation_result": res.Status,
		"feedback":          res.Feedback,
		"errors":            res.Errors,
		"submit_enabled":    res.SubmitEnabled(),
	})
}

func (api *advisorApi) simulate(ctx echo.Context) error {
	var data SimulateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SimulateRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	if data.Language == "" {
		data.Language = "arduino"
	}

	res := api.advisor.Simulate(ctx.Request().Context(), data.Code, data.Language)
	return ctx.JSON(http.StatusOK, res)
}

func (api *advisorApi) generate(ctx echo.Context) error {
	var data GenerateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GenerateRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	if data.Language == "" {
		data.Language = "python"
	}

	code, err := api.advisor.Generate(ctx.Request().Context(), data.Prompt, data.Language)
	if err != nil {
		return errors.Wrap(err, "generating code")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"code": code})
}

func (api *advisorApi) chat(ctx echo.Context) error {
	var data ChatRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChatRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	reply, err := api.advisor.Chat(ctx.Request().Context(), data.Messages)
	if err != nil {
		return errors.Wrap(err, "chatting with advisor")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"reply": reply})
}
