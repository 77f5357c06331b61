package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kostask/taskboard/core/notification"
)

type notificationApi struct {
	notifSvc *notification.Service
}

func registerNotificationAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := notificationApi{notifSvc: deps.NotificationSvc}

	ng := g.Group("/notifications", jwt, anyRoleMiddleware())
	ng.GET("", api.query)
	ng.GET("/unread-count", api.unreadCount)
	ng.PUT("/:id/read", api.markRead)
	ng.PUT("/read-all", api.markAllRead)
}

func (api *notificationApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	notifs, err := api.notifSvc.ListFor(ctx.Request().Context(), viewerFromClaims(claims))
	if err != nil {
		return errors.Wrap(err, "listing notifications")
	}
	return ctx.JSON(http.StatusOK, notifs)
}

func (api *notificationApi) unreadCount(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	count, err := api.notifSvc.UnreadCount(ctx.Request().Context(), viewerFromClaims(claims))
	if err != nil {
		return errors.Wrap(err, "counting unread notifications")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"count": count})
}

func (api *notificationApi) markRead(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	if err := api.notifSvc.MarkRead(ctx.Request().Context(), ctx.Param("id"), viewerFromClaims(claims)); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *notificationApi) markAllRead(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	if err := api.notifSvc.MarkAllRead(ctx.Request().Context(), viewerFromClaims(claims)); err != nil {
		return errors.Wrap(err, "marking notifications read")
	}
	return ctx.NoContent(http.StatusNoContent)
}
