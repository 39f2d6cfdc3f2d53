package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mkulima/kilimo/core/messaging"
)

type messagingApi struct {
	svc      *messaging.Service
	validate *validator.Validate
}

func registerMessagingAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := messagingApi{
		svc:      deps.MessagingSvc,
		validate: deps.Validate,
	}

	// public contact form
	g.POST("/messages", api.receiveMessage)

	ng := g.Group("/notifications", jwt)
	ng.POST("", api.notify)
	ng.GET("", api.queryNotifications)
	ng.DELETE("", api.destroyNotifications)

	mg := g.Group("/messages")
	mg.GET("", api.queryMessages, jwt)
	mg.POST("/:id/read", api.markMessageRead, jwt)
	mg.DELETE("", api.destroyMessages, jwt)
}

func (api *messagingApi) notify(ctx echo.Context) error {
	var data messaging.NewNotification
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNotification")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	n, err := api.svc.Notify(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating notification")
	}
	return ctx.JSON(http.StatusCreated, n)
}

func (api *messagingApi) queryNotifications(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	if traineeID := ctx.QueryParam("traineeId"); traineeID != "" {
		notifs, err := api.svc.QueryNotificationsByTrainee(rctx, traineeID)
		if err != nil {
			return errors.Wrap(err, "querying notifications by trainee")
		}
		return ctx.JSON(http.StatusOK, notifs)
	}

	notifs, err := api.svc.QueryAllNotifications(rctx)
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	return ctx.JSON(http.StatusOK, notifs)
}

func (api *messagingApi) destroyNotifications(ctx echo.Context) error {
	var ids IDList
	ids.Bind(ctx)
	if len(ids.IDs) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.DeleteNotifications(ctx.Request().Context(), ids.IDs...); err != nil {
		return errors.Wrap(err, "deleting notifications")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *messagingApi) receiveMessage(ctx echo.Context) error {
	var data messaging.NewMessage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMessage")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	m, err := api.svc.ReceiveMessage(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "receiving message")
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *messagingApi) queryMessages(ctx echo.Context) error {
	messages, err := api.svc.QueryAllMessages(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying messages")
	}
	return ctx.JSON(http.StatusOK, messages)
}

func (api *messagingApi) markMessageRead(ctx echo.Context) error {
	m, err := api.svc.MarkMessageRead(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == messaging.ErrMessageNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "marking message read")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *messagingApi) destroyMessages(ctx echo.Context) error {
	var ids IDList
	ids.Bind(ctx)
	if len(ids.IDs) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.DeleteMessages(ctx.Request().Context(), ids.IDs...); err != nil {
		return errors.Wrap(err, "deleting messages")
	}
	return ctx.NoContent(http.StatusNoContent)
}
