package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mkulima/kilimo/core/housing"
)

type housingApi struct {
	svc      *housing.Service
	validate *validator.Validate
}

func registerHousingAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := housingApi{
		svc:      deps.HousingSvc,
		validate: deps.Validate,
	}

	rg := g.Group("/rooms", jwt)
	rg.POST("", api.createRoom)
	rg.GET("", api.queryRooms)
	rg.GET("/:id", api.retrieveRoom)
	rg.PATCH("/:id", api.updateRoom)
	rg.DELETE("", api.destroyRooms)

	tg := g.Group("/tags", jwt)
	tg.POST("", api.createTag)
	tg.GET("", api.queryTags)
	tg.DELETE("", api.destroyTags)
}

func (api *housingApi) createRoom(ctx echo.Context) error {
	var data housing.NewRoom
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRoom")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	r, err := api.svc.CreateRoom(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating room")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *housingApi) queryRooms(ctx echo.Context) error {
	rooms, err := api.svc.QueryAllRooms(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying rooms")
	}
	return ctx.JSON(http.StatusOK, rooms)
}

func (api *housingApi) retrieveRoom(ctx echo.Context) error {
	r, err := api.svc.GetRoom(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == housing.ErrRoomNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding room by ID")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *housingApi) updateRoom(ctx echo.Context) error {
	r, err := api.svc.GetRoom(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == housing.ErrRoomNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding room by ID")
	}
	if err = ctx.Bind(&r); err != nil {
		return errors.Wrap(err, "binding to Room")
	}

	r, err = api.svc.UpdateRoom(ctx.Request().Context(), r)
	if err != nil {
		return errors.Wrap(err, "updating room")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *housingApi) destroyRooms(ctx echo.Context) error {
	var ids IDList
	ids.Bind(ctx)
	if len(ids.IDs) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.DeleteRooms(ctx.Request().Context(), ids.IDs...); err != nil {
		return errors.Wrap(err, "deleting rooms")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *housingApi) createTag(ctx echo.Context) error {
	var data housing.NewTagNumber
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTagNumber")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	t, err := api.svc.CreateTag(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating tag number")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *housingApi) queryTags(ctx echo.Context) error {
	tags, err := api.svc.QueryAllTags(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying tag numbers")
	}
	return ctx.JSON(http.StatusOK, tags)
}

func (api *housingApi) destroyTags(ctx echo.Context) error {
	var ids IDList
	ids.Bind(ctx)
	if len(ids.IDs) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.DeleteTags(ctx.Request().Context(), ids.IDs...); err != nil {
		return errors.Wrap(err, "deleting tag numbers")
	}
	return ctx.NoContent(http.StatusNoContent)
}
