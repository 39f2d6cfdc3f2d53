package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mkulima/kilimo/core/trainee"
)

type traineeApi struct {
	svc        *trainee.Service
	validate   *validator.Validate
	translator ut.Translator
}

func registerTraineeAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := traineeApi{
		svc:        deps.TraineeSvc,
		validate:   deps.Validate,
		translator: deps.Translator,
	}

	tg := g.Group("/trainees", jwt)
	tg.GET("", api.query)
	tg.DELETE("", api.destroyMultiple)
	tg.GET("/:id", api.retrieve)
	tg.PATCH("/:id", api.update)
	tg.DELETE("/:id", api.destroy)
}

func (api *traineeApi) query(ctx echo.Context) error {
	var filter trainee.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	trainees, err := api.svc.Filter(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying trainees")
	}
	return ctx.JSON(http.StatusOK, trainees)
}

func (api *traineeApi) retrieve(ctx echo.Context) error {
	t, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == trainee.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding trainee by ID")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *traineeApi) update(ctx echo.Context) error {
	var data trainee.UpdateTrainee
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTrainee")
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	t, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == trainee.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating trainee")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *traineeApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting trainee")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *traineeApi) destroyMultiple(ctx echo.Context) error {
	var ids IDList
	ids.Bind(ctx)
	if len(ids.IDs) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(ctx.Request().Context(), ids.IDs...); err != nil {
		return errors.Wrap(err, "deleting trainees")
	}
	return ctx.NoContent(http.StatusNoContent)
}
