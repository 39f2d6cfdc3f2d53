package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mkulima/kilimo/core"
	"github.com/mkulima/kilimo/core/identity"
)

type identityApi struct {
	svc        *identity.Service
	validate   *validator.Validate
	translator ut.Translator
}

func registerIdentityAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := identityApi{
		svc:        deps.IdentitySvc,
		validate:   deps.Validate,
		translator: deps.Translator,
	}

	ig := g.Group("/ids")

	// un-authed endpoints: the staff/resource-person activation wizard
	ig.POST("/validate", api.validateID)
	ig.POST("/finalize", api.finalize)

	// admin endpoints
	ig.GET("", api.query, jwt)
	ig.POST("/generate", api.generate, jwt)
	ig.POST("/:id/free", api.free, jwt)

	sg := g.Group("/staff", jwt)
	sg.GET("", api.queryStaff)
	sg.DELETE("/:id", api.destroyStaff)

	rg := g.Group("/resource-persons", jwt)
	rg.GET("", api.queryResourcePersons)
	rg.DELETE("/:id", api.destroyResourcePerson)
}

type (
	validateIDRequest struct {
		Value string `json:"id" validate:"required"`
		Email string `json:"email" validate:"required,email"`
	}

	generateIDRequest struct {
		Type string `json:"type" validate:"required,oneof=staff resource_person"`
	}

	freeIDRequest struct {
		Reason string `json:"reason" validate:"required"`
	}
)

// validateID answers the wizard's id check and, when the id is still
// available, claims it for the given email.
func (api *identityApi) validateID(ctx echo.Context) error {
	var data validateIDRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to validateIDRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	email := core.CleanString(data.Email, true /* lower */)
	result, err := api.svc.ValidateAndActivate(ctx.Request().Context(), core.CleanString(data.Value), email)
	if err != nil {
		return errors.Wrap(err, "validating id")
	}
	return ctx.JSON(http.StatusOK, result)
}

func (api *identityApi) finalize(ctx echo.Context) error {
	var data identity.Finalization
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Finalization")
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	gid, err := api.svc.FinalizeActivation(ctx.Request().Context(), data)
	if err != nil {
		switch errors.Cause(err) {
		case identity.ErrIDNotFound:
			return errHttpNotFound
		case identity.ErrIDTaken:
			return core.NewValidationError(err)
		}
		return errors.Wrap(err, "finalizing activation")
	}
	return ctx.JSON(http.StatusOK, gid)
}

func (api *identityApi) query(ctx echo.Context) error {
	gids, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying generated ids")
	}
	return ctx.JSON(http.StatusOK, gids)
}

func (api *identityApi) generate(ctx echo.Context) error {
	var data generateIDRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to generateIDRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	var gid identity.GeneratedID
	var err error
	if data.Type == identity.TypeStaff {
		gid, err = api.svc.GenerateStaffID(ctx.Request().Context())
	} else {
		gid, err = api.svc.GenerateResourcePersonID(ctx.Request().Context())
	}
	if err != nil {
		return errors.Wrap(err, "generating id")
	}
	return ctx.JSON(http.StatusCreated, gid)
}

func (api *identityApi) free(ctx echo.Context) error {
	var data freeIDRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to freeIDRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	gid, err := api.svc.AdminFree(ctx.Request().Context(), ctx.Param("id"), data.Reason)
	if err != nil {
		if errors.Cause(err) == identity.ErrIDNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "freeing id")
	}
	return ctx.JSON(http.StatusOK, gid)
}

func (api *identityApi) queryStaff(ctx echo.Context) error {
	staff, err := api.svc.QueryAllStaff(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying staff records")
	}
	return ctx.JSON(http.StatusOK, staff)
}

func (api *identityApi) destroyStaff(ctx echo.Context) error {
	if err := api.svc.DeleteStaff(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == identity.ErrPersonNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting staff record")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *identityApi) queryResourcePersons(ctx echo.Context) error {
	rps, err := api.svc.QueryAllResourcePersons(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying resource person records")
	}
	return ctx.JSON(http.StatusOK, rps)
}

func (api *identityApi) destroyResourcePerson(ctx echo.Context) error {
	if err := api.svc.DeleteResourcePerson(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == identity.ErrPersonNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting resource person record")
	}
	return ctx.NoContent(http.StatusNoContent)
}
