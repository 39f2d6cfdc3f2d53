package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mkulima/kilimo/core"
	"github.com/mkulima/kilimo/core/admin"
)

type adminApi struct {
	conf     *core.Config
	svc      *admin.Service
	validate *validator.Validate
}

func registerAdminAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := adminApi{
		conf:     deps.Conf,
		svc:      deps.AdminSvc,
		validate: deps.Validate,
	}

	ag := g.Group("/admin")
	ag.POST("/login", api.login)
	ag.POST("/logout", api.logout)
	ag.GET("/me", api.me, jwt)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (api *adminApi) login(ctx echo.Context) error {
	var data loginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to loginRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	a, err := authenticate(ctx.Request().Context(), data.Email, data.Password, api.svc)
	if err != nil {
		return err
	}
	token, err := GenerateToken(api.conf, GetAdminClaims(api.conf, a))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	setAdminCookie(ctx, api.conf, token)
	return ctx.JSON(http.StatusOK, a)
}

func (api *adminApi) logout(ctx echo.Context) error {
	clearAdminCookie(ctx)
	return ctx.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (api *adminApi) me(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	a, err := api.svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if errors.Cause(err) == admin.ErrNotFound {
			return errUnauthorized
		}
		return errors.Wrap(err, "finding admin by ID")
	}
	return ctx.JSON(http.StatusOK, a)
}
