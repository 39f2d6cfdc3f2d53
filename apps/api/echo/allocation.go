package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mkulima/kilimo/core"
	"github.com/mkulima/kilimo/core/allocation"
)

type allocationApi struct {
	svc    *allocation.Service
	logger core.Logger
}

func registerAllocationAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := allocationApi{
		svc:    deps.AllocationSvc,
		logger: deps.Logger,
	}

	ag := g.Group("/allocations", jwt)
	ag.POST("/synchronize", api.synchronize)
	ag.POST("/cleanup-rooms", api.cleanupRooms)
	ag.POST("/cleanup-tags", api.cleanupTags)
	ag.POST("/fix-status", api.fixStatus)
	ag.POST("/migrate", api.migrate)
}

func (api *allocationApi) progress(note string) allocation.Progress {
	return func(processed, total int, detail string) {
		api.logger.Debug(fmt.Sprintf("%s: %d/%d %s", note, processed, total, detail))
	}
}

func (api *allocationApi) synchronize(ctx echo.Context) error {
	report, err := api.svc.Synchronize(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "synchronizing allocations")
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *allocationApi) cleanupRooms(ctx echo.Context) error {
	report, err := api.svc.CleanupInvalidRoomAssignments(ctx.Request().Context(), api.progress("cleanup rooms"))
	if err != nil {
		return errors.Wrap(err, "cleaning up room assignments")
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *allocationApi) cleanupTags(ctx echo.Context) error {
	report, err := api.svc.CleanupInvalidTagAssignments(ctx.Request().Context(), api.progress("cleanup tags"))
	if err != nil {
		return errors.Wrap(err, "cleaning up tag assignments")
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *allocationApi) fixStatus(ctx echo.Context) error {
	report, err := api.svc.FixAllocationStatus(ctx.Request().Context(), api.progress("fix status"))
	if err != nil {
		return errors.Wrap(err, "fixing allocation statuses")
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *allocationApi) migrate(ctx echo.Context) error {
	report, err := api.svc.MigrateExistingTrainees(ctx.Request().Context(), api.progress("migrate trainees"))
	if err != nil {
		return errors.Wrap(err, "migrating existing trainees")
	}
	return ctx.JSON(http.StatusOK, report)
}
