package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mkulima/kilimo/core/program"
)

type programApi struct {
	svc      *program.Service
	validate *validator.Validate
}

func registerProgramAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := programApi{
		svc:      deps.ProgramSvc,
		validate: deps.Validate,
	}

	// public listings
	g.GET("/exams/available", api.queryAvailableExams)
	g.GET("/announcements", api.queryPublishedAnnouncements)

	sg := g.Group("/sponsors", jwt)
	sg.POST("", api.createSponsor)
	sg.GET("", api.querySponsors)
	sg.GET("/:id", api.retrieveSponsor)
	sg.PATCH("/:id", api.updateSponsor)
	sg.POST("/:id/activate", api.activateSponsor)
	sg.DELETE("", api.destroySponsors)

	bg := g.Group("/batches", jwt)
	bg.POST("", api.createBatch)
	bg.GET("", api.queryBatches)
	bg.PATCH("/:id", api.updateBatch)
	bg.DELETE("", api.destroyBatches)

	eg := g.Group("/exams", jwt)
	eg.POST("", api.createExam)
	eg.GET("", api.queryExams)
	eg.PATCH("/:id", api.updateExam)
	eg.DELETE("", api.destroyExams)

	ag := g.Group("/announcements")
	ag.POST("", api.createAnnouncement, jwt)
	ag.GET("/all", api.queryAnnouncements, jwt)
	ag.PATCH("/:id", api.updateAnnouncement, jwt)
	ag.DELETE("", api.destroyAnnouncements, jwt)

	stg := g.Group("/settings", jwt)
	stg.GET("", api.querySettings)
	stg.GET("/:key", api.retrieveSetting)
	stg.PATCH("/:key", api.setSetting)
	stg.DELETE("/:key", api.destroySetting)
}

// Sponsors

func (api *programApi) createSponsor(ctx echo.Context) error {
	var data program.NewSponsor
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSponsor")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	s, err := api.svc.CreateSponsor(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating sponsor")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *programApi) querySponsors(ctx echo.Context) error {
	sponsors, err := api.svc.QueryAllSponsors(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying sponsors")
	}
	return ctx.JSON(http.StatusOK, sponsors)
}

func (api *programApi) retrieveSponsor(ctx echo.Context) error {
	s, err := api.svc.GetSponsor(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == program.ErrSponsorNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding sponsor by ID")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *programApi) updateSponsor(ctx echo.Context) error {
	s, err := api.svc.GetSponsor(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == program.ErrSponsorNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding sponsor by ID")
	}
	if err = ctx.Bind(&s); err != nil {
		return errors.Wrap(err, "binding to Sponsor")
	}

	s, err = api.svc.UpdateSponsor(ctx.Request().Context(), s)
	if err != nil {
		return errors.Wrap(err, "updating sponsor")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *programApi) activateSponsor(ctx echo.Context) error {
	s, err := api.svc.ActivateSponsor(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == program.ErrSponsorNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "activating sponsor")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *programApi) destroySponsors(ctx echo.Context) error {
	var ids IDList
	ids.Bind(ctx)
	if len(ids.IDs) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.DeleteSponsors(ctx.Request().Context(), ids.IDs...); err != nil {
		return errors.Wrap(err, "deleting sponsors")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Batches

func (api *programApi) createBatch(ctx echo.Context) error {
	var data program.NewBatch
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewBatch")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	b, err := api.svc.CreateBatch(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating batch")
	}
	return ctx.JSON(http.StatusCreated, b)
}

func (api *programApi) queryBatches(ctx echo.Context) error {
	batches, err := api.svc.QueryAllBatches(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying batches")
	}
	return ctx.JSON(http.StatusOK, batches)
}

func (api *programApi) updateBatch(ctx echo.Context) error {
	b, err := api.svc.GetBatch(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == program.ErrBatchNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding batch by ID")
	}
	if err = ctx.Bind(&b); err != nil {
		return errors.Wrap(err, "binding to Batch")
	}

	b, err = api.svc.UpdateBatch(ctx.Request().Context(), b)
	if err != nil {
		return errors.Wrap(err, "updating batch")
	}
	return ctx.JSON(http.StatusOK, b)
}

func (api *programApi) destroyBatches(ctx echo.Context) error {
	var ids IDList
	ids.Bind(ctx)
	if len(ids.IDs) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.DeleteBatches(ctx.Request().Context(), ids.IDs...); err != nil {
		return errors.Wrap(err, "deleting batches")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Exams

func (api *programApi) createExam(ctx echo.Context) error {
	var data program.NewExam
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExam")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	e, err := api.svc.CreateExam(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating exam")
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (api *programApi) queryExams(ctx echo.Context) error {
	exams, err := api.svc.QueryAllExams(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying exams")
	}
	return ctx.JSON(http.StatusOK, exams)
}

func (api *programApi) queryAvailableExams(ctx echo.Context) error {
	exams, err := api.svc.QueryAvailableExams(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying available exams")
	}
	return ctx.JSON(http.StatusOK, exams)
}

func (api *programApi) updateExam(ctx echo.Context) error {
	e, err := api.svc.GetExam(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == program.ErrExamNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding exam by ID")
	}
	if err = ctx.Bind(&e); err != nil {
		return errors.Wrap(err, "binding to Exam")
	}

	e, err = api.svc.UpdateExam(ctx.Request().Context(), e)
	if err != nil {
		return errors.Wrap(err, "updating exam")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *programApi) destroyExams(ctx echo.Context) error {
	var ids IDList
	ids.Bind(ctx)
	if len(ids.IDs) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.DeleteExams(ctx.Request().Context(), ids.IDs...); err != nil {
		return errors.Wrap(err, "deleting exams")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Announcements

func (api *programApi) createAnnouncement(ctx echo.Context) error {
	var data program.NewAnnouncement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnnouncement")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	a, err := api.svc.CreateAnnouncement(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating announcement")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *programApi) queryAnnouncements(ctx echo.Context) error {
	anns, err := api.svc.QueryAllAnnouncements(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying announcements")
	}
	return ctx.JSON(http.StatusOK, anns)
}

func (api *programApi) queryPublishedAnnouncements(ctx echo.Context) error {
	anns, err := api.svc.QueryPublishedAnnouncements(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying published announcements")
	}
	return ctx.JSON(http.StatusOK, anns)
}

func (api *programApi) updateAnnouncement(ctx echo.Context) error {
	a, err := api.svc.GetAnnouncement(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == program.ErrAnnouncementNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding announcement by ID")
	}
	if err = ctx.Bind(&a); err != nil {
		return errors.Wrap(err, "binding to Announcement")
	}

	a, err = api.svc.UpdateAnnouncement(ctx.Request().Context(), a)
	if err != nil {
		return errors.Wrap(err, "updating announcement")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *programApi) destroyAnnouncements(ctx echo.Context) error {
	var ids IDList
	ids.Bind(ctx)
	if len(ids.IDs) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.DeleteAnnouncements(ctx.Request().Context(), ids.IDs...); err != nil {
		return errors.Wrap(err, "deleting announcements")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Settings

type settingRequest struct {
	Value string `json:"value" validate:"required"`
}

func (api *programApi) querySettings(ctx echo.Context) error {
	settings, err := api.svc.QueryAllSettings(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying settings")
	}
	return ctx.JSON(http.StatusOK, settings)
}

func (api *programApi) retrieveSetting(ctx echo.Context) error {
	s, err := api.svc.GetSetting(ctx.Request().Context(), ctx.Param("key"))
	if err != nil {
		if errors.Cause(err) == program.ErrSettingNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding setting")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *programApi) setSetting(ctx echo.Context) error {
	var data settingRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to settingRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	s, err := api.svc.SetSetting(ctx.Request().Context(), ctx.Param("key"), data.Value)
	if err != nil {
		return errors.Wrap(err, "setting value")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *programApi) destroySetting(ctx echo.Context) error {
	if err := api.svc.DeleteSetting(ctx.Request().Context(), ctx.Param("key")); err != nil {
		if errors.Cause(err) == program.ErrSettingNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting setting")
	}
	return ctx.NoContent(http.StatusNoContent)
}
