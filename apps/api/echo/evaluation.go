package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mkulima/kilimo/core/evaluation"
)

type evaluationApi struct {
	svc      *evaluation.Service
	validate *validator.Validate
}

func registerEvaluationAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := evaluationApi{
		svc:      deps.EvaluationSvc,
		validate: deps.Validate,
	}

	eg := g.Group("/evaluations")

	// un-authed endpoints: trainees see published questions and submit
	eg.GET("/questions/published", api.queryPublishedQuestions)
	eg.POST("/responses", api.submitResponse)

	qg := eg.Group("/questions", jwt)
	qg.POST("", api.createQuestion)
	qg.GET("", api.queryQuestions)
	qg.POST("/:id/publish", api.publishQuestion)
	qg.POST("/:id/unpublish", api.unpublishQuestion)
	qg.DELETE("", api.destroyQuestions)

	eg.GET("/responses", api.queryResponses, jwt)
}

func (api *evaluationApi) createQuestion(ctx echo.Context) error {
	var data evaluation.NewQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuestion")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	q, err := api.svc.CreateQuestion(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating evaluation question")
	}
	return ctx.JSON(http.StatusCreated, q)
}

func (api *evaluationApi) queryQuestions(ctx echo.Context) error {
	questions, err := api.svc.QueryAllQuestions(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying evaluation questions")
	}
	return ctx.JSON(http.StatusOK, questions)
}

func (api *evaluationApi) queryPublishedQuestions(ctx echo.Context) error {
	questions, err := api.svc.QueryPublishedQuestions(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying published questions")
	}
	return ctx.JSON(http.StatusOK, questions)
}

func (api *evaluationApi) publishQuestion(ctx echo.Context) error {
	return api.setPublished(ctx, true)
}

func (api *evaluationApi) unpublishQuestion(ctx echo.Context) error {
	return api.setPublished(ctx, false)
}

func (api *evaluationApi) setPublished(ctx echo.Context, published bool) error {
	q, err := api.svc.SetQuestionPublished(ctx.Request().Context(), ctx.Param("id"), published)
	if err != nil {
		if errors.Cause(err) == evaluation.ErrQuestionNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "toggling question publication")
	}
	return ctx.JSON(http.StatusOK, q)
}

func (api *evaluationApi) destroyQuestions(ctx echo.Context) error {
	var ids IDList
	ids.Bind(ctx)
	if len(ids.IDs) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.DeleteQuestions(ctx.Request().Context(), ids.IDs...); err != nil {
		return errors.Wrap(err, "deleting evaluation questions")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *evaluationApi) submitResponse(ctx echo.Context) error {
	var data evaluation.NewResponse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewResponse")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	r, err := api.svc.SubmitResponse(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == evaluation.ErrQuestionNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "submitting evaluation response")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *evaluationApi) queryResponses(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	if questionID := ctx.QueryParam("questionId"); questionID != "" {
		responses, err := api.svc.QueryResponsesByQuestion(rctx, questionID)
		if err != nil {
			return errors.Wrap(err, "querying responses by question")
		}
		return ctx.JSON(http.StatusOK, responses)
	}

	responses, err := api.svc.QueryAllResponses(rctx)
	if err != nil {
		return errors.Wrap(err, "querying evaluation responses")
	}
	return ctx.JSON(http.StatusOK, responses)
}
