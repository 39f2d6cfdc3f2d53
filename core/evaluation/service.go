package evaluation

import (
	"context"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/mkulima/kilimo/core"
)

var (
	// errors
	ErrQuestionNotFound = errors.New("evaluation question not found")
	ErrResponseNotFound = errors.New("evaluation response not found")
)

var (
	evalTypeTag  = "evaltype"
	evalTypeText = "invalid question type"
)

// InitValidators registers evaluation-specific validation tags.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(evalTypeTag, func(fl validator.FieldLevel) bool {
		val := fl.Field().String()
		for _, t := range QuestionTypes {
			if val == t {
				return true
			}
		}
		return false
	})
	core.RegisterCustomTranslation(validate, translator, evalTypeTag, evalTypeText)
}

type (
	QuestionRepository interface {
		CreateQuestion(ctx context.Context, q Question) (Question, error)
		QueryAllQuestions(ctx context.Context) ([]Question, error)
		QueryPublishedQuestions(ctx context.Context) ([]Question, error)
		GetQuestionByID(ctx context.Context, id string) (Question, error)
		UpdateQuestion(ctx context.Context, q Question) (Question, error)
		DeleteQuestionsByID(ctx context.Context, ids ...string) error
	}

	ResponseRepository interface {
		CreateResponse(ctx context.Context, r Response) (Response, error)
		QueryAllResponses(ctx context.Context) ([]Response, error)
		QueryResponsesByQuestion(ctx context.Context, questionID string) ([]Response, error)
		QueryResponsesByTrainee(ctx context.Context, traineeID string) ([]Response, error)
		UpdateResponse(ctx context.Context, r Response) (Response, error)
		DeleteResponsesByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		questions QuestionRepository
		responses ResponseRepository
	}
)

func NewService(questions QuestionRepository, responses ResponseRepository) *Service {
	return &Service{questions: questions, responses: responses}
}

func (svc *Service) CreateQuestion(ctx context.Context, nq NewQuestion) (Question, error) {
	now := time.Now().UTC()
	return svc.questions.CreateQuestion(ctx, Question{
		Text:      nq.Text,
		Type:      nq.Type,
		Options:   nq.Options,
		Order:     nq.Order,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) QueryAllQuestions(ctx context.Context) ([]Question, error) {
	return svc.questions.QueryAllQuestions(ctx)
}

// QueryPublishedQuestions is the listing trainees answer against.
func (svc *Service) QueryPublishedQuestions(ctx context.Context) ([]Question, error) {
	return svc.questions.QueryPublishedQuestions(ctx)
}

func (svc *Service) SetQuestionPublished(ctx context.Context, id string, published bool) (Question, error) {
	q, err := svc.questions.GetQuestionByID(ctx, id)
	if err != nil {
		return Question{}, err
	}
	q.IsPublished = published
	q.UpdatedAt = time.Now().UTC()
	return svc.questions.UpdateQuestion(ctx, q)
}

func (svc *Service) DeleteQuestions(ctx context.Context, ids ...string) error {
	return svc.questions.DeleteQuestionsByID(ctx, ids...)
}

// SubmitResponse records a trainee's answer; answering the same question
// again overwrites the previous answer.
func (svc *Service) SubmitResponse(ctx context.Context, nr NewResponse) (Response, error) {
	if _, err := svc.questions.GetQuestionByID(ctx, nr.QuestionID); err != nil {
		return Response{}, err
	}

	now := time.Now().UTC()
	existing, err := svc.responses.QueryResponsesByTrainee(ctx, nr.TraineeID)
	if err != nil {
		return Response{}, errors.Wrap(err, "loading trainee responses")
	}
	for _, r := range existing {
		if r.QuestionID == nr.QuestionID {
			r.Answer = nr.Answer
			r.UpdatedAt = now
			return svc.responses.UpdateResponse(ctx, r)
		}
	}

	return svc.responses.CreateResponse(ctx, Response{
		TraineeID:  nr.TraineeID,
		QuestionID: nr.QuestionID,
		Answer:     nr.Answer,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

func (svc *Service) QueryAllResponses(ctx context.Context) ([]Response, error) {
	return svc.responses.QueryAllResponses(ctx)
}

func (svc *Service) QueryResponsesByQuestion(ctx context.Context, questionID string) ([]Response, error) {
	return svc.responses.QueryResponsesByQuestion(ctx, questionID)
}
