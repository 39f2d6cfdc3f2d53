package repos

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/mkulima/kilimo/core/evaluation"
	"github.com/mkulima/kilimo/core/store"
)

type QuestionRepo struct {
	coll store.Collection
}

var _ evaluation.QuestionRepository = (*QuestionRepo)(nil)

func NewQuestionRepo(st store.Store) *QuestionRepo {
	return &QuestionRepo{coll: st.Collection(store.EvaluationQuestions)}
}

func (repo *QuestionRepo) CreateQuestion(ctx context.Context, q evaluation.Question) (evaluation.Question, error) {
	if q.ID == "" {
		q.ID = newID()
	}
	data, err := marshalDoc(q)
	if err != nil {
		return evaluation.Question{}, err
	}
	if err = repo.coll.Add(ctx, q.ID, data); err != nil {
		return evaluation.Question{}, errors.Wrap(err, "creating evaluation question")
	}
	return q, nil
}

func (repo *QuestionRepo) QueryAllQuestions(ctx context.Context) ([]evaluation.Question, error) {
	recs, err := repo.coll.All(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying evaluation questions")
	}
	return unmarshalQuestions(recs)
}

func (repo *QuestionRepo) QueryPublishedQuestions(ctx context.Context) ([]evaluation.Question, error) {
	recs, err := repo.coll.Find(ctx, "isPublished", "true")
	if err != nil {
		return nil, errors.Wrap(err, "querying published evaluation questions")
	}
	return unmarshalQuestions(recs)
}

// unmarshalQuestions sorts numerically; the store orders field values as text.
func unmarshalQuestions(recs []store.Record) ([]evaluation.Question, error) {
	questions := make([]evaluation.Question, 0, len(recs))
	for _, rec := range recs {
		var q evaluation.Question
		if err := unmarshalDoc(rec, &q); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	sort.SliceStable(questions, func(i, j int) bool { return questions[i].Order < questions[j].Order })
	return questions, nil
}

func (repo *QuestionRepo) GetQuestionByID(ctx context.Context, id string) (evaluation.Question, error) {
	rec, err := repo.coll.Get(ctx, id)
	if err != nil {
		return evaluation.Question{}, trapNotFound(err, evaluation.ErrQuestionNotFound)
	}
	var q evaluation.Question
	if err = unmarshalDoc(rec, &q); err != nil {
		return evaluation.Question{}, err
	}
	return q, nil
}

func (repo *QuestionRepo) UpdateQuestion(ctx context.Context, q evaluation.Question) (evaluation.Question, error) {
	data, err := marshalDoc(q)
	if err != nil {
		return evaluation.Question{}, err
	}
	if err = repo.coll.Update(ctx, q.ID, data); err != nil {
		return evaluation.Question{}, trapNotFound(errors.Wrap(err, "updating evaluation question"), evaluation.ErrQuestionNotFound)
	}
	return q, nil
}

func (repo *QuestionRepo) DeleteQuestionsByID(ctx context.Context, ids ...string) error {
	return errors.Wrap(repo.coll.BatchDelete(ctx, ids...), "deleting evaluation questions")
}

type ResponseRepo struct {
	coll store.Collection
}

var _ evaluation.ResponseRepository = (*ResponseRepo)(nil)

func NewResponseRepo(st store.Store) *ResponseRepo {
	return &ResponseRepo{coll: st.Collection(store.EvaluationResponses)}
}

func (repo *ResponseRepo) CreateResponse(ctx context.Context, r evaluation.Response) (evaluation.Response, error) {
	if r.ID == "" {
		r.ID = newID()
	}
	data, err := marshalDoc(r)
	if err != nil {
		return evaluation.Response{}, err
	}
	if err = repo.coll.Add(ctx, r.ID, data); err != nil {
		return evaluation.Response{}, errors.Wrap(err, "creating evaluation response")
	}
	return r, nil
}

func (repo *ResponseRepo) QueryAllResponses(ctx context.Context) ([]evaluation.Response, error) {
	recs, err := repo.coll.All(ctx, store.Ordering{Field: "created_at", Ascending: true})
	if err != nil {
		return nil, errors.Wrap(err, "querying evaluation responses")
	}
	return unmarshalResponses(recs)
}

func (repo *ResponseRepo) QueryResponsesByQuestion(ctx context.Context, questionID string) ([]evaluation.Response, error) {
	recs, err := repo.coll.Find(ctx, "questionId", questionID)
	if err != nil {
		return nil, errors.Wrap(err, "querying responses by question")
	}
	return unmarshalResponses(recs)
}

func (repo *ResponseRepo) QueryResponsesByTrainee(ctx context.Context, traineeID string) ([]evaluation.Response, error) {
	recs, err := repo.coll.Find(ctx, "traineeId", traineeID)
	if err != nil {
		return nil, errors.Wrap(err, "querying responses by trainee")
	}
	return unmarshalResponses(recs)
}

func unmarshalResponses(recs []store.Record) ([]evaluation.Response, error) {
	responses := make([]evaluation.Response, 0, len(recs))
	for _, rec := range recs {
		var r evaluation.Response
		if err := unmarshalDoc(rec, &r); err != nil {
			return nil, err
		}
		responses = append(responses, r)
	}
	return responses, nil
}

func (repo *ResponseRepo) UpdateResponse(ctx context.Context, r evaluation.Response) (evaluation.Response, error) {
	data, err := marshalDoc(r)
	if err != nil {
		return evaluation.Response{}, err
	}
	if err = repo.coll.Update(ctx, r.ID, data); err != nil {
		return evaluation.Response{}, trapNotFound(errors.Wrap(err, "updating evaluation response"), evaluation.ErrResponseNotFound)
	}
	return r, nil
}

func (repo *ResponseRepo) DeleteResponsesByID(ctx context.Context, ids ...string) error {
	return errors.Wrap(repo.coll.BatchDelete(ctx, ids...), "deleting evaluation responses")
}
