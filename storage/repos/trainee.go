package repos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/mkulima/kilimo/core/store"
	"github.com/mkulima/kilimo/core/trainee"
)

// traineeDoc carries the password hash, which the API model never encodes.
type traineeDoc struct {
	trainee.Trainee
	PasswordHash []byte `json:"passwordHash,omitempty"`
}

type TraineeRepo struct {
	coll store.Collection
}

var _ trainee.Repository = (*TraineeRepo)(nil)

func NewTraineeRepo(st store.Store) *TraineeRepo {
	return &TraineeRepo{coll: st.Collection(store.Trainees)}
}

func wrapTrainee(t trainee.Trainee) traineeDoc {
	return traineeDoc{Trainee: t, PasswordHash: t.PasswordHash}
}

func (doc traineeDoc) unwrap() trainee.Trainee {
	t := doc.Trainee
	t.PasswordHash = doc.PasswordHash
	return t
}

func (repo *TraineeRepo) CreateTrainee(ctx context.Context, t trainee.Trainee) (trainee.Trainee, error) {
	if t.ID == "" {
		t.ID = newID()
	}
	data, err := marshalDoc(wrapTrainee(t))
	if err != nil {
		return trainee.Trainee{}, err
	}
	if err = repo.coll.Add(ctx, t.ID, data); err != nil {
		if errors.Cause(err) == store.ErrExists {
			return trainee.Trainee{}, trainee.ErrEmailExists
		}
		return trainee.Trainee{}, errors.Wrap(err, "creating trainee")
	}
	return t, nil
}

func (repo *TraineeRepo) QueryAllTrainees(ctx context.Context) ([]trainee.Trainee, error) {
	recs, err := repo.coll.All(ctx, store.Ordering{Field: "created_at", Ascending: true})
	if err != nil {
		return nil, errors.Wrap(err, "querying trainees")
	}
	trainees := make([]trainee.Trainee, 0, len(recs))
	for _, rec := range recs {
		var doc traineeDoc
		if err = unmarshalDoc(rec, &doc); err != nil {
			return nil, err
		}
		trainees = append(trainees, doc.unwrap())
	}
	return trainees, nil
}

func (repo *TraineeRepo) GetTraineeByID(ctx context.Context, id string) (trainee.Trainee, error) {
	rec, err := repo.coll.Get(ctx, id)
	if err != nil {
		return trainee.Trainee{}, trapNotFound(err, trainee.ErrNotFound)
	}
	var doc traineeDoc
	if err = unmarshalDoc(rec, &doc); err != nil {
		return trainee.Trainee{}, err
	}
	return doc.unwrap(), nil
}

func (repo *TraineeRepo) GetTraineeByEmail(ctx context.Context, email string) (trainee.Trainee, error) {
	recs, err := repo.coll.Find(ctx, "email", email)
	if err != nil {
		return trainee.Trainee{}, errors.Wrap(err, "querying trainee by email")
	}
	if len(recs) == 0 {
		return trainee.Trainee{}, trainee.ErrNotFound
	}
	var doc traineeDoc
	if err = unmarshalDoc(recs[0], &doc); err != nil {
		return trainee.Trainee{}, err
	}
	return doc.unwrap(), nil
}

func (repo *TraineeRepo) FilterTrainees(ctx context.Context, filter trainee.QueryFilter) ([]trainee.Trainee, error) {
	filter.Clean()
	trainees, err := repo.QueryAllTrainees(ctx)
	if err != nil {
		return nil, err
	}
	if filter.IsEmpty() {
		return trainees, nil
	}
	matches := make([]trainee.Trainee, 0, len(trainees))
	for _, t := range trainees {
		if filter.Match(t) {
			matches = append(matches, t)
		}
	}
	return matches, nil
}

func (repo *TraineeRepo) UpdateTrainee(ctx context.Context, t trainee.Trainee) (trainee.Trainee, error) {
	data, err := marshalDoc(wrapTrainee(t))
	if err != nil {
		return trainee.Trainee{}, err
	}
	if err = repo.coll.Update(ctx, t.ID, data); err != nil {
		return trainee.Trainee{}, trapNotFound(errors.Wrap(err, "updating trainee"), trainee.ErrNotFound)
	}
	return t, nil
}

func (repo *TraineeRepo) DeleteTraineesByID(ctx context.Context, ids ...string) error {
	return errors.Wrap(repo.coll.BatchDelete(ctx, ids...), "deleting trainees")
}
