package repos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/mkulima/kilimo/core/identity"
	"github.com/mkulima/kilimo/core/store"
)

type GeneratedIDRepo struct {
	coll store.Collection
}

var _ identity.Repository = (*GeneratedIDRepo)(nil)

func NewGeneratedIDRepo(st store.Store) *GeneratedIDRepo {
	return &GeneratedIDRepo{coll: st.Collection(store.GeneratedIDs)}
}

func (repo *GeneratedIDRepo) CreateGeneratedID(ctx context.Context, gid identity.GeneratedID) (identity.GeneratedID, error) {
	if gid.ID == "" {
		gid.ID = newID()
	}
	data, err := marshalDoc(gid)
	if err != nil {
		return identity.GeneratedID{}, err
	}
	if err = repo.coll.Add(ctx, gid.ID, data); err != nil {
		return identity.GeneratedID{}, errors.Wrap(err, "creating generated id")
	}
	return gid, nil
}

func (repo *GeneratedIDRepo) QueryAllGeneratedIDs(ctx context.Context) ([]identity.GeneratedID, error) {
	recs, err := repo.coll.All(ctx, store.Ordering{Field: "created_at", Ascending: true})
	if err != nil {
		return nil, errors.Wrap(err, "querying generated ids")
	}
	return unmarshalGeneratedIDs(recs)
}

func (repo *GeneratedIDRepo) QueryGeneratedIDsByType(ctx context.Context, idType string) ([]identity.GeneratedID, error) {
	recs, err := repo.coll.Find(ctx, "type", idType, store.Ordering{Field: "created_at", Ascending: true})
	if err != nil {
		return nil, errors.Wrap(err, "querying generated ids by type")
	}
	return unmarshalGeneratedIDs(recs)
}

func unmarshalGeneratedIDs(recs []store.Record) ([]identity.GeneratedID, error) {
	gids := make([]identity.GeneratedID, 0, len(recs))
	for _, rec := range recs {
		var gid identity.GeneratedID
		if err := unmarshalDoc(rec, &gid); err != nil {
			return nil, err
		}
		gids = append(gids, gid)
	}
	return gids, nil
}

func (repo *GeneratedIDRepo) GetGeneratedIDByValue(ctx context.Context, value string) (identity.GeneratedID, error) {
	recs, err := repo.coll.Find(ctx, "value", value)
	if err != nil {
		return identity.GeneratedID{}, errors.Wrap(err, "querying generated id by value")
	}
	if len(recs) == 0 {
		return identity.GeneratedID{}, identity.ErrIDNotFound
	}
	var gid identity.GeneratedID
	if err = unmarshalDoc(recs[0], &gid); err != nil {
		return identity.GeneratedID{}, err
	}
	return gid, nil
}

func (repo *GeneratedIDRepo) UpdateGeneratedID(ctx context.Context, gid identity.GeneratedID) (identity.GeneratedID, error) {
	data, err := marshalDoc(gid)
	if err != nil {
		return identity.GeneratedID{}, err
	}
	if err = repo.coll.Update(ctx, gid.ID, data); err != nil {
		return identity.GeneratedID{}, trapNotFound(errors.Wrap(err, "updating generated id"), identity.ErrIDNotFound)
	}
	return gid, nil
}

// TransitionGeneratedID writes the id only while its stored status still
// equals fromStatus. A concurrent claim surfaces as ErrIDTaken.
func (repo *GeneratedIDRepo) TransitionGeneratedID(ctx context.Context, gid identity.GeneratedID, fromStatus string) (identity.GeneratedID, error) {
	data, err := marshalDoc(gid)
	if err != nil {
		return identity.GeneratedID{}, err
	}
	if err = repo.coll.UpdateIf(ctx, gid.ID, data, "status", fromStatus); err != nil {
		switch errors.Cause(err) {
		case store.ErrStale:
			return identity.GeneratedID{}, identity.ErrIDTaken
		case store.ErrNotFound:
			return identity.GeneratedID{}, identity.ErrIDNotFound
		}
		return identity.GeneratedID{}, errors.Wrap(err, "transitioning generated id")
	}
	return gid, nil
}

func (repo *GeneratedIDRepo) DeleteGeneratedIDsByID(ctx context.Context, ids ...string) error {
	return errors.Wrap(repo.coll.BatchDelete(ctx, ids...), "deleting generated ids")
}

type StaffRepo struct {
	coll store.Collection
}

var _ identity.StaffRepository = (*StaffRepo)(nil)

func NewStaffRepo(st store.Store) *StaffRepo {
	return &StaffRepo{coll: st.Collection(store.StaffRegistrations)}
}

func (repo *StaffRepo) CreateStaff(ctx context.Context, s identity.Staff) (identity.Staff, error) {
	data, err := marshalDoc(s)
	if err != nil {
		return identity.Staff{}, err
	}
	// staff records are keyed by their id value
	if err = repo.coll.Add(ctx, s.ID, data); err != nil {
		return identity.Staff{}, errors.Wrap(err, "creating staff record")
	}
	return s, nil
}

func (repo *StaffRepo) QueryAllStaff(ctx context.Context) ([]identity.Staff, error) {
	recs, err := repo.coll.All(ctx, store.Ordering{Field: "created_at", Ascending: true})
	if err != nil {
		return nil, errors.Wrap(err, "querying staff records")
	}
	staff := make([]identity.Staff, 0, len(recs))
	for _, rec := range recs {
		var s identity.Staff
		if err = unmarshalDoc(rec, &s); err != nil {
			return nil, err
		}
		staff = append(staff, s)
	}
	return staff, nil
}

func (repo *StaffRepo) GetStaffByID(ctx context.Context, id string) (identity.Staff, error) {
	rec, err := repo.coll.Get(ctx, id)
	if err != nil {
		return identity.Staff{}, trapNotFound(err, identity.ErrPersonNotFound)
	}
	var s identity.Staff
	if err = unmarshalDoc(rec, &s); err != nil {
		return identity.Staff{}, err
	}
	return s, nil
}

func (repo *StaffRepo) DeleteStaffByID(ctx context.Context, ids ...string) error {
	return errors.Wrap(repo.coll.BatchDelete(ctx, ids...), "deleting staff records")
}

type ResourcePersonRepo struct {
	coll store.Collection
}

var _ identity.ResourcePersonRepository = (*ResourcePersonRepo)(nil)

func NewResourcePersonRepo(st store.Store) *ResourcePersonRepo {
	return &ResourcePersonRepo{coll: st.Collection(store.ResourcePersons)}
}

func (repo *ResourcePersonRepo) CreateResourcePerson(ctx context.Context, rp identity.ResourcePerson) (identity.ResourcePerson, error) {
	data, err := marshalDoc(rp)
	if err != nil {
		return identity.ResourcePerson{}, err
	}
	if err = repo.coll.Add(ctx, rp.ID, data); err != nil {
		return identity.ResourcePerson{}, errors.Wrap(err, "creating resource person record")
	}
	return rp, nil
}

func (repo *ResourcePersonRepo) QueryAllResourcePersons(ctx context.Context) ([]identity.ResourcePerson, error) {
	recs, err := repo.coll.All(ctx, store.Ordering{Field: "created_at", Ascending: true})
	if err != nil {
		return nil, errors.Wrap(err, "querying resource person records")
	}
	rps := make([]identity.ResourcePerson, 0, len(recs))
	for _, rec := range recs {
		var rp identity.ResourcePerson
		if err = unmarshalDoc(rec, &rp); err != nil {
			return nil, err
		}
		rps = append(rps, rp)
	}
	return rps, nil
}

func (repo *ResourcePersonRepo) GetResourcePersonByID(ctx context.Context, id string) (identity.ResourcePerson, error) {
	rec, err := repo.coll.Get(ctx, id)
	if err != nil {
		return identity.ResourcePerson{}, trapNotFound(err, identity.ErrPersonNotFound)
	}
	var rp identity.ResourcePerson
	if err = unmarshalDoc(rec, &rp); err != nil {
		return identity.ResourcePerson{}, err
	}
	return rp, nil
}

func (repo *ResourcePersonRepo) DeleteResourcePersonsByID(ctx context.Context, ids ...string) error {
	return errors.Wrap(repo.coll.BatchDelete(ctx, ids...), "deleting resource person records")
}
