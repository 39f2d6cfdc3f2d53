package repos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/mkulima/kilimo/core/housing"
	"github.com/mkulima/kilimo/core/store"
)

type RoomRepo struct {
	coll store.Collection
}

var _ housing.RoomRepository = (*RoomRepo)(nil)

func NewRoomRepo(st store.Store) *RoomRepo {
	return &RoomRepo{coll: st.Collection(store.Rooms)}
}

func (repo *RoomRepo) CreateRoom(ctx context.Context, r housing.Room) (housing.Room, error) {
	if r.ID == "" {
		r.ID = newID()
	}
	data, err := marshalDoc(r)
	if err != nil {
		return housing.Room{}, err
	}
	if err = repo.coll.Add(ctx, r.ID, data); err != nil {
		return housing.Room{}, errors.Wrap(err, "creating room")
	}
	return r, nil
}

func (repo *RoomRepo) QueryAllRooms(ctx context.Context) ([]housing.Room, error) {
	recs, err := repo.coll.All(ctx, store.Ordering{Field: "roomNumber", Ascending: true})
	if err != nil {
		return nil, errors.Wrap(err, "querying rooms")
	}
	rooms := make([]housing.Room, 0, len(recs))
	for _, rec := range recs {
		var r housing.Room
		if err = unmarshalDoc(rec, &r); err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}
	return rooms, nil
}

func (repo *RoomRepo) GetRoomByID(ctx context.Context, id string) (housing.Room, error) {
	rec, err := repo.coll.Get(ctx, id)
	if err != nil {
		return housing.Room{}, trapNotFound(err, housing.ErrRoomNotFound)
	}
	var r housing.Room
	if err = unmarshalDoc(rec, &r); err != nil {
		return housing.Room{}, err
	}
	return r, nil
}

func (repo *RoomRepo) GetRoomByNumber(ctx context.Context, roomNumber string) (housing.Room, error) {
	recs, err := repo.coll.Find(ctx, "roomNumber", roomNumber)
	if err != nil {
		return housing.Room{}, errors.Wrap(err, "querying room by number")
	}
	if len(recs) == 0 {
		return housing.Room{}, housing.ErrRoomNotFound
	}
	var r housing.Room
	if err = unmarshalDoc(recs[0], &r); err != nil {
		return housing.Room{}, err
	}
	return r, nil
}

func (repo *RoomRepo) UpdateRoom(ctx context.Context, r housing.Room) (housing.Room, error) {
	data, err := marshalDoc(r)
	if err != nil {
		return housing.Room{}, err
	}
	if err = repo.coll.Update(ctx, r.ID, data); err != nil {
		return housing.Room{}, trapNotFound(errors.Wrap(err, "updating room"), housing.ErrRoomNotFound)
	}
	return r, nil
}

func (repo *RoomRepo) DeleteRoomsByID(ctx context.Context, ids ...string) error {
	return errors.Wrap(repo.coll.BatchDelete(ctx, ids...), "deleting rooms")
}

type TagRepo struct {
	coll store.Collection
}

var _ housing.TagRepository = (*TagRepo)(nil)

func NewTagRepo(st store.Store) *TagRepo {
	return &TagRepo{coll: st.Collection(store.TagNumbers)}
}

func (repo *TagRepo) CreateTag(ctx context.Context, t housing.TagNumber) (housing.TagNumber, error) {
	if t.ID == "" {
		t.ID = newID()
	}
	data, err := marshalDoc(t)
	if err != nil {
		return housing.TagNumber{}, err
	}
	if err = repo.coll.Add(ctx, t.ID, data); err != nil {
		return housing.TagNumber{}, errors.Wrap(err, "creating tag number")
	}
	return t, nil
}

func (repo *TagRepo) QueryAllTags(ctx context.Context) ([]housing.TagNumber, error) {
	recs, err := repo.coll.All(ctx, store.Ordering{Field: "created_at", Ascending: true})
	if err != nil {
		return nil, errors.Wrap(err, "querying tag numbers")
	}
	tags := make([]housing.TagNumber, 0, len(recs))
	for _, rec := range recs {
		var t housing.TagNumber
		if err = unmarshalDoc(rec, &t); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, nil
}

func (repo *TagRepo) GetTagByNo(ctx context.Context, tagNo string) (housing.TagNumber, error) {
	recs, err := repo.coll.Find(ctx, "tagNo", tagNo)
	if err != nil {
		return housing.TagNumber{}, errors.Wrap(err, "querying tag by number")
	}
	if len(recs) == 0 {
		return housing.TagNumber{}, housing.ErrTagNotFound
	}
	var t housing.TagNumber
	if err = unmarshalDoc(recs[0], &t); err != nil {
		return housing.TagNumber{}, err
	}
	return t, nil
}

func (repo *TagRepo) UpdateTag(ctx context.Context, t housing.TagNumber) (housing.TagNumber, error) {
	data, err := marshalDoc(t)
	if err != nil {
		return housing.TagNumber{}, err
	}
	if err = repo.coll.Update(ctx, t.ID, data); err != nil {
		return housing.TagNumber{}, trapNotFound(errors.Wrap(err, "updating tag number"), housing.ErrTagNotFound)
	}
	return t, nil
}

// ClaimTag writes the tag only while its stored status is still available,
// so concurrent allocation runs cannot hand out the same tag twice.
func (repo *TagRepo) ClaimTag(ctx context.Context, t housing.TagNumber) (housing.TagNumber, error) {
	data, err := marshalDoc(t)
	if err != nil {
		return housing.TagNumber{}, err
	}
	if err = repo.coll.UpdateIf(ctx, t.ID, data, "status", housing.TagAvailable); err != nil {
		switch errors.Cause(err) {
		case store.ErrStale:
			return housing.TagNumber{}, housing.ErrClaimed
		case store.ErrNotFound:
			return housing.TagNumber{}, housing.ErrTagNotFound
		}
		return housing.TagNumber{}, errors.Wrap(err, "claiming tag number")
	}
	return t, nil
}

func (repo *TagRepo) DeleteTagsByID(ctx context.Context, ids ...string) error {
	return errors.Wrap(repo.coll.BatchDelete(ctx, ids...), "deleting tag numbers")
}
