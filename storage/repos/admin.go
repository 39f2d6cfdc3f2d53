package repos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/mkulima/kilimo/core/admin"
	"github.com/mkulima/kilimo/core/store"
)

// adminDoc carries the password hash, which the API model never encodes.
type adminDoc struct {
	admin.Admin
	PasswordHash []byte `json:"passwordHash,omitempty"`
}

type AdminRepo struct {
	coll store.Collection
}

var _ admin.Repository = (*AdminRepo)(nil)

func NewAdminRepo(st store.Store) *AdminRepo {
	return &AdminRepo{coll: st.Collection(store.Admins)}
}

func wrapAdmin(a admin.Admin) adminDoc {
	return adminDoc{Admin: a, PasswordHash: a.PasswordHash}
}

func (doc adminDoc) unwrap() admin.Admin {
	a := doc.Admin
	a.PasswordHash = doc.PasswordHash
	return a
}

func (repo *AdminRepo) CreateAdmin(ctx context.Context, a admin.Admin) (admin.Admin, error) {
	if a.ID == "" {
		a.ID = newID()
	}
	data, err := marshalDoc(wrapAdmin(a))
	if err != nil {
		return admin.Admin{}, err
	}
	if err = repo.coll.Add(ctx, a.ID, data); err != nil {
		if errors.Cause(err) == store.ErrExists {
			return admin.Admin{}, admin.ErrEmailExists
		}
		return admin.Admin{}, errors.Wrap(err, "creating admin")
	}
	return a, nil
}

func (repo *AdminRepo) GetAdminByEmail(ctx context.Context, email string) (admin.Admin, error) {
	recs, err := repo.coll.Find(ctx, "email", email)
	if err != nil {
		return admin.Admin{}, errors.Wrap(err, "querying admin by email")
	}
	if len(recs) == 0 {
		return admin.Admin{}, admin.ErrNotFound
	}
	var doc adminDoc
	if err = unmarshalDoc(recs[0], &doc); err != nil {
		return admin.Admin{}, err
	}
	return doc.unwrap(), nil
}

func (repo *AdminRepo) GetAdminByID(ctx context.Context, id string) (admin.Admin, error) {
	rec, err := repo.coll.Get(ctx, id)
	if err != nil {
		return admin.Admin{}, trapNotFound(err, admin.ErrNotFound)
	}
	var doc adminDoc
	if err = unmarshalDoc(rec, &doc); err != nil {
		return admin.Admin{}, err
	}
	return doc.unwrap(), nil
}

func (repo *AdminRepo) UpdateAdmin(ctx context.Context, a admin.Admin) (admin.Admin, error) {
	data, err := marshalDoc(wrapAdmin(a))
	if err != nil {
		return admin.Admin{}, err
	}
	if err = repo.coll.Update(ctx, a.ID, data); err != nil {
		return admin.Admin{}, trapNotFound(errors.Wrap(err, "updating admin"), admin.ErrNotFound)
	}
	return a, nil
}
