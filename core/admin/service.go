package admin

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/mkulima/kilimo/core"
)

var (
	ErrNotFound    = errors.New("admin not found")
	ErrEmailExists = errors.New("an admin with this email already exists")
)

type (
	Repository interface {
		CreateAdmin(ctx context.Context, a Admin) (Admin, error)
		GetAdminByEmail(ctx context.Context, email string) (Admin, error)
		GetAdminByID(ctx context.Context, id string) (Admin, error)
		UpdateAdmin(ctx context.Context, a Admin) (Admin, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, name, email, password string) (Admin, error) {
	email = core.CleanString(email, true /* lower */)
	if _, err := svc.repo.GetAdminByEmail(ctx, email); err == nil {
		return Admin{}, ErrEmailExists
	} else if errors.Cause(err) != ErrNotFound {
		return Admin{}, errors.Wrap(err, "checking admin email")
	}

	a := Admin{
		Name:      core.CleanString(name),
		Email:     email,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.SetPassword(password); err != nil {
		return Admin{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateAdmin(ctx, a)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Admin, error) {
	return svc.repo.GetAdminByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) GetByID(ctx context.Context, id string) (Admin, error) {
	return svc.repo.GetAdminByID(ctx, id)
}

func (svc *Service) SetLastLogin(ctx context.Context, a Admin) (Admin, error) {
	a.LastLogin = time.Now().UTC()
	return svc.repo.UpdateAdmin(ctx, a)
}
