package trainee

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/mkulima/kilimo/core"
)

var (
	// errors
	ErrNotFound    = errors.New("trainee not found")
	ErrEmailExists = errors.New("this email is already registered as a trainee")
)

type (
	Repository interface {
		CreateTrainee(ctx context.Context, t Trainee) (Trainee, error)
		QueryAllTrainees(ctx context.Context) ([]Trainee, error)
		GetTraineeByID(ctx context.Context, id string) (Trainee, error)
		GetTraineeByEmail(ctx context.Context, email string) (Trainee, error)
		// FilterTrainees applies AND operation on available QueryFilter fields.
		FilterTrainees(ctx context.Context, filter QueryFilter) ([]Trainee, error)
		UpdateTrainee(ctx context.Context, t Trainee) (Trainee, error)
		DeleteTraineesByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CheckEmailAvailable returns a field-level validation error when the email
// already belongs to a trainee.
func (svc *Service) CheckEmailAvailable(ctx context.Context, email string) error {
	_, err := svc.repo.GetTraineeByEmail(ctx, core.CleanString(email, true /* lower */))
	if err == nil {
		return core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
	}
	if errors.Cause(err) == ErrNotFound {
		return nil
	}
	return errors.Wrap(err, "checking email availability")
}

// Register creates the trainee record once the email verification round-trip
// completed. All allocation fields start out pending.
func (svc *Service) Register(ctx context.Context, nt NewTrainee) (Trainee, error) {
	hash, err := HashPassword(nt.Password)
	if err != nil {
		return Trainee{}, errors.Wrap(err, "hashing password")
	}
	return svc.RegisterVerified(ctx, nt.Email, hash)
}

// RegisterVerified creates the trainee record from credentials parked at the
// first wizard step; the password was hashed before being parked.
func (svc *Service) RegisterVerified(ctx context.Context, email string, passwordHash []byte) (Trainee, error) {
	if err := svc.CheckEmailAvailable(ctx, email); err != nil {
		return Trainee{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateTrainee(ctx, Trainee{
		Email:            email,
		TagNumber:        Pending,
		RoomNumber:       Pending,
		RoomBlock:        Pending,
		BedSpace:         Pending,
		AllocationStatus: StatusPending,
		Verified:         true,
		PasswordHash:     passwordHash,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
}

// CompleteProfile fills in the identity fields gathered by the later wizard
// steps. The caller must hold the trainee's password.
func (svc *Service) CompleteProfile(ctx context.Context, p Profile) (Trainee, error) {
	t, err := svc.repo.GetTraineeByEmail(ctx, p.Email)
	if err != nil {
		return Trainee{}, err
	}
	if err := t.CheckPassword(p.Password); err != nil {
		return Trainee{}, core.NewValidationError(errors.New("invalid credentials"))
	}
	t.FirstName = p.FirstName
	t.Surname = p.Surname
	t.Phone = p.Phone
	t.Gender = p.Gender
	t.Sponsor = p.Sponsor
	t.Batch = p.Batch
	t.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTrainee(ctx, t)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Trainee, error) {
	return svc.repo.QueryAllTrainees(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Trainee, error) {
	return svc.repo.GetTraineeByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Trainee, error) {
	return svc.repo.GetTraineeByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Trainee, error) {
	return svc.repo.FilterTrainees(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, id string, uu UpdateTrainee) (Trainee, error) {
	t, err := svc.repo.GetTraineeByID(ctx, id)
	if err != nil {
		return Trainee{}, err
	}
	if uu.FirstName != "" {
		t.FirstName = uu.FirstName
	}
	if uu.Surname != "" {
		t.Surname = uu.Surname
	}
	if uu.Phone != "" {
		t.Phone = uu.Phone
	}
	if uu.Gender != "" {
		t.Gender = uu.Gender
	}
	if uu.Sponsor != "" {
		t.Sponsor = uu.Sponsor
	}
	if uu.Batch != "" {
		t.Batch = uu.Batch
	}
	if uu.TagNumber != "" {
		t.TagNumber = uu.TagNumber
	}
	if uu.RoomNumber != "" {
		t.RoomNumber = uu.RoomNumber
	}
	if uu.RoomBlock != "" {
		t.RoomBlock = uu.RoomBlock
	}
	if uu.BedSpace != "" {
		t.BedSpace = uu.BedSpace
	}
	if uu.AllocationStatus != "" {
		t.AllocationStatus = uu.AllocationStatus
	}
	t.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTrainee(ctx, t)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteTraineesByID(ctx, ids...)
}
