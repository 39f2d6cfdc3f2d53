package identity

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/mkulima/kilimo/core"
)

var (
	// errors
	ErrIDNotFound     = errors.New("id not found")
	ErrPersonNotFound = errors.New("record not found")
	// ErrIDTaken is returned when a conditional transition loses to a
	// concurrent activation attempt.
	ErrIDTaken = errors.New("id is no longer available")
)

// validation messages returned to the wizard
const (
	msgIDUnknown       = "this id does not exist; contact the admin office"
	msgIDOtherEmail    = "this id is already assigned to a different email"
	msgIDActivated     = "this id has already been activated"
	msgIDDeactivated   = "this id has been deactivated"
	msgEmailHoldsOther = "this email already holds an activated id"
)

type (
	Repository interface {
		CreateGeneratedID(ctx context.Context, gid GeneratedID) (GeneratedID, error)
		QueryAllGeneratedIDs(ctx context.Context) ([]GeneratedID, error)
		QueryGeneratedIDsByType(ctx context.Context, idType string) ([]GeneratedID, error)
		GetGeneratedIDByValue(ctx context.Context, value string) (GeneratedID, error)
		UpdateGeneratedID(ctx context.Context, gid GeneratedID) (GeneratedID, error)
		// TransitionGeneratedID updates only while the stored status still
		// equals fromStatus; ErrIDTaken otherwise.
		TransitionGeneratedID(ctx context.Context, gid GeneratedID, fromStatus string) (GeneratedID, error)
		DeleteGeneratedIDsByID(ctx context.Context, ids ...string) error
	}

	StaffRepository interface {
		CreateStaff(ctx context.Context, s Staff) (Staff, error)
		QueryAllStaff(ctx context.Context) ([]Staff, error)
		GetStaffByID(ctx context.Context, id string) (Staff, error)
		DeleteStaffByID(ctx context.Context, ids ...string) error
	}

	ResourcePersonRepository interface {
		CreateResourcePerson(ctx context.Context, rp ResourcePerson) (ResourcePerson, error)
		QueryAllResourcePersons(ctx context.Context) ([]ResourcePerson, error)
		GetResourcePersonByID(ctx context.Context, id string) (ResourcePerson, error)
		DeleteResourcePersonsByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		ids   Repository
		staff StaffRepository
		rps   ResourcePersonRepository
	}
)

func NewService(ids Repository, staff StaffRepository, rps ResourcePersonRepository) *Service {
	return &Service{ids: ids, staff: staff, rps: rps}
}

// GenerateStaffID creates the next available staff id.
func (svc *Service) GenerateStaffID(ctx context.Context) (GeneratedID, error) {
	return svc.generate(ctx, TypeStaff)
}

// GenerateResourcePersonID creates the next available resource-person id.
func (svc *Service) GenerateResourcePersonID(ctx context.Context) (GeneratedID, error) {
	return svc.generate(ctx, TypeResourcePerson)
}

// generate scans all ids of the type, takes max trailing numeral + 1 and
// creates a new available record. Two concurrent calls can compute the same
// next number; the store's uniqueness on the document id is the only guard.
func (svc *Service) generate(ctx context.Context, idType string) (GeneratedID, error) {
	existing, err := svc.ids.QueryGeneratedIDsByType(ctx, idType)
	if err != nil {
		return GeneratedID{}, errors.Wrap(err, "loading generated ids")
	}
	var max int
	for _, gid := range existing {
		if n, ok := SequenceNumber(gid.Value); ok && n > max {
			max = n
		}
	}
	now := time.Now().UTC()
	return svc.ids.CreateGeneratedID(ctx, GeneratedID{
		Value:     FormatValue(idType, max+1),
		Type:      idType,
		Status:    IDAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) QueryAll(ctx context.Context) ([]GeneratedID, error) {
	return svc.ids.QueryAllGeneratedIDs(ctx)
}

func (svc *Service) GetByValue(ctx context.Context, value string) (GeneratedID, error) {
	return svc.ids.GetGeneratedIDByValue(ctx, core.CleanString(value))
}

// ValidateAndActivate checks that the id may be claimed by the email and,
// when it is still available, transitions it to assigned. An id already
// assigned to the same email validates without a second transition so an
// interrupted wizard can resume.
func (svc *Service) ValidateAndActivate(ctx context.Context, value, email string) (ValidationResult, error) {
	value = core.CleanString(value)
	email = core.CleanString(email, true /* lower */)

	gid, err := svc.ids.GetGeneratedIDByValue(ctx, value)
	if err != nil {
		if errors.Cause(err) == ErrIDNotFound {
			return ValidationResult{Message: msgIDUnknown}, nil
		}
		return ValidationResult{}, errors.Wrap(err, "finding id by value")
	}

	switch gid.Status {
	case IDActivated:
		return ValidationResult{Message: msgIDActivated}, nil
	case IDDeactivated:
		return ValidationResult{Message: msgIDDeactivated}, nil
	case IDAssigned:
		if gid.AssignedTo != email {
			return ValidationResult{Message: msgIDOtherEmail}, nil
		}
		return ValidationResult{IsValid: true}, nil
	}

	// one id per person
	holds, err := svc.emailHoldsActivatedID(ctx, email)
	if err != nil {
		return ValidationResult{}, err
	}
	if holds {
		return ValidationResult{Message: msgEmailHoldsOther}, nil
	}

	now := time.Now().UTC()
	gid.Status = IDAssigned
	gid.AssignedTo = email
	gid.AssignedAt = null.TimeFrom(now)
	gid.UpdatedAt = now
	if _, err := svc.ids.TransitionGeneratedID(ctx, gid, IDAvailable); err != nil {
		if errors.Cause(err) == ErrIDTaken {
			return ValidationResult{Message: msgIDOtherEmail}, nil
		}
		return ValidationResult{}, errors.Wrap(err, "assigning id")
	}
	return ValidationResult{IsValid: true}, nil
}

func (svc *Service) emailHoldsActivatedID(ctx context.Context, email string) (bool, error) {
	all, err := svc.ids.QueryAllGeneratedIDs(ctx)
	if err != nil {
		return false, errors.Wrap(err, "loading generated ids")
	}
	for _, gid := range all {
		if gid.Status == IDActivated && gid.AssignedTo == email {
			return true, nil
		}
	}
	return false, nil
}

// FinalizeActivation transitions an assigned id to activated and creates
// the staff/resource-person record keyed by the id value.
func (svc *Service) FinalizeActivation(ctx context.Context, f Finalization) (GeneratedID, error) {
	gid, err := svc.ids.GetGeneratedIDByValue(ctx, f.Value)
	if err != nil {
		return GeneratedID{}, err
	}
	if gid.Status != IDAssigned || gid.AssignedTo != f.Email {
		return GeneratedID{}, core.NewValidationError(errors.New("id is not assigned to this email"))
	}

	now := time.Now().UTC()
	gid.Status = IDActivated
	gid.ActivatedAt = null.TimeFrom(now)
	gid.UpdatedAt = now
	gid, err = svc.ids.TransitionGeneratedID(ctx, gid, IDAssigned)
	if err != nil {
		return GeneratedID{}, errors.Wrap(err, "activating id")
	}

	if gid.Type == TypeResourcePerson {
		_, err = svc.rps.CreateResourcePerson(ctx, ResourcePerson{
			ID:         gid.Value,
			Name:       f.Name,
			Email:      f.Email,
			Phone:      f.Phone,
			Speciality: f.Speciality,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	} else {
		_, err = svc.staff.CreateStaff(ctx, Staff{
			ID:        gid.Value,
			Name:      f.Name,
			Email:     f.Email,
			Phone:     f.Phone,
			Role:      f.Role,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	if err != nil {
		return GeneratedID{}, errors.Wrap(err, "creating person record")
	}
	return gid, nil
}

// AdminFree returns an assigned or activated id to the available pool,
// keeping an audit trail of the release.
func (svc *Service) AdminFree(ctx context.Context, value, reason string) (GeneratedID, error) {
	gid, err := svc.ids.GetGeneratedIDByValue(ctx, core.CleanString(value))
	if err != nil {
		return GeneratedID{}, err
	}
	if gid.Status != IDAssigned && gid.Status != IDActivated {
		return GeneratedID{}, core.NewValidationError(errors.New("id is not assigned or activated"))
	}

	now := time.Now().UTC()
	gid.Status = IDAvailable
	gid.AssignedTo = ""
	gid.AssignedAt = null.Time{}
	gid.ActivatedAt = null.Time{}
	gid.UsageCount++
	gid.FreedAt = null.TimeFrom(now)
	gid.FreedReason = reason
	gid.UpdatedAt = now
	return svc.ids.UpdateGeneratedID(ctx, gid)
}

// DeleteStaff removes a staff record and frees its id in one flow.
func (svc *Service) DeleteStaff(ctx context.Context, id string) error {
	if err := svc.staff.DeleteStaffByID(ctx, id); err != nil {
		return errors.Wrap(err, "deleting staff record")
	}
	if _, err := svc.AdminFree(ctx, id, "staff record deleted"); err != nil && errors.Cause(err) != ErrIDNotFound {
		return errors.Wrap(err, "freeing id")
	}
	return nil
}

// DeleteResourcePerson removes a resource-person record and frees its id.
func (svc *Service) DeleteResourcePerson(ctx context.Context, id string) error {
	if err := svc.rps.DeleteResourcePersonsByID(ctx, id); err != nil {
		return errors.Wrap(err, "deleting resource person record")
	}
	if _, err := svc.AdminFree(ctx, id, "resource person record deleted"); err != nil && errors.Cause(err) != ErrIDNotFound {
		return errors.Wrap(err, "freeing id")
	}
	return nil
}

func (svc *Service) QueryAllStaff(ctx context.Context) ([]Staff, error) {
	return svc.staff.QueryAllStaff(ctx)
}

func (svc *Service) QueryAllResourcePersons(ctx context.Context) ([]ResourcePerson, error) {
	return svc.rps.QueryAllResourcePersons(ctx)
}
