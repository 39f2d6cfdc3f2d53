package trainee

import (
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/mkulima/kilimo/core"
)

// Allocation statuses
const (
	StatusPending   = "pending"
	StatusAllocated = "allocated"
	StatusNoRooms   = "no_rooms"
	StatusNoTags    = "no_tags"
)

// Genders
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// Pending is the sentinel used in tagNumber/roomNumber/roomBlock/bedSpace
// until allocation assigns a real value.
const Pending = "pending"

var AllocationStatuses = []string{StatusPending, StatusAllocated, StatusNoRooms, StatusNoTags}

type Trainee struct {
	ID               string    `json:"id"`
	FirstName        string    `json:"firstName"`
	Surname          string    `json:"surname"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	Gender           string    `json:"gender"`
	Sponsor          string    `json:"sponsor"`
	Batch            string    `json:"batch"`
	TagNumber        string    `json:"tagNumber"`
	RoomNumber       string    `json:"roomNumber"`
	RoomBlock        string    `json:"roomBlock"`
	BedSpace         string    `json:"bedSpace"`
	AllocationStatus string    `json:"allocationStatus"`
	Verified         bool      `json:"verified"`
	PasswordHash     []byte    `json:"-"`
	CreatedAt        time.Time `json:"created_at"` // UTC
	UpdatedAt        time.Time `json:"updated_at"` // UTC
}

// HashPassword hashes a password for storage, with bcrypt.
func HashPassword(pwd string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
}

func (t *Trainee) SetPassword(pwd string) error {
	hash, err := HashPassword(pwd)
	if err != nil {
		return err
	}
	t.PasswordHash = hash
	return nil
}

func (t *Trainee) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(t.PasswordHash, []byte(pwd))
}

// HasTag reports whether a real tag number is assigned.
func (t *Trainee) HasTag() bool {
	return t.TagNumber != "" && t.TagNumber != Pending
}

// HasRoom reports whether a real room is assigned.
func (t *Trainee) HasRoom() bool {
	return t.RoomNumber != "" && t.RoomNumber != Pending
}

// NeedsTag mirrors the pending-tag predicate used by reconciliation:
// status still pending, or no real tag value.
func (t *Trainee) NeedsTag() bool {
	return t.AllocationStatus == StatusPending || !t.HasTag()
}

// NewTrainee is the registration wizard's first step.
type NewTrainee struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

func (nt *NewTrainee) Validate(validate *validator.Validate, translator ut.Translator) error {
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	return validate.Struct(nt)
}

// Profile completes the trainee's identity after email verification.
type Profile struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"firstName" validate:"required,alphanum_"`
	Surname   string `json:"surname" validate:"required,alphanum_"`
	Phone     string `json:"phone" validate:"required,phone"`
	Gender    string `json:"gender" validate:"required,gender"`
	Sponsor   string `json:"sponsor" validate:"omitempty"`
	Batch     string `json:"batch" validate:"omitempty"`
}

func (p *Profile) Validate(validate *validator.Validate, translator ut.Translator) error {
	p.Email = core.CleanString(p.Email, true /* lower */)
	p.FirstName = core.CleanString(p.FirstName)
	p.Surname = core.CleanString(p.Surname)
	p.Phone = core.CleanString(p.Phone)
	p.Gender = core.CleanString(p.Gender, true /* lower */)
	return validate.Struct(p)
}

// UpdateTrainee defines what information admins may modify.
type UpdateTrainee struct {
	FirstName        string `json:"firstName"`
	Surname          string `json:"surname"`
	Phone            string `json:"phone"`
	Gender           string `json:"gender" validate:"omitempty,gender"`
	Sponsor          string `json:"sponsor"`
	Batch            string `json:"batch"`
	TagNumber        string `json:"tagNumber"`
	RoomNumber       string `json:"roomNumber"`
	RoomBlock        string `json:"roomBlock"`
	BedSpace         string `json:"bedSpace"`
	AllocationStatus string `json:"allocationStatus" validate:"omitempty,allocstatus"`
}

func (uu *UpdateTrainee) Validate(validate *validator.Validate, translator ut.Translator) error {
	uu.Gender = core.CleanString(uu.Gender, true /* lower */)
	return validate.Struct(uu)
}

type QueryFilter struct {
	Search           string `query:"search"`
	Gender           string `query:"gender"`
	AllocationStatus string `query:"allocation_status"`
	Sponsor          string `query:"sponsor"`
	Batch            string `query:"batch"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Gender == "" && qf.AllocationStatus == "" && qf.Sponsor == "" && qf.Batch == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Gender = core.CleanString(qf.Gender, true /* lower */)
	qf.AllocationStatus = core.CleanString(qf.AllocationStatus, true /* lower */)
}

// Match applies the AND of the set filter fields.
// Search does a case-insensitive match on name, email or tag number.
func (qf *QueryFilter) Match(t Trainee) bool {
	if qf.Gender != "" && t.Gender != qf.Gender {
		return false
	}
	if qf.AllocationStatus != "" && t.AllocationStatus != qf.AllocationStatus {
		return false
	}
	if qf.Sponsor != "" && t.Sponsor != qf.Sponsor {
		return false
	}
	if qf.Batch != "" && t.Batch != qf.Batch {
		return false
	}
	if qf.Search != "" {
		return containsFold(t.FirstName, qf.Search) ||
			containsFold(t.Surname, qf.Search) ||
			containsFold(t.Email, qf.Search) ||
			containsFold(t.TagNumber, qf.Search)
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
