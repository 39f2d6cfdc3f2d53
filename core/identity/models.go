package identity

import (
	"fmt"
	"regexp"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/mkulima/kilimo/core"
)

// GeneratedID statuses
const (
	IDAvailable   = "available"
	IDAssigned    = "assigned"
	IDActivated   = "activated"
	IDDeactivated = "deactivated"
)

// GeneratedID types
const (
	TypeStaff          = "staff"
	TypeResourcePerson = "resource_person"
)

// Literal id prefixes: ST-0C0S0S{n} / RP-0C0S0S{n}
const (
	staffPrefix          = "ST-0C0S0S"
	resourcePersonPrefix = "RP-0C0S0S"
)

var trailingNumeral = regexp.MustCompile(`(\d+)$`)

// GeneratedID is a sequential, human-readable identifier issued to
// staff/resource-persons before they complete registration.
type GeneratedID struct {
	ID          string    `json:"id"`
	Value       string    `json:"value"` // e.g. ST-0C0S0S7
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	AssignedTo  string    `json:"assignedTo"` // email
	UsageCount  int       `json:"usageCount"`
	AssignedAt  null.Time `json:"assignedAt"`
	ActivatedAt null.Time `json:"activatedAt"`
	FreedAt     null.Time `json:"freedAt"`
	FreedReason string    `json:"freedReason"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

func prefixFor(idType string) string {
	if idType == TypeResourcePerson {
		return resourcePersonPrefix
	}
	return staffPrefix
}

// FormatValue renders the literal id for a type and sequence number.
func FormatValue(idType string, n int) string {
	return fmt.Sprintf("%s%d", prefixFor(idType), n)
}

// SequenceNumber parses the trailing numeral of an id value; ok is false
// when there is none.
func SequenceNumber(value string) (int, bool) {
	m := trailingNumeral.FindStringSubmatch(value)
	if m == nil {
		return 0, false
	}
	var n int
	if _, err := fmt.Sscanf(m[1], "%d", &n); err != nil {
		return 0, false
	}
	return n, true
}

// Staff is the record created when a staff id is activated; it is keyed by
// the generated id value itself.
type Staff struct {
	ID        string    `json:"id"` // = GeneratedID.Value
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// ResourcePerson is the record created when a resource-person id is
// activated; keyed like Staff.
type ResourcePerson struct {
	ID         string    `json:"id"` // = GeneratedID.Value
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Speciality string    `json:"speciality"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

// ValidationResult is the outcome of checking an id/email pair before the
// registration wizard lets the holder proceed.
type ValidationResult struct {
	IsValid bool   `json:"isValid"`
	Message string `json:"message,omitempty"`
}

// Finalization carries the profile submitted on the last wizard step.
type Finalization struct {
	Value      string `json:"id" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Name       string `json:"name" validate:"required"`
	Phone      string `json:"phone" validate:"required,phone"`
	Role       string `json:"role" validate:"omitempty"`
	Speciality string `json:"speciality" validate:"omitempty"`
}

func (f *Finalization) Validate(validate *validator.Validate, translator ut.Translator) error {
	f.Value = core.CleanString(f.Value)
	f.Email = core.CleanString(f.Email, true /* lower */)
	f.Name = core.CleanString(f.Name)
	f.Phone = core.CleanString(f.Phone)
	return validate.Struct(f)
}
