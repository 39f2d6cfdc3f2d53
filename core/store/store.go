// Package store defines the contract for the remote document store.
// Entities are JSON documents grouped in named collections; the store only
// knows raw records, typed mapping lives in storage/repos.
package store

import (
	"context"

	"github.com/pkg/errors"
)

// Collection names. Kept in one place so collection access never goes
// through ad-hoc string literals.
const (
	Trainees            = "trainees"
	Rooms               = "rooms"
	TagNumbers          = "tagNumbers"
	GeneratedIDs        = "generatedIds"
	Sponsors            = "sponsors"
	Batches             = "batches"
	EvaluationQuestions = "evaluation_questions"
	EvaluationResponses = "evaluation_responses"
	StaffRegistrations  = "staff_registrations"
	ResourcePersons     = "resource_person_registrations"
	Notifications       = "notifications"
	Messages            = "messages"
	Exams               = "exams"
	Announcements       = "announcements"
	Settings            = "settings"
	Admins              = "admins"
)

var (
	ErrNotFound = errors.New("document not found")
	ErrExists   = errors.New("document already exists")
	// ErrStale is returned by UpdateIf when the guarded field no longer
	// holds the expected value.
	ErrStale = errors.New("document changed concurrently")
)

type (
	// Record is a raw document together with its collection-unique ID.
	Record struct {
		ID   string
		Data []byte // JSON
	}

	Ordering struct {
		Field     string
		Ascending bool
	}

	Collection interface {
		All(ctx context.Context, ordering ...Ordering) ([]Record, error)
		Get(ctx context.Context, id string) (Record, error)
		// Find applies an equality match on a top-level document field.
		Find(ctx context.Context, field, value string, ordering ...Ordering) ([]Record, error)
		Add(ctx context.Context, id string, data []byte) error
		Update(ctx context.Context, id string, data []byte) error
		// UpdateIf writes data only while the stored document still has
		// field == expected; ErrStale otherwise. This is the claim
		// primitive used by allocation and the id lifecycle.
		UpdateIf(ctx context.Context, id string, data []byte, field, expected string) error
		Delete(ctx context.Context, id string) error
		BatchDelete(ctx context.Context, ids ...string) error
	}

	Store interface {
		Collection(name string) Collection
		Close() error
	}
)
