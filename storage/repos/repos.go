// Package repos provides the typed entity repositories used by the core
// services. Every repository reads and writes JSON documents through the
// store.Store contract, so the same code runs against the Postgres-backed
// document store and the in-memory one.
package repos

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mkulima/kilimo/core/store"
)

func newID() string { return uuid.New().String() }

func marshalDoc(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	return data, errors.Wrap(err, "encoding document")
}

func unmarshalDoc(rec store.Record, v interface{}) error {
	return errors.Wrapf(json.Unmarshal(rec.Data, v), "decoding document %s", rec.ID)
}

// trapNotFound swaps the store's generic not-found error for the entity's.
func trapNotFound(err, entityErr error) error {
	if errors.Cause(err) == store.ErrNotFound {
		return entityErr
	}
	return err
}
