// Package inmemstore is an in-memory implementation of the document store
// contract, used in development and tests.
package inmemstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/mkulima/kilimo/core/store"
)

type (
	table map[string][]byte // id -> JSON doc

	Store struct {
		mutex       sync.RWMutex
		collections map[string]table
		seq         map[string][]string // insertion order per collection
	}

	collection struct {
		store *Store
		name  string
	}
)

var _ store.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		collections: make(map[string]table),
		seq:         make(map[string][]string),
	}
}

func (s *Store) Collection(name string) store.Collection {
	return &collection{store: s, name: name}
}

func (s *Store) Close() error { return nil }

// Reset drops all collections; for tests.
func (s *Store) Reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.collections = make(map[string]table)
	s.seq = make(map[string][]string)
}

func (s *Store) table(name string) table {
	t, ok := s.collections[name]
	if !ok {
		t = make(table)
		s.collections[name] = t
	}
	return t
}

// fieldValue extracts a top-level document field as its string form, the
// way the ->> operator renders it.
func fieldValue(data []byte, field string) string {
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return ""
	}
	v, ok := doc[field]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func (c *collection) records() []store.Record {
	t := c.store.table(c.name)
	recs := make([]store.Record, 0, len(t))
	for _, id := range c.store.seq[c.name] {
		if data, ok := t[id]; ok {
			recs = append(recs, store.Record{ID: id, Data: data})
		}
	}
	return recs
}

func applyOrdering(recs []store.Record, ordering []store.Ordering) {
	if len(ordering) == 0 {
		return
	}
	sort.SliceStable(recs, func(i, j int) bool {
		for _, ord := range ordering {
			vi := fieldValue(recs[i].Data, ord.Field)
			vj := fieldValue(recs[j].Data, ord.Field)
			if vi == vj {
				continue
			}
			if ord.Ascending {
				return vi < vj
			}
			return vi > vj
		}
		return false
	})
}

func (c *collection) All(_ context.Context, ordering ...store.Ordering) ([]store.Record, error) {
	c.store.mutex.RLock()
	defer c.store.mutex.RUnlock()
	recs := c.records()
	applyOrdering(recs, ordering)
	return recs, nil
}

func (c *collection) Get(_ context.Context, id string) (store.Record, error) {
	c.store.mutex.RLock()
	defer c.store.mutex.RUnlock()
	if data, ok := c.store.table(c.name)[id]; ok {
		return store.Record{ID: id, Data: data}, nil
	}
	return store.Record{}, store.ErrNotFound
}

func (c *collection) Find(_ context.Context, field, value string, ordering ...store.Ordering) ([]store.Record, error) {
	c.store.mutex.RLock()
	defer c.store.mutex.RUnlock()
	var matches []store.Record
	for _, rec := range c.records() {
		if fieldValue(rec.Data, field) == value {
			matches = append(matches, rec)
		}
	}
	applyOrdering(matches, ordering)
	return matches, nil
}

func (c *collection) Add(_ context.Context, id string, data []byte) error {
	c.store.mutex.Lock()
	defer c.store.mutex.Unlock()
	t := c.store.table(c.name)
	if _, ok := t[id]; ok {
		return store.ErrExists
	}
	t[id] = data
	c.store.seq[c.name] = append(c.store.seq[c.name], id)
	return nil
}

func (c *collection) Update(_ context.Context, id string, data []byte) error {
	c.store.mutex.Lock()
	defer c.store.mutex.Unlock()
	t := c.store.table(c.name)
	if _, ok := t[id]; !ok {
		return store.ErrNotFound
	}
	t[id] = data
	return nil
}

func (c *collection) UpdateIf(_ context.Context, id string, data []byte, field, expected string) error {
	c.store.mutex.Lock()
	defer c.store.mutex.Unlock()
	t := c.store.table(c.name)
	old, ok := t[id]
	if !ok {
		return store.ErrNotFound
	}
	if fieldValue(old, field) != expected {
		return store.ErrStale
	}
	t[id] = data
	return nil
}

func (c *collection) Delete(_ context.Context, id string) error {
	c.store.mutex.Lock()
	defer c.store.mutex.Unlock()
	t := c.store.table(c.name)
	if _, ok := t[id]; !ok {
		return store.ErrNotFound
	}
	delete(t, id)
	return nil
}

func (c *collection) BatchDelete(_ context.Context, ids ...string) error {
	c.store.mutex.Lock()
	defer c.store.mutex.Unlock()
	t := c.store.table(c.name)
	for _, id := range ids {
		delete(t, id)
	}
	return nil
}
