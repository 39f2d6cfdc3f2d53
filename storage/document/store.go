// Package document implements the document store contract over Postgres:
// one table of (collection, id, jsonb) rows, equality queries via the
// ->> operator.
package document

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/mkulima/kilimo/core/store"
)

type docStore struct {
	db *sqlx.DB
}

var _ store.Store = (*docStore)(nil)

func NewStore(db *sqlx.DB) store.Store {
	return &docStore{db: db}
}

func (s *docStore) Collection(name string) store.Collection {
	return &collection{db: s.db, name: name}
}

func (s *docStore) Close() error {
	return s.db.Close()
}

type collection struct {
	db   *sqlx.DB
	name string
}

func orderClause(ordering []store.Ordering) string {
	if len(ordering) == 0 {
		return " ORDER BY id"
	}
	clause := " ORDER BY"
	for i, ord := range ordering {
		direction := "DESC"
		if ord.Ascending {
			direction = "ASC"
		}
		if i > 0 {
			clause += ","
		}
		clause += fmt.Sprintf(" doc->>'%s' %s", ord.Field, direction)
	}
	return clause
}

func (c *collection) scan(rows *sql.Rows) ([]store.Record, error) {
	defer func() { _ = rows.Close() }()

	var recs []store.Record
	for rows.Next() {
		var rec store.Record
		if err := rows.Scan(&rec.ID, &rec.Data); err != nil {
			return nil, errors.Wrap(err, "scanning document")
		}
		recs = append(recs, rec)
	}
	return recs, errors.Wrap(rows.Err(), "iterating documents")
}

func (c *collection) All(ctx context.Context, ordering ...store.Ordering) ([]store.Record, error) {
	q := "SELECT id, doc FROM documents WHERE collection = $1" + orderClause(ordering)
	rows, err := c.db.QueryContext(ctx, q, c.name)
	if err != nil {
		return nil, errors.Wrap(err, "querying collection "+c.name)
	}
	return c.scan(rows)
}

func (c *collection) Get(ctx context.Context, id string) (store.Record, error) {
	rec := store.Record{ID: id}
	q := "SELECT doc FROM documents WHERE collection = $1 AND id = $2"
	if err := c.db.QueryRowContext(ctx, q, c.name, id).Scan(&rec.Data); err != nil {
		if err == sql.ErrNoRows {
			return store.Record{}, store.ErrNotFound
		}
		return store.Record{}, errors.Wrap(err, "getting document")
	}
	return rec, nil
}

func (c *collection) Find(ctx context.Context, field, value string, ordering ...store.Ordering) ([]store.Record, error) {
	q := "SELECT id, doc FROM documents WHERE collection = $1 AND doc->>$2 = $3" + orderClause(ordering)
	rows, err := c.db.QueryContext(ctx, q, c.name, field, value)
	if err != nil {
		return nil, errors.Wrap(err, "querying collection "+c.name)
	}
	return c.scan(rows)
}

func (c *collection) Add(ctx context.Context, id string, data []byte) error {
	q := "INSERT INTO documents (collection, id, doc) VALUES ($1, $2, $3)"
	if _, err := c.db.ExecContext(ctx, q, c.name, id, data); err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return store.ErrExists
		}
		return errors.Wrap(err, "adding document")
	}
	return nil
}

func (c *collection) Update(ctx context.Context, id string, data []byte) error {
	q := "UPDATE documents SET doc = $3 WHERE collection = $1 AND id = $2"
	res, err := c.db.ExecContext(ctx, q, c.name, id, data)
	if err != nil {
		return errors.Wrap(err, "updating document")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "updating document")
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (c *collection) UpdateIf(ctx context.Context, id string, data []byte, field, expected string) error {
	q := "UPDATE documents SET doc = $3 WHERE collection = $1 AND id = $2 AND doc->>$4 = $5"
	res, err := c.db.ExecContext(ctx, q, c.name, id, data, field, expected)
	if err != nil {
		return errors.Wrap(err, "updating document")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "updating document")
	}
	if n > 0 {
		return nil
	}
	// the precondition failed or the document is gone
	if _, err := c.Get(ctx, id); err != nil {
		return err
	}
	return store.ErrStale
}

func (c *collection) Delete(ctx context.Context, id string) error {
	q := "DELETE FROM documents WHERE collection = $1 AND id = $2"
	res, err := c.db.ExecContext(ctx, q, c.name, id)
	if err != nil {
		return errors.Wrap(err, "deleting document")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "deleting document")
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (c *collection) BatchDelete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q := "DELETE FROM documents WHERE collection = $1 AND id = ANY($2)"
	_, err := c.db.ExecContext(ctx, q, c.name, pq.Array(ids))
	return errors.Wrap(err, "batch-deleting documents")
}
