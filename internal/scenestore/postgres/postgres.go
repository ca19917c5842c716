// Package postgres implements scenestore.Store on PostgreSQL via pgx.
// Documents are kept in a JSONB column keyed by scene id.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/specialistvlad/macrograph/internal/element"
	"github.com/specialistvlad/macrograph/internal/scenestore"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS macrograph_scenes (
    id         TEXT PRIMARY KEY,
    document   JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// PGStore implements scenestore.Store using PostgreSQL.
type PGStore struct {
	db *pgxpool.Pool
}

var _ scenestore.Store = (*PGStore)(nil)

// New creates a PGStore backed by the given pool.
func New(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

// Open connects to dsn, verifies the connection and creates the schema.
func Open(ctx context.Context, dsn string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("scenestore: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("scenestore: ping: %w", err)
	}
	s := New(pool)
	if err := s.CreateSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// CreateSchema creates the scenes table if it doesn't exist.
func (s *PGStore) CreateSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("scenestore: create schema: %w", err)
	}
	return nil
}

// DropSchema drops the scenes table.
func (s *PGStore) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS macrograph_scenes;`)
	return err
}

// Load implements scenestore.Store.
func (s *PGStore) Load(ctx context.Context, id string) (*element.Snapshot, error) {
	var doc []byte
	err := s.db.QueryRow(ctx,
		`SELECT document FROM macrograph_scenes WHERE id = $1`, id,
	).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %q", scenestore.ErrSceneNotFound, id)
		}
		return nil, fmt.Errorf("scenestore: load %q: %w", id, err)
	}
	return scenestore.Decode(doc)
}

// Save implements scenestore.Store, inserting or replacing the document.
func (s *PGStore) Save(ctx context.Context, id string, doc []byte) error {
	if err := scenestore.ValidateID(id); err != nil {
		return err
	}
	if _, err := scenestore.Decode(doc); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO macrograph_scenes (id, document) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document, updated_at = NOW()`,
		id, string(doc),
	)
	if err != nil {
		return fmt.Errorf("scenestore: save %q: %w", id, err)
	}
	return nil
}

// Close releases the pool.
func (s *PGStore) Close() error {
	s.db.Close()
	return nil
}
