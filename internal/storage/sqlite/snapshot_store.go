// Package sqlite persists graph snapshots to a SQLite database file.
//
// It is an alternative to the JSON snapshot written by the memory store:
// the same three ordered collections, queryable with any SQLite client.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/scrypster/docgraph/internal/storage"
	"github.com/scrypster/docgraph/pkg/types"
)

// SnapshotStore reads and writes whole-graph snapshots.
type SnapshotStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the schema.
func Open(path string) (*SnapshotStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer at a time; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SnapshotStore{db: db}, nil
}

// Close releases the database handle.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

// GetDB exposes the underlying connection.
func (s *SnapshotStore) GetDB() *sql.DB {
	return s.db
}

// Write replaces the stored snapshot with snap in one transaction.
func (s *SnapshotStore) Write(ctx context.Context, snap storage.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"entities", "relationships", "text_chunks"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("sqlite: clear %s: %w", table, err)
		}
	}

	for i, e := range snap.Entities {
		props, err := marshalProps(e.Properties)
		if err != nil {
			return fmt.Errorf("sqlite: entity %s: %w", e.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO entities (position, id, type, name, properties, confidence) VALUES (?, ?, ?, ?, ?, ?)`,
			i, e.ID, e.Type, e.Name, props, e.Confidence); err != nil {
			return fmt.Errorf("sqlite: insert entity %s: %w", e.ID, err)
		}
	}

	for i, r := range snap.Relationships {
		props, err := marshalProps(r.Properties)
		if err != nil {
			return fmt.Errorf("sqlite: relationship %s: %w", r.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO relationships (position, id, type, source, target, properties, confidence) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			i, r.ID, r.Type, r.Source, r.Target, props, r.Confidence); err != nil {
			return fmt.Errorf("sqlite: insert relationship %s: %w", r.ID, err)
		}
	}

	for i, c := range snap.TextChunks {
		meta, err := marshalProps(c.Metadata)
		if err != nil {
			return fmt.Errorf("sqlite: chunk %s: %w", c.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO text_chunks (position, id, text, metadata) VALUES (?, ?, ?, ?)`,
			i, c.ID, c.Text, meta); err != nil {
			return fmt.Errorf("sqlite: insert chunk %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

// Read returns the stored snapshot in insertion order.
func (s *SnapshotStore) Read(ctx context.Context) (storage.Snapshot, error) {
	var snap storage.Snapshot

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, name, properties, confidence FROM entities ORDER BY position`)
	if err != nil {
		return snap, fmt.Errorf("sqlite: query entities: %w", err)
	}
	for rows.Next() {
		var (
			e     types.Entity
			props string
		)
		if err := rows.Scan(&e.ID, &e.Type, &e.Name, &props, &e.Confidence); err != nil {
			rows.Close()
			return snap, fmt.Errorf("sqlite: scan entity: %w", err)
		}
		if e.Properties, err = unmarshalProps(props); err != nil {
			rows.Close()
			return snap, fmt.Errorf("%w: entity %s: %w", storage.ErrMalformedSnapshot, e.ID, err)
		}
		snap.Entities = append(snap.Entities, &e)
	}
	if err := closeRows(rows); err != nil {
		return snap, err
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT id, type, source, target, properties, confidence FROM relationships ORDER BY position`)
	if err != nil {
		return snap, fmt.Errorf("sqlite: query relationships: %w", err)
	}
	for rows.Next() {
		var (
			r     types.Relationship
			props string
		)
		if err := rows.Scan(&r.ID, &r.Type, &r.Source, &r.Target, &props, &r.Confidence); err != nil {
			rows.Close()
			return snap, fmt.Errorf("sqlite: scan relationship: %w", err)
		}
		if r.Properties, err = unmarshalProps(props); err != nil {
			rows.Close()
			return snap, fmt.Errorf("%w: relationship %s: %w", storage.ErrMalformedSnapshot, r.ID, err)
		}
		snap.Relationships = append(snap.Relationships, &r)
	}
	if err := closeRows(rows); err != nil {
		return snap, err
	}

	rows, err = s.db.QueryContext(ctx, `SELECT id, text, metadata FROM text_chunks ORDER BY position`)
	if err != nil {
		return snap, fmt.Errorf("sqlite: query chunks: %w", err)
	}
	for rows.Next() {
		var (
			c    types.TextChunk
			meta string
		)
		if err := rows.Scan(&c.ID, &c.Text, &meta); err != nil {
			rows.Close()
			return snap, fmt.Errorf("sqlite: scan chunk: %w", err)
		}
		if c.Metadata, err = unmarshalProps(meta); err != nil {
			rows.Close()
			return snap, fmt.Errorf("%w: chunk %s: %w", storage.ErrMalformedSnapshot, c.ID, err)
		}
		snap.TextChunks = append(snap.TextChunks, &c)
	}
	if err := closeRows(rows); err != nil {
		return snap, err
	}

	return snap, nil
}

// Export writes snap to a SQLite file at path, replacing any previous export.
func Export(ctx context.Context, path string, snap storage.Snapshot) error {
	s, err := Open(path)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.Write(ctx, snap)
}

// Import reads a snapshot from the SQLite file at path. It reports false
// without error when the file does not exist.
func Import(ctx context.Context, path string) (storage.Snapshot, bool, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return storage.Snapshot{}, false, nil
	}
	s, err := Open(path)
	if err != nil {
		return storage.Snapshot{}, false, err
	}
	defer s.Close()

	snap, err := s.Read(ctx)
	if err != nil {
		return storage.Snapshot{}, false, err
	}
	return snap, true, nil
}

func marshalProps(p types.Properties) (string, error) {
	if p == nil {
		return "{}", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalProps(raw string) (types.Properties, error) {
	p := types.Properties{}
	if raw == "" {
		return p, nil
	}
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, err
	}
	return p, nil
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("sqlite: iterate: %w", err)
	}
	return rows.Close()
}
