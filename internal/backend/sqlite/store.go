// Package sqlite implements service.Gateway on a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-sqlite3"

	"todo/internal/service"
)

//go:embed schema.sql
var schemaSQL string

// Store is a service.Gateway backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and applies the schema.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// GetDocument implements service.Gateway.
func (s *Store) GetDocument(ctx context.Context, ownerID string) (service.Document, error) {
	id := service.DocumentID(ownerID)
	if err := s.requireDocument(ctx, s.db, ownerID, id); err != nil {
		return service.Document{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, value FROM fields WHERE owner_id = ? AND document_id = ?`,
		ownerID, id,
	)
	if err != nil {
		return service.Document{}, fmt.Errorf("get document: %w", err)
	}
	defer rows.Close()

	fields := make(map[string]any)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return service.Document{}, fmt.Errorf("get document: %w", err)
		}
		fields[name] = value
	}
	if err := rows.Err(); err != nil {
		return service.Document{}, fmt.Errorf("get document: %w", err)
	}

	return service.Document{ID: id, Fields: fields}, nil
}

// SetFields implements service.Gateway. All fields are written in one transaction.
func (s *Store) SetFields(ctx context.Context, ownerID, documentID string, fields map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("set fields: %w", err)
	}
	defer tx.Rollback()

	if err := s.requireDocument(ctx, tx, ownerID, documentID); err != nil {
		return err
	}
	for name, value := range fields {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO fields (owner_id, document_id, name, value)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (owner_id, document_id, name) DO UPDATE SET value = excluded.value
		`, ownerID, documentID, name, value)
		if err != nil {
			return fmt.Errorf("set field %s: %w", name, err)
		}
	}
	if err := touch(ctx, tx, ownerID, documentID); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteField implements service.Gateway.
func (s *Store) DeleteField(ctx context.Context, ownerID, documentID, field string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete field: %w", err)
	}
	defer tx.Rollback()

	if err := s.requireDocument(ctx, tx, ownerID, documentID); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`DELETE FROM fields WHERE owner_id = ? AND document_id = ? AND name = ?`,
		ownerID, documentID, field,
	)
	if err != nil {
		return fmt.Errorf("delete field %s: %w", field, err)
	}
	if err := touch(ctx, tx, ownerID, documentID); err != nil {
		return err
	}

	return tx.Commit()
}

// CreateDocument implements service.Gateway.
func (s *Store) CreateDocument(ctx context.Context, ownerID, documentID string, fields map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (owner_id, document_id) VALUES (?, ?)`,
		ownerID, documentID,
	)
	if err != nil {
		var sqlErr sqlite3.Error
		if errors.As(err, &sqlErr) && sqlErr.Code == sqlite3.ErrConstraint {
			return service.ErrAlreadyExists
		}
		return fmt.Errorf("create document: %w", err)
	}
	for name, value := range fields {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO fields (owner_id, document_id, name, value) VALUES (?, ?, ?, ?)`,
			ownerID, documentID, name, value,
		)
		if err != nil {
			return fmt.Errorf("create document: field %s: %w", name, err)
		}
	}

	return tx.Commit()
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// requireDocument returns service.ErrNotFound if the document does not exist.
func (s *Store) requireDocument(ctx context.Context, q queryer, ownerID, documentID string) error {
	var exists int
	err := q.QueryRowContext(ctx,
		`SELECT 1 FROM documents WHERE owner_id = ? AND document_id = ?`,
		ownerID, documentID,
	).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return service.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup document: %w", err)
	}
	return nil
}

func touch(ctx context.Context, e execer, ownerID, documentID string) error {
	_, err := e.ExecContext(ctx,
		`UPDATE documents SET updated_at = CURRENT_TIMESTAMP WHERE owner_id = ? AND document_id = ?`,
		ownerID, documentID,
	)
	if err != nil {
		return fmt.Errorf("touch document: %w", err)
	}
	return nil
}
