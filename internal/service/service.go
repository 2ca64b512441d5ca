// Package service defines the backend-agnostic contract for the remote task document.
package service

import (
	"context"
	"errors"
)

// ErrNotFound is returned by GetDocument when the owner has no document, and by
// the write operations when the target document does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned by CreateDocument when the document exists.
var ErrAlreadyExists = errors.New("document already exists")

// Gateway is a per-owner key-value document store.
// Commands and the task store never import a backend SDK directly.
type Gateway interface {
	// GetDocument returns the owner's document.
	// Returns ErrNotFound if no document exists.
	GetDocument(ctx context.Context, ownerID string) (Document, error)

	// SetFields writes the given fields. Fields not mentioned are untouched.
	SetFields(ctx context.Context, ownerID, documentID string, fields map[string]string) error

	// DeleteField removes a single field. Deleting an absent field succeeds.
	DeleteField(ctx context.Context, ownerID, documentID, field string) error

	// CreateDocument creates a document holding fields.
	// Returns ErrAlreadyExists if the document exists.
	CreateDocument(ctx context.Context, ownerID, documentID string, fields map[string]string) error
}
