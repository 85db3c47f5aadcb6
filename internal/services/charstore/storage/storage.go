// Package storage defines persistence contracts for the character document.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates no document has been saved yet.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a revision ID was reused.
	ErrAlreadyExists = errors.New("record already exists")
)

// Revision is one saved copy of the character document. Payload holds the
// document JSON exactly as accepted.
type Revision struct {
	ID        string
	Payload   []byte
	CreatedAt time.Time
}

// DocumentStore persists character document revisions. The latest revision
// is the current document.
type DocumentStore interface {
	PutRevision(ctx context.Context, revision Revision) error
	LatestRevision(ctx context.Context) (Revision, error)
	ListRevisions(ctx context.Context, limit int) ([]Revision, error)
}
