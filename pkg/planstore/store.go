// Package planstore persists the user's plan document as one opaque JSON
// value under a fixed key. There is no merging and no version check: every
// save overwrites the whole document, and concurrent writers clobber each
// other (last write wins).
package planstore

import (
	"context"
	"fmt"

	"github.com/cheatday/planner/pkg/models"
)

// Store loads and saves the single plan document.
//
// Load returns (nil, nil) when nothing has been saved yet; absence is not
// an error. Both operations return a *StorageError only when the backend
// itself fails. Authentication is the caller's concern and happens before
// the store is touched.
type Store interface {
	Load(ctx context.Context) (*models.PlanSet, error)
	Save(ctx context.Context, set models.PlanSet) error
}

// StorageError wraps a backend failure. The backend detail is surfaced to
// the client to aid debugging; it carries no security-sensitive content.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("planstore %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
