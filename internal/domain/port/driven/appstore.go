// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"context"
	"errors"
	"fmt"

	"github.com/ericfisherdev/appregistry/internal/domain/model"
)

// ErrAppNotFound indicates the referenced app id does not exist.
var ErrAppNotFound = errors.New("app not found")

// StorageError reports that the backing store could not be read, decoded,
// or written. It is fatal at initialization.
type StorageError struct {
	Op   string // "read", "decode", "write", ...
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("app store %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsStorageError reports whether err wraps a *StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// AppStore defines the driven port for application credential persistence.
//
// Implementations serialize all mutations: under concurrent calls the stored
// collection must equal applying each successful operation exactly once.
// Create and Update return *model.ValidationError before touching state when
// required fields are missing. Update, Get, and Delete return ErrAppNotFound
// (wrapped) when the id is absent, leaving the collection unchanged.
type AppStore interface {
	// List returns every app in insertion order. Never nil.
	List(ctx context.Context) ([]model.App, error)

	// Get returns the app with the given id.
	Get(ctx context.Context, id string) (model.App, error)

	// Create assigns a fresh id, appends the app, and persists. Any id on
	// the input is ignored.
	Create(ctx context.Context, app model.App) (model.App, error)

	// Update replaces every field except ID of the app with app.ID.
	Update(ctx context.Context, app model.App) (model.App, error)

	// Delete removes the app with the given id.
	Delete(ctx context.Context, id string) error
}
