package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/natefinch/atomic"

	"github.com/ericfisherdev/appregistry/internal/domain/model"
	"github.com/ericfisherdev/appregistry/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.AppStore = (*AppStore)(nil)

// appRecord is the on-disk shape of one app.
type appRecord struct {
	AppID   string `json:"appId"`
	Type    string `json:"type"`
	AppName string `json:"appName"`
	AppKey  string `json:"appKey"`
}

// AppStore persists apps to a single JSON array file.
type AppStore struct {
	// mu is held for writing across each read-modify-write-persist cycle
	// and for reading by List and Get.
	mu   sync.RWMutex
	path string

	// writeFile replaces path with the contents of r. Tests swap it to
	// simulate interrupted writes.
	writeFile func(path string, r io.Reader) error
}

// NewAppStore opens the collection at path, creating the parent directory
// and an empty collection when the file does not exist. The file is decoded
// once up front; an unreadable or corrupt file returns a *driven.StorageError.
func NewAppStore(path string) (*AppStore, error) {
	s := &AppStore{path: path, writeFile: atomic.WriteFile}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, &driven.StorageError{Op: "init", Path: path, Err: err}
		}
		if err := s.save(nil); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, &driven.StorageError{Op: "stat", Path: path, Err: err}
	}

	if _, err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the location of the backing file.
func (s *AppStore) Path() string {
	return s.path
}

// List returns every stored app in insertion order.
func (s *AppStore) List(ctx context.Context) ([]model.App, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}
	apps := make([]model.App, 0, len(records))
	for _, rec := range records {
		apps = append(apps, toModel(rec))
	}
	return apps, nil
}

// Get returns the app with the given id.
func (s *AppStore) Get(ctx context.Context, id string) (model.App, error) {
	if err := ctx.Err(); err != nil {
		return model.App{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.load()
	if err != nil {
		return model.App{}, err
	}
	idx := indexOf(records, id)
	if idx < 0 {
		return model.App{}, fmt.Errorf("get app %q: %w", id, driven.ErrAppNotFound)
	}
	return toModel(records[idx]), nil
}

// Create validates app, assigns it a new id, and appends it to the collection.
func (s *AppStore) Create(ctx context.Context, app model.App) (model.App, error) {
	if err := app.Validate(); err != nil {
		return model.App{}, err
	}
	if err := ctx.Err(); err != nil {
		return model.App{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return model.App{}, err
	}

	id, err := model.NewAppID(func(candidate string) bool {
		return indexOf(records, candidate) >= 0
	})
	if err != nil {
		return model.App{}, fmt.Errorf("create app: %w", err)
	}
	app.ID = id

	if err := s.save(append(records, toRecord(app))); err != nil {
		return model.App{}, err
	}
	return app, nil
}

// Update replaces every field except ID of the app identified by app.ID.
func (s *AppStore) Update(ctx context.Context, app model.App) (model.App, error) {
	if app.ID == "" {
		return model.App{}, &model.ValidationError{Field: "appId", Reason: "is required"}
	}
	if err := app.Validate(); err != nil {
		return model.App{}, err
	}
	if err := ctx.Err(); err != nil {
		return model.App{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return model.App{}, err
	}
	idx := indexOf(records, app.ID)
	if idx < 0 {
		return model.App{}, fmt.Errorf("update app %q: %w", app.ID, driven.ErrAppNotFound)
	}
	records[idx] = toRecord(app)

	if err := s.save(records); err != nil {
		return model.App{}, err
	}
	return app, nil
}

// Delete removes the app with the given id. Matching is by id, never by
// position.
func (s *AppStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return &model.ValidationError{Field: "appId", Reason: "is required"}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}
	remaining := slices.DeleteFunc(records, func(rec appRecord) bool {
		return rec.AppID == id
	})
	if len(remaining) == len(records) {
		return fmt.Errorf("delete app %q: %w", id, driven.ErrAppNotFound)
	}
	return s.save(remaining)
}
