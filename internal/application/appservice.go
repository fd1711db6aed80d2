package application

import (
	"context"
	"log/slog"

	"github.com/ericfisherdev/appregistry/internal/domain/model"
	"github.com/ericfisherdev/appregistry/internal/domain/port/driven"
)

// SaveAppRequest carries the fields of a create-or-update call. An empty ID
// requests a new app; a non-empty ID must name an existing one.
type SaveAppRequest struct {
	ID   string
	Type string
	Name string
	Key  string
}

// AppService is the entry point used by driving adapters. It normalizes
// input, dispatches saves to Create or Update, and logs mutations.
type AppService struct {
	store  driven.AppStore
	logger *slog.Logger
}

// NewAppService creates an AppService over the given store.
func NewAppService(store driven.AppStore, logger *slog.Logger) *AppService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AppService{store: store, logger: logger}
}

// List returns every stored app in insertion order.
func (s *AppService) List(ctx context.Context) ([]model.App, error) {
	return s.store.List(ctx)
}

// Get returns a single app by id.
func (s *AppService) Get(ctx context.Context, id string) (model.App, error) {
	return s.store.Get(ctx, id)
}

// Save creates a new app when req.ID is empty and updates the app with that
// id otherwise. The returned bool is true when an app was created.
func (s *AppService) Save(ctx context.Context, req SaveAppRequest) (model.App, bool, error) {
	app := model.App{
		ID:   req.ID,
		Type: model.AppType(req.Type),
		Name: req.Name,
		Key:  req.Key,
	}.Normalized()

	if app.ID == "" {
		created, err := s.store.Create(ctx, app)
		if err != nil {
			return model.App{}, false, err
		}
		s.logger.Info("app created", "app_id", created.ID, "type", created.Type)
		return created, true, nil
	}

	updated, err := s.Update(ctx, app)
	return updated, false, err
}

// Update replaces every field but ID of an existing app.
func (s *AppService) Update(ctx context.Context, app model.App) (model.App, error) {
	app = app.Normalized()
	if app.ID == "" {
		return model.App{}, &model.ValidationError{Field: "appId", Reason: "is required"}
	}

	updated, err := s.store.Update(ctx, app)
	if err != nil {
		return model.App{}, err
	}
	s.logger.Info("app updated", "app_id", updated.ID, "type", updated.Type)
	return updated, nil
}

// Delete removes the app with the given id.
func (s *AppService) Delete(ctx context.Context, id string) error {
	app := model.App{ID: id}.Normalized()
	if app.ID == "" {
		return &model.ValidationError{Field: "appId", Reason: "is required"}
	}

	if err := s.store.Delete(ctx, app.ID); err != nil {
		return err
	}
	s.logger.Info("app deleted", "app_id", app.ID)
	return nil
}
