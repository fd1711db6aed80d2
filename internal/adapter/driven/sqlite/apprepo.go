package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ericfisherdev/appregistry/internal/domain/model"
	"github.com/ericfisherdev/appregistry/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.AppStore = (*AppRepo)(nil)

// AppRepo is the SQLite implementation of the AppStore port interface.
// Insertion order is kept by the autoincrement seq column.
type AppRepo struct {
	db *DB
}

// NewAppRepo creates a new AppRepo backed by the given DB.
func NewAppRepo(db *DB) *AppRepo {
	return &AppRepo{db: db}
}

// List returns all apps ordered by insertion.
func (r *AppRepo) List(ctx context.Context) ([]model.App, error) {
	const query = `SELECT app_id, type, app_name, app_key FROM apps ORDER BY seq`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, r.storageErr("read", err)
	}
	defer rows.Close()

	apps := []model.App{}
	for rows.Next() {
		app, err := scanApp(rows)
		if err != nil {
			return nil, r.storageErr("decode", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, r.storageErr("read", err)
	}

	return apps, nil
}

// Get returns the app with the given id.
func (r *AppRepo) Get(ctx context.Context, id string) (model.App, error) {
	const query = `SELECT app_id, type, app_name, app_key FROM apps WHERE app_id = ?`

	app, err := scanApp(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.App{}, fmt.Errorf("get app %q: %w", id, driven.ErrAppNotFound)
	}
	if err != nil {
		return model.App{}, r.storageErr("read", err)
	}
	return app, nil
}

// Create validates app, assigns a fresh id, and inserts it. The id lookup and
// the insert share one transaction on the single writer connection.
func (r *AppRepo) Create(ctx context.Context, app model.App) (model.App, error) {
	if err := app.Validate(); err != nil {
		return model.App{}, err
	}

	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return model.App{}, r.storageErr("begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	var lookupErr error
	id, err := model.NewAppID(func(candidate string) bool {
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM apps WHERE app_id = ?`, candidate).Scan(&n); err != nil {
			lookupErr = err
			return false
		}
		return n > 0
	})
	if lookupErr != nil {
		return model.App{}, r.storageErr("read", lookupErr)
	}
	if err != nil {
		return model.App{}, fmt.Errorf("create app: %w", err)
	}
	app.ID = id

	const insert = `INSERT INTO apps (app_id, type, app_name, app_key) VALUES (?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, insert, app.ID, string(app.Type), app.Name, app.Key); err != nil {
		return model.App{}, r.storageErr("write", err)
	}
	if err := tx.Commit(); err != nil {
		return model.App{}, r.storageErr("commit", err)
	}

	return app, nil
}

// Update replaces type, name and key of the app identified by app.ID.
func (r *AppRepo) Update(ctx context.Context, app model.App) (model.App, error) {
	if app.ID == "" {
		return model.App{}, &model.ValidationError{Field: "appId", Reason: "is required"}
	}
	if err := app.Validate(); err != nil {
		return model.App{}, err
	}

	const query = `UPDATE apps SET type = ?, app_name = ?, app_key = ? WHERE app_id = ?`
	result, err := r.db.Writer.ExecContext(ctx, query, string(app.Type), app.Name, app.Key, app.ID)
	if err != nil {
		return model.App{}, r.storageErr("write", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return model.App{}, r.storageErr("write", err)
	}
	if rows == 0 {
		return model.App{}, fmt.Errorf("update app %q: %w", app.ID, driven.ErrAppNotFound)
	}

	return app, nil
}

// Delete removes the app with the given id.
func (r *AppRepo) Delete(ctx context.Context, id string) error {
	if id == "" {
		return &model.ValidationError{Field: "appId", Reason: "is required"}
	}

	const query = `DELETE FROM apps WHERE app_id = ?`
	result, err := r.db.Writer.ExecContext(ctx, query, id)
	if err != nil {
		return r.storageErr("write", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return r.storageErr("write", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete app %q: %w", id, driven.ErrAppNotFound)
	}

	return nil
}

func (r *AppRepo) storageErr(op string, err error) error {
	return &driven.StorageError{Op: op, Path: r.db.path, Err: err}
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanApp(row rowScanner) (model.App, error) {
	var app model.App
	var appType string
	if err := row.Scan(&app.ID, &appType, &app.Name, &app.Key); err != nil {
		return model.App{}, err
	}
	app.Type = model.AppType(appType)
	return app, nil
}
