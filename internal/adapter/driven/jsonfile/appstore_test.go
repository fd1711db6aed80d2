package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/appregistry/internal/domain/model"
	"github.com/ericfisherdev/appregistry/internal/domain/port/driven"
)

func newTestStore(t *testing.T) *AppStore {
	t.Helper()
	store, err := NewAppStore(filepath.Join(t.TempDir(), "config", "apps.json"))
	require.NoError(t, err)
	return store
}

func TestNewAppStore_CreatesEmptyCollection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "apps.json")

	store, err := NewAppStore(path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))

	apps, err := store.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, apps)
	assert.Empty(t, apps)
}

func TestNewAppStore_LoadsSeededFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apps.json")
	seed := `[
  {"appId": "1700000000000", "type": "dify", "appName": "Seeded", "appKey": "app-xyz"},
  {"appId": "1700000000001", "type": "custom-kind", "appName": "Other", "appKey": ""}
]`
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o600))

	store, err := NewAppStore(path)
	require.NoError(t, err)

	apps, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, model.App{ID: "1700000000000", Type: model.AppTypeDify, Name: "Seeded", Key: "app-xyz"}, apps[0])
	assert.Equal(t, model.AppType("custom-kind"), apps[1].Type)
}

func TestNewAppStore_CorruptFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "{not json"},
		{"object instead of array", `{"appId": "1"}`},
		{"missing id", `[{"type": "dify", "appName": "x"}]`},
		{"duplicate id", `[{"appId": "1", "type": "dify", "appName": "a"}, {"appId": "1", "type": "dify", "appName": "b"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "apps.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			store, err := NewAppStore(path)

			assert.Nil(t, store)
			require.Error(t, err)
			assert.True(t, driven.IsStorageError(err))
		})
	}
}

func TestAppStore_Lifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, model.App{Type: model.AppTypeDify, Name: "Bot1", Key: "k1"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Bot1", created.Name)

	apps, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, created, apps[0])

	updated, err := store.Update(ctx, model.App{ID: created.ID, Type: model.AppTypeDify, Name: "Bot1-renamed", Key: "k1"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Bot1-renamed", updated.Name)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	require.NoError(t, store.Delete(ctx, created.ID))

	apps, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, apps)

	err = store.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, driven.ErrAppNotFound)
}

func TestAppStore_CreateIgnoresSuppliedID(t *testing.T) {
	store := newTestStore(t)

	created, err := store.Create(context.Background(), model.App{ID: "chosen", Type: model.AppTypeDify, Name: "A"})
	require.NoError(t, err)
	assert.NotEqual(t, "chosen", created.ID)
}

func TestAppStore_CreateValidation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, model.App{Name: "no type"})
	assert.True(t, model.IsValidationError(err))

	_, err = store.Create(ctx, model.App{Type: model.AppTypeDify})
	assert.True(t, model.IsValidationError(err))

	apps, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, apps)
}

func TestAppStore_CreateAllowsEmptyKey(t *testing.T) {
	store := newTestStore(t)

	created, err := store.Create(context.Background(), model.App{Type: model.AppTypeDify, Name: "keyless"})
	require.NoError(t, err)
	assert.Empty(t, created.Key)
}

func TestAppStore_UniqueIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := range 50 {
		app, err := store.Create(ctx, model.App{Type: model.AppTypeDify, Name: fmt.Sprintf("bot-%d", i)})
		require.NoError(t, err)
		require.False(t, seen[app.ID], "duplicate id %s", app.ID)
		seen[app.ID] = true
	}
}

func TestAppStore_UpdateIsolation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a, err := store.Create(ctx, model.App{Type: model.AppTypeDify, Name: "A", Key: "ka"})
	require.NoError(t, err)
	b, err := store.Create(ctx, model.App{Type: model.AppTypeDify, Name: "B", Key: "kb"})
	require.NoError(t, err)

	_, err = store.Update(ctx, model.App{ID: a.ID, Type: "other", Name: "A2", Key: "ka2"})
	require.NoError(t, err)

	apps, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, model.App{ID: a.ID, Type: "other", Name: "A2", Key: "ka2"}, apps[0])
	assert.Equal(t, b, apps[1])
}

func TestAppStore_NotFoundLeavesCollectionUnchanged(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, model.App{Type: model.AppTypeDify, Name: "A"})
	require.NoError(t, err)

	before, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	_, err = store.Update(ctx, model.App{ID: "missing", Type: model.AppTypeDify, Name: "X"})
	assert.ErrorIs(t, err, driven.ErrAppNotFound)

	err = store.Delete(ctx, "missing")
	assert.ErrorIs(t, err, driven.ErrAppNotFound)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, driven.ErrAppNotFound)

	after, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAppStore_DeleteRequiresID(t *testing.T) {
	store := newTestStore(t)

	err := store.Delete(context.Background(), "")
	assert.True(t, model.IsValidationError(err))
}

func TestAppStore_DeleteRemovesExactlyOne(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"A", "B", "C"} {
		app, err := store.Create(ctx, model.App{Type: model.AppTypeDify, Name: name})
		require.NoError(t, err)
		ids = append(ids, app.ID)
	}

	require.NoError(t, store.Delete(ctx, ids[1]))

	apps, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, ids[0], apps[0].ID)
	assert.Equal(t, ids[2], apps[1].ID)
}

func TestAppStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apps.json")
	ctx := context.Background()

	first, err := NewAppStore(path)
	require.NoError(t, err)
	created, err := first.Create(ctx, model.App{Type: model.AppTypeDify, Name: "Persisted", Key: "secret"})
	require.NoError(t, err)

	second, err := NewAppStore(path)
	require.NoError(t, err)
	apps, err := second.List(ctx)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, created, apps[0])

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"appId"`)
	assert.Contains(t, string(data), `"appName": "Persisted"`)
}

func TestAppStore_InterruptedWriteKeepsOldCollection(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	original, err := store.Create(ctx, model.App{Type: model.AppTypeDify, Name: "Original"})
	require.NoError(t, err)
	before, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	// Simulate a crash after part of the new content reached a temp file
	// but before the rename.
	store.writeFile = func(path string, r io.Reader) error {
		tmp, err := os.CreateTemp(filepath.Dir(path), "apps-*.tmp")
		if err != nil {
			return err
		}
		defer tmp.Close()
		if _, err := io.CopyN(tmp, r, 10); err != nil {
			return err
		}
		return errors.New("simulated crash")
	}

	_, err = store.Create(ctx, model.App{Type: model.AppTypeDify, Name: "Lost"})
	require.Error(t, err)
	assert.True(t, driven.IsStorageError(err))

	after, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)

	apps, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.App{original}, apps)
}

func TestAppStore_ConcurrentMutations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Seed records that will be deleted and updated concurrently.
	const seeded = 20
	var seededIDs []string
	for i := range seeded {
		app, err := store.Create(ctx, model.App{Type: model.AppTypeDify, Name: fmt.Sprintf("seed-%d", i)})
		require.NoError(t, err)
		seededIDs = append(seededIDs, app.ID)
	}

	const creators = 30
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created []string
	)

	for i := range creators {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app, err := store.Create(ctx, model.App{Type: model.AppTypeDify, Name: fmt.Sprintf("new-%d", i)})
			if assert.NoError(t, err) {
				mu.Lock()
				created = append(created, app.ID)
				mu.Unlock()
			}
		}()
	}
	// Even-indexed seeds are deleted, odd-indexed seeds renamed.
	for i, id := range seededIDs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				assert.NoError(t, store.Delete(ctx, id))
				return
			}
			_, err := store.Update(ctx, model.App{ID: id, Type: model.AppTypeDify, Name: "renamed"})
			assert.NoError(t, err)
		}()
	}
	// Readers must always see a complete collection.
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.List(ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	apps, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, apps, creators+seeded/2)

	byID := make(map[string]model.App, len(apps))
	for _, app := range apps {
		_, dup := byID[app.ID]
		require.False(t, dup, "duplicate id %s", app.ID)
		byID[app.ID] = app
	}
	for _, id := range created {
		assert.Contains(t, byID, id)
	}
	for i, id := range seededIDs {
		if i%2 == 0 {
			assert.NotContains(t, byID, id)
		} else {
			assert.Equal(t, "renamed", byID[id].Name)
		}
	}
}

func TestAppStore_CanceledContext(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Create(ctx, model.App{Type: model.AppTypeDify, Name: "A"})
	assert.ErrorIs(t, err, context.Canceled)

	apps, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, apps)
}
