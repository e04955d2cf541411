package settings_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/formbuilder/internal/db/dbtest"
	"github.com/mind-engage/formbuilder/internal/settings"
)

func TestPutGetLastWriteWins(t *testing.T) {
	ctx := context.Background()
	store := settings.NewStore(dbtest.Open(t), "")

	_, err := store.Get(ctx, "notion-store")
	assert.ErrorIs(t, err, settings.ErrNotFound)

	require.NoError(t, store.Put(ctx, "notion-store", json.RawMessage(`{"pages":[1]}`)))
	require.NoError(t, store.Put(ctx, "notion-store", json.RawMessage(`{"pages":[1,2]}`)))

	got, err := store.Get(ctx, "notion-store")
	require.NoError(t, err)
	assert.JSONEq(t, `{"pages":[1,2]}`, string(got))
}

func TestKeysAndValuesAreChecked(t *testing.T) {
	ctx := context.Background()
	store := settings.NewStore(dbtest.Open(t), "")

	assert.ErrorIs(t, store.Put(ctx, "Bad Key", json.RawMessage(`1`)), settings.ErrInvalidKey)
	assert.ErrorIs(t, store.Put(ctx, "ok", json.RawMessage(`{nope`)), settings.ErrNotJSON)
	_, err := store.Get(ctx, "")
	assert.ErrorIs(t, err, settings.ErrInvalidKey)
}

func TestWorkspacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	dbh := dbtest.Open(t)
	a := settings.NewStore(dbh, "a")
	b := settings.NewStore(dbh, "b")

	w, err := a.Workspace(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings.Workspace{}, w)

	require.NoError(t, a.SaveWorkspace(ctx, settings.Workspace{CompanyName: "Acme", WhatsAppNumber: "+1 555 0100"}))

	w, err = a.Workspace(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Acme", w.CompanyName)

	w, err = b.Workspace(ctx)
	require.NoError(t, err)
	assert.Empty(t, w.CompanyName)
}
