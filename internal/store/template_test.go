package store_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-utils/internal/store"
)

func vatTemplate(name string) store.Template {
	return store.Template{
		Name: name,
		Rules: []json.RawMessage{
			json.RawMessage(`{"type":"item_op","name":"vat","operation":"*","value":0.19}`),
		},
	}
}

func TestFileRepository_CreateGet(t *testing.T) {
	repo := store.NewFileRepository(t.TempDir())

	created, err := repo.Create(vatTemplate("basic"))
	require.NoError(t, err)
	assert.Equal(t, "basic", created.Name)

	got, found, err := repo.Get("basic")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "basic", got.Name)
	require.Len(t, got.Rules, 1)
	assert.JSONEq(t, `{"type":"item_op","name":"vat","operation":"*","value":0.19}`, string(got.Rules[0]))

	rules, err := got.RuleSet()
	require.NoError(t, err)
	require.Len(t, rules.ItemOps, 1)
	assert.Equal(t, "vat", rules.ItemOps[0].Name)

	_, err = os.Stat(filepath.Join(repo.Dir(), "basic.json"))
	assert.NoError(t, err)
}

func TestFileRepository_Missing(t *testing.T) {
	repo := store.NewFileRepository(t.TempDir())

	_, found, err := repo.Get("absent")
	require.NoError(t, err)
	assert.False(t, found)

	exists, err := repo.Exists("absent")
	require.NoError(t, err)
	assert.False(t, exists)

	deleted, err := repo.Delete("absent")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestFileRepository_List(t *testing.T) {
	repo := store.NewFileRepository(t.TempDir())
	for _, name := range []string{"ron", "basic", "eur"} {
		_, err := repo.Create(vatTemplate(name))
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(repo.Dir(), "notes.txt"), []byte("x"), 0o644))

	templates, err := repo.List()
	require.NoError(t, err)
	require.Len(t, templates, 3)
	assert.Equal(t, "basic", templates[0].Name)
	assert.Equal(t, "eur", templates[1].Name)
	assert.Equal(t, "ron", templates[2].Name)
}

func TestFileRepository_ListCorrupt(t *testing.T) {
	repo := store.NewFileRepository(t.TempDir())
	require.NoError(t, os.WriteFile(filepath.Join(repo.Dir(), "broken.json"), []byte("{"), 0o644))

	_, err := repo.List()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.json")
}

func TestFileRepository_Delete(t *testing.T) {
	repo := store.NewFileRepository(t.TempDir())
	_, err := repo.Create(vatTemplate("basic"))
	require.NoError(t, err)

	deleted, err := repo.Delete("basic")
	require.NoError(t, err)
	assert.True(t, deleted)

	exists, err := repo.Exists("basic")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFileRepository_UpdateRenames(t *testing.T) {
	repo := store.NewFileRepository(t.TempDir())
	_, err := repo.Create(vatTemplate("basic"))
	require.NoError(t, err)

	updated := vatTemplate("standard")
	updated.Rules = append(updated.Rules, json.RawMessage(`{"type":"bnr-fx-rate","symbol":"EUR"}`))
	_, err = repo.Update("basic", updated)
	require.NoError(t, err)

	exists, err := repo.Exists("basic")
	require.NoError(t, err)
	assert.False(t, exists)

	got, found, err := repo.Get("standard")
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, got.Rules, 2)
}

func TestFileRepository_InvalidNames(t *testing.T) {
	repo := store.NewFileRepository(t.TempDir())

	for _, name := range []string{"", "../escape", "a/b", ".hidden"} {
		t.Run(name, func(t *testing.T) {
			_, err := repo.Create(vatTemplate(name))
			require.Error(t, err)
			assert.ErrorIs(t, err, store.ErrInvalidName)

			_, found, err := repo.Get(name)
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}
