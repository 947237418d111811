package blobstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtxml/declarations/internal/canonical"
)

func TestFileStoreSaveThenGetRoundTrips(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	rec := &canonical.CanonicalRecord{DeclarationID: "dec-0001", Manufacturer: "Acme Corp"}
	require.NoError(t, store.Save("dec-0001", rec))

	doc, err := store.Get("dec-0001")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", doc.Record.Manufacturer)
	assert.False(t, doc.SavedAt.IsZero())
}

func TestFileStoreGetMissingReturnsErrNotFound(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreDeleteThenGetNotFound(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("dec-0002", &canonical.CanonicalRecord{DeclarationID: "dec-0002"}))
	require.NoError(t, store.Delete("dec-0002"))

	_, err = store.Get("dec-0002")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreDeleteMissingIsNotAnError(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, store.Delete("missing"))
}
