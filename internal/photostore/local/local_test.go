package local

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/fieldtech/internal/domain"
)

func TestStoreSaveAndGet(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	data := []byte("fake png data")

	key, err := store.Save(ctx, "photos", "image/png", bytes.NewReader(data))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "photos/"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	reader, mimeType, err := store.Get(ctx, key)
	require.NoError(t, err)
	defer reader.Close()

	assert.Equal(t, "image/png", mimeType)
	got, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestStoreKeepsPDF(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	key, err := store.Save(ctx, "manuals", "application/pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)

	reader, mimeType, err := store.Get(ctx, key)
	require.NoError(t, err)
	defer reader.Close()
	assert.Equal(t, "application/pdf", mimeType)
}

func TestStoreDelete(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	key, err := store.Save(ctx, "photos", "image/jpeg", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, key))

	_, _, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, key), domain.ErrNotFound)
}

func TestStoreRejectsTraversal(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"../../../etc/passwd", "photos/../../secret"} {
		_, _, err := store.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, key)
		assert.ErrorIs(t, store.Delete(ctx, key), domain.ErrInvalidInput, key)
	}

	_, err = store.Save(ctx, "../outside", "image/jpeg", strings.NewReader("x"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
