package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	id := uuid.New()
	path, err := store.Upload(ctx, id, "petição inicial.md", strings.NewReader("## DOS FATOS\n"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, id.String()[:2]+"/"+id.String()))
	assert.True(t, strings.HasSuffix(path, "_petição_inicial.md"))

	rc, err := store.Download(ctx, path)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "## DOS FATOS\n", string(body))

	require.NoError(t, store.Delete(ctx, path))
	_, err = store.Download(ctx, path)
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting twice is fine
	assert.NoError(t, store.Delete(ctx, path))
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Download(context.Background(), "../../etc/passwd")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestGenerateStoragePathSanitizes(t *testing.T) {
	id := uuid.MustParse("6f1c2a9e-0000-4000-8000-000000000001")
	assert.Equal(t, "6f/6f1c2a9e-0000-4000-8000-000000000001_a_b.pdf", generateStoragePath(id, "dir/a b.pdf"))
}

func TestNewRejectsUnknownType(t *testing.T) {
	_, err := New(context.Background(), Config{Type: "ftp"})
	assert.Error(t, err)

	_, err = New(context.Background(), Config{Type: StorageTypeS3})
	assert.Error(t, err)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/markdown; charset=utf-8", contentType("v1.md"))
	assert.Equal(t, "application/pdf", contentType("X.PDF"))
	assert.Equal(t, "application/octet-stream", contentType("blob"))
}
