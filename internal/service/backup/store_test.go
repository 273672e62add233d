package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "run-1", "members.json", []byte(`{"members":[]}`)))
	require.NoError(t, store.Put(ctx, "run-1", "profiles/usada-pekora.json", []byte(`{}`)))
	require.NoError(t, store.Put(ctx, "run-2", "members.json", []byte(`{}`)))

	data, err := store.Get(ctx, "run-1", "members.json")
	require.NoError(t, err)
	assert.Equal(t, `{"members":[]}`, string(data))

	names, err := store.List(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"members.json", "profiles/usada-pekora.json"}, names)

	_, err = os.Stat(filepath.Join(dir, "run-1", "profiles", "usada-pekora.json"))
	assert.NoError(t, err)

	_, err = store.Get(ctx, "run-1", "missing.json")
	assert.ErrorIs(t, err, ErrNotFound)

	names, err = store.List(ctx, "run-unknown")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestFileStoreRejectsBadKeys(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	assert.Error(t, store.Put(ctx, "", "members.json", nil))
	assert.Error(t, store.Put(ctx, "run-1", "", nil))
	assert.Error(t, store.Put(ctx, "../escape", "members.json", nil))
	assert.Error(t, store.Put(ctx, "run-1", "../../members.json", nil))
}

func TestNewS3StoreValidatesConfig(t *testing.T) {
	_, err := NewS3Store(S3Config{})
	assert.Error(t, err)

	_, err = NewS3Store(S3Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"})
	assert.Error(t, err)

	store, err := NewS3Store(S3Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b", Bucket: "backups", Prefix: "/member-sync/"})
	require.NoError(t, err)
	assert.Equal(t, "member-sync/run-1/members.json", store.objectKey("run-1", "members.json"))
}
