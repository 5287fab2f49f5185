package storage

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/ruteri/cfn-rsakey-provider/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// storeContract exercises the behavior every SecretStore must share.
func storeContract(t *testing.T, store interfaces.SecretStore) {
	ctx := context.Background()

	_, err := store.Get(ctx, "svc/key1")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	require.NoError(t, store.Put(ctx, "svc/key1", []byte("first"), interfaces.PutOptions{KeyAlias: interfaces.DefaultKeyAlias}))

	value, err := store.Get(ctx, "svc/key1")
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), value)

	err = store.Put(ctx, "svc/key1", []byte("second"), interfaces.PutOptions{})
	assert.ErrorIs(t, err, interfaces.ErrAlreadyExists)

	value, err = store.Get(ctx, "svc/key1")
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), value, "rejected write must not change the stored value")

	require.NoError(t, store.Put(ctx, "svc/key1", []byte("second"), interfaces.PutOptions{Overwrite: true}))
	value, err = store.Get(ctx, "svc/key1")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), value)

	require.NoError(t, store.Put(ctx, "svc/key2", []byte("other"), interfaces.PutOptions{}))

	require.NoError(t, store.Delete(ctx, "svc/key1"))
	_, err = store.Get(ctx, "svc/key1")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	value, err = store.Get(ctx, "svc/key2")
	require.NoError(t, err)
	assert.Equal(t, []byte("other"), value)

	assert.NoError(t, store.Delete(ctx, "svc/key1"), "deleting a missing name succeeds")
	assert.True(t, store.Available(ctx))
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore(testLogger()))
}

func TestMemoryStoreKeepsWriteOptions(t *testing.T) {
	store := NewMemoryStore(testLogger())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "k", []byte("v"), interfaces.PutOptions{KeyAlias: "alias/custom", Description: "d"}))

	entry, ok := store.Entry("k")
	require.True(t, ok)
	assert.Equal(t, "alias/custom", entry.KeyAlias)
	assert.Equal(t, "d", entry.Description)

	value, err := store.Get(ctx, "k")
	require.NoError(t, err)
	value[0] = 'x'
	again, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), again)
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), testLogger())
	require.NoError(t, err)
	storeContract(t, store)
}

func TestFileStorePermissions(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, testLogger())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "svc/key1", []byte("secret"), interfaces.PutOptions{}))
	require.NoError(t, store.Put(ctx, "svc/key1", []byte("secret2"), interfaces.PutOptions{Overwrite: true}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "names with slashes are stored flat and temp files are cleaned up")

	info, err := os.Stat(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileStoreRejectsDotNames(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), testLogger())
	require.NoError(t, err)

	for _, name := range []string{".", ".."} {
		err := store.Put(context.Background(), name, []byte("x"), interfaces.PutOptions{})
		assert.ErrorIs(t, err, interfaces.ErrValidation, name)
	}
}

func TestSecretStoreFactory(t *testing.T) {
	factory := NewSecretStoreFactory(testLogger(), 0)
	dir := t.TempDir()

	tests := []struct {
		name     string
		uri      string
		wantName string
		wantErr  bool
	}{
		{name: "memory", uri: "memory://", wantName: "memory"},
		{name: "file", uri: "file://" + dir, wantName: "file-" + filepath.Base(dir)},
		{name: "vault", uri: "vault://token@127.0.0.1:8200/secret/rsakeys?tls=false", wantName: "vault-secret-rsakeys"},
		{name: "ssm", uri: "ssm://eu-west-1?endpoint=http://127.0.0.1:4566", wantName: "ssm-eu-west-1"},
		{name: "vault without host", uri: "vault:///secret", wantErr: true},
		{name: "file without path", uri: "file://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			location, err := interfaces.NewSecretStoreLocation(tt.uri)
			require.NoError(t, err)

			store, err := factory.SecretStoreFor(location)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, store.Name())
		})
	}
}

func TestSecretStoreLocationRejectsUnknownScheme(t *testing.T) {
	_, err := interfaces.NewSecretStoreLocation("s3://bucket/prefix")
	assert.ErrorIs(t, err, interfaces.ErrInvalidLocationURI)
}
