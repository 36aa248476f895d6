package filestore

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/docvault/internal/config"
)

func TestNewWithoutTypeDisablesStore(t *testing.T) {
	store, err := New(config.FileStoreConfig{})
	require.NoError(t, err)
	require.Nil(t, store)
}

func TestNewUnknownType(t *testing.T) {
	_, err := New(config.FileStoreConfig{Type: "ftp", Data: map[string]interface{}{}})
	require.Error(t, err)
}

func TestLocalStoreURL(t *testing.T) {
	store, err := New(config.FileStoreConfig{
		Type: "local",
		Data: map[string]interface{}{"public_url": "https://files.example.com/vault/"},
	})
	require.NoError(t, err)
	require.Equal(t, "local", store.Type())

	u, err := store.URL(context.Background(), "1700000000-report q1.pdf")
	require.NoError(t, err)
	require.Equal(t, "https://files.example.com/vault/1700000000-report%20q1.pdf", u)

	_, err = store.URL(context.Background(), "")
	require.Error(t, err)
}

func TestLocalStoreRequiresPublicURL(t *testing.T) {
	_, err := New(config.FileStoreConfig{Type: "local", Data: map[string]interface{}{}})
	require.Error(t, err)
	_, err = New(config.FileStoreConfig{Type: "local"})
	require.Error(t, err)
}

func TestS3StorePresignsGet(t *testing.T) {
	store, err := New(config.FileStoreConfig{
		Type:          "s3",
		URLTTLMinutes: 15,
		Data: map[string]interface{}{
			"endpoint":   "http://localhost:9000",
			"secret_id":  "id",
			"secret_key": "key",
			"bucket":     "vault",
			"prefix":     "/docs/",
			"path_style": true,
		},
	})
	require.NoError(t, err)
	require.Equal(t, "s3", store.Type())

	u, err := store.URL(context.Background(), "a.pdf")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(u, "http://localhost:9000/vault/docs/a.pdf?"), u)
	require.Contains(t, u, "X-Amz-Signature=")
	require.Contains(t, u, "X-Amz-Expires=900")
}

func TestS3StoreValidatesConfig(t *testing.T) {
	_, err := New(config.FileStoreConfig{Type: "s3", Data: map[string]interface{}{"bucket": "b"}})
	require.Error(t, err)
}

func TestMinioStorePresignsGet(t *testing.T) {
	store, err := New(config.FileStoreConfig{
		Type:          "minio",
		URLTTLMinutes: 5,
		Data: map[string]interface{}{
			"endpoint":   "localhost:9000",
			"access_key": "minio",
			"secret_key": "minio123",
			"bucket":     "vault",
		},
	})
	require.NoError(t, err)
	require.Equal(t, "minio", store.Type())

	u, err := store.URL(context.Background(), "b.pdf")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(u, "http://localhost:9000/vault/b.pdf?"), u)
	require.Contains(t, u, "X-Amz-Expires=300")
}

func TestMinioStoreValidatesConfig(t *testing.T) {
	_, err := New(config.FileStoreConfig{Type: "minio", Data: map[string]interface{}{"endpoint": "localhost:9000"}})
	require.Error(t, err)
}
