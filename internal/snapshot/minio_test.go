package snapshot

import (
	"context"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMinioStore_Integration requires a running MinIO instance.
// Skip if not available.
func TestMinioStore_Integration(t *testing.T) {
	endpoint := "localhost:9000"
	bucket := "test-dircache"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()
	if _, err = client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	store := NewMinioStore(client, bucket, "test-prefix/")

	data, err := store.Load(ctx, "never-written")
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, store.Save(ctx, "dircache-state", []byte(`{"stats":{"hits":1}}`)))
	data, err = store.Load(ctx, "dircache-state")
	require.NoError(t, err)
	assert.JSONEq(t, `{"stats":{"hits":1}}`, string(data))
}

func TestMinioStore_Key(t *testing.T) {
	store := NewMinioStore(nil, "bucket", "prefix/")
	assert.Equal(t, "prefix/dircache-state.json", store.key("dircache-state"))

	bare := NewMinioStore(nil, "bucket", "")
	assert.Equal(t, "k.json", bare.key("k"))
}
