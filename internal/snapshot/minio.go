package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioOptions configures a MinioStore.
type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	// Prefix is prepended to every object key (e.g. "dircache/").
	Prefix string
	Secure bool
	// CreateBucket creates Bucket when it does not exist yet.
	CreateBucket bool
}

// MinioStore stores records as objects in a MinIO or other S3-compatible bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinioStore creates a MinioStore on an existing client.
func NewMinioStore(client *minio.Client, bucket, prefix string) *MinioStore {
	return &MinioStore{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// NewMinioStoreFromOptions dials the endpoint in opts and returns a store on it.
func NewMinioStoreFromOptions(ctx context.Context, opts MinioOptions) (*MinioStore, error) {
	if opts.Endpoint == "" {
		return nil, errors.New("minio endpoint cannot be empty")
	}
	if opts.Bucket == "" {
		return nil, errors.New("minio bucket cannot be empty")
	}

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}

	if opts.CreateBucket {
		exists, existsErr := client.BucketExists(ctx, opts.Bucket)
		if existsErr != nil {
			return nil, fmt.Errorf("checking minio bucket %s: %w", opts.Bucket, existsErr)
		}
		if !exists {
			if makeErr := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); makeErr != nil {
				return nil, fmt.Errorf("creating minio bucket %s: %w", opts.Bucket, makeErr)
			}
		}
	}

	return NewMinioStore(client, opts.Bucket, opts.Prefix), nil
}

func (s *MinioStore) key(name string) string {
	return path.Join(s.prefix, name+recordFileExtension)
}

// Load reads the object for key. A missing object is not an error.
func (s *MinioStore) Load(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, s.key(key), minio.GetObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting snapshot object: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if isNoSuchKey(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading snapshot object: %w", err)
	}
	return data, nil
}

// Save uploads data as the object for key.
func (s *MinioStore) Save(ctx context.Context, key string, data []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}

	_, err := s.client.PutObject(ctx, s.bucket, s.key(key), bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("putting snapshot object: %w", err)
	}
	return nil
}

func isNoSuchKey(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}
