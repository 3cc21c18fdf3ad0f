package objectstore

import (
	"context"
	"errors"
	"io"

	"github.com/minio/minio-go/v7"
)

type minioAPI interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	BucketExists(ctx context.Context, bucketName string) (bool, error)
}

// MinIOStore adapts minio.Client to Store.
type MinIOStore struct {
	client    minioAPI
	bucket    string
	publicURL string
}

// NewMinIOStore constructs an adapter. publicURL is the base under which the
// bucket's objects are served.
func NewMinIOStore(client *minio.Client, bucket, publicURL string) *MinIOStore {
	return newMinIOStore(client, bucket, publicURL)
}

func newMinIOStore(client minioAPI, bucket, publicURL string) *MinIOStore {
	return &MinIOStore{client: client, bucket: bucket, publicURL: publicURL}
}

func (s *MinIOStore) Put(ctx context.Context, obj Object) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, obj.Key, obj.Body, obj.Size, minio.PutObjectOptions{
		ContentType: obj.ContentType,
	})
	if err != nil {
		return "", wrap("put "+obj.Key, err)
	}
	return PublicURL(s.publicURL, obj.Key), nil
}

func (s *MinIOStore) Remove(ctx context.Context, key string) error {
	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err == nil {
		return nil
	}
	var resp minio.ErrorResponse
	if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
		return nil
	}
	return wrap("remove "+key, err)
}

func (s *MinIOStore) Ping(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return wrap("bucket exists", err)
	}
	if !ok {
		return wrap("bucket exists", errors.New("bucket "+s.bucket+" is missing"))
	}
	return nil
}
