package objectstore

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Store implements Store on Amazon S3.
type S3Store struct {
	client    s3API
	bucket    string
	prefix    string
	publicURL string
}

// NewS3Store builds an S3-backed store. Keys are placed under prefix.
func NewS3Store(client *s3.Client, bucket, prefix, publicURL string) *S3Store {
	return newS3Store(client, bucket, prefix, publicURL)
}

func newS3Store(client s3API, bucket, prefix, publicURL string) *S3Store {
	return &S3Store{
		client:    client,
		bucket:    bucket,
		prefix:    strings.Trim(strings.TrimSpace(prefix), "/"),
		publicURL: publicURL,
	}
}

func (s *S3Store) Put(ctx context.Context, obj Object) (string, error) {
	objectKey := applyPrefix(s.prefix, obj.Key)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(s.bucket),
		Key:                  aws.String(objectKey),
		Body:                 obj.Body,
		ContentLength:        aws.Int64(obj.Size),
		ContentType:          aws.String(obj.ContentType),
		ServerSideEncryption: s3types.ServerSideEncryptionAes256,
	})
	if err != nil {
		return "", wrap("put "+objectKey, err)
	}
	return PublicURL(s.publicURL, objectKey), nil
}

func (s *S3Store) Remove(ctx context.Context, key string) error {
	objectKey := applyPrefix(s.prefix, key)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err == nil {
		return nil
	}
	var missing *s3types.NoSuchKey
	if errors.As(err, &missing) {
		return nil
	}
	return wrap("remove "+objectKey, err)
}

func (s *S3Store) Ping(ctx context.Context) error {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return wrap("head bucket", err)
	}
	return nil
}

func applyPrefix(prefix, key string) string {
	cleanPrefix := strings.Trim(prefix, "/")
	cleanKey := strings.TrimLeft(key, "/")
	if cleanPrefix == "" {
		return cleanKey
	}
	if cleanKey == "" {
		return cleanPrefix
	}
	return cleanPrefix + "/" + cleanKey
}
