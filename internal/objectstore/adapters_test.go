package objectstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMinIO struct {
	putKey      string
	putType     string
	putData     []byte
	removeErr   error
	bucketFound bool
}

func (f *fakeMinIO) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.putKey = objectName
	f.putType = opts.ContentType
	f.putData = data
	return minio.UploadInfo{Bucket: bucketName, Key: objectName, Size: int64(len(data))}, nil
}

func (f *fakeMinIO) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	return f.removeErr
}

func (f *fakeMinIO) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return f.bucketFound, nil
}

func TestMinIOStorePutReturnsPublicURL(t *testing.T) {
	client := &fakeMinIO{}
	store := newMinIOStore(client, "notes", "http://localhost:9000/notes")

	got, err := store.Put(context.Background(), Object{
		Key:         "uploads/id-notes.pdf",
		Body:        bytes.NewReader([]byte("%PDF")),
		Size:        4,
		ContentType: "application/pdf",
	})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/notes/uploads/id-notes.pdf", got)
	assert.Equal(t, "application/pdf", client.putType)
	assert.Equal(t, []byte("%PDF"), client.putData)
}

func TestMinIOStoreRemoveToleratesMissingKey(t *testing.T) {
	client := &fakeMinIO{removeErr: minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404}}
	store := newMinIOStore(client, "notes", "")

	assert.NoError(t, store.Remove(context.Background(), "uploads/gone"))

	client.removeErr = minio.ErrorResponse{Code: "AccessDenied", StatusCode: 403}
	err := store.Remove(context.Background(), "uploads/x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrObjectStore))
}

func TestMinIOStorePingReportsMissingBucket(t *testing.T) {
	store := newMinIOStore(&fakeMinIO{bucketFound: false}, "notes", "")
	assert.Error(t, store.Ping(context.Background()))

	store = newMinIOStore(&fakeMinIO{bucketFound: true}, "notes", "")
	assert.NoError(t, store.Ping(context.Background()))
}

type fakeS3 struct {
	put       *s3.PutObjectInput
	deleteErr error
	deleted   string
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.put = params
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	f.deleted = aws.ToString(params.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, nil
}

func TestS3StoreAppliesPrefix(t *testing.T) {
	client := &fakeS3{}
	store := newS3Store(client, "notes", "/resources/", "https://notes.s3.us-east-1.amazonaws.com")

	got, err := store.Put(context.Background(), Object{Key: "OS/id-unit1.pdf", Body: bytes.NewReader([]byte("x")), Size: 1, ContentType: "application/pdf"})
	require.NoError(t, err)

	assert.Equal(t, "https://notes.s3.us-east-1.amazonaws.com/resources/OS/id-unit1.pdf", got)
	assert.Equal(t, "resources/OS/id-unit1.pdf", aws.ToString(client.put.Key))
	assert.Equal(t, int64(1), aws.ToInt64(client.put.ContentLength))

	require.NoError(t, store.Remove(context.Background(), "OS/id-unit1.pdf"))
	assert.Equal(t, "resources/OS/id-unit1.pdf", client.deleted)
}

func TestS3StoreRemoveToleratesNoSuchKey(t *testing.T) {
	store := newS3Store(&fakeS3{deleteErr: &s3types.NoSuchKey{}}, "notes", "", "")
	assert.NoError(t, store.Remove(context.Background(), "missing"))
}
