package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/require"

	"github.com/watchengine/watch-engine-backend/pkg/config"
	pkgerrors "github.com/watchengine/watch-engine-backend/pkg/errors"
)

type fakeObjects struct {
	buckets  map[string]bool
	objects  map[string]string
	types    map[string]string
	putErr   error
	makeErrs int
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{buckets: map[string]bool{}, objects: map[string]string{}, types: map[string]string{}}
}

func (f *fakeObjects) BucketExists(_ context.Context, bucket string) (bool, error) {
	return f.buckets[bucket], nil
}

func (f *fakeObjects) MakeBucket(_ context.Context, bucket string, _ minio.MakeBucketOptions) error {
	if f.makeErrs > 0 {
		f.makeErrs--
		return errors.New("boom")
	}
	f.buckets[bucket] = true
	return nil
}

func (f *fakeObjects) PutObject(_ context.Context, bucket, key string, r io.Reader, _ int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	data, _ := io.ReadAll(r)
	f.objects[bucket+"/"+key] = string(data)
	f.types[bucket+"/"+key] = opts.ContentType
	return minio.UploadInfo{Bucket: bucket, Key: key}, nil
}

func (f *fakeObjects) RemoveObject(_ context.Context, bucket, key string, _ minio.RemoveObjectOptions) error {
	delete(f.objects, bucket+"/"+key)
	return nil
}

func testConfig() config.StorageConfig {
	return config.StorageConfig{
		Endpoint:      "minio.local:9000",
		Bucket:        "profile-images",
		PublicBaseURL: "https://cdn.example.com/profile-images/",
	}
}

func TestEnsureBucketCreatesMissingBucket(t *testing.T) {
	api := newFakeObjects()
	client := newClient(api, testConfig(), nil)

	require.NoError(t, client.EnsureBucket(context.Background()))
	require.True(t, api.buckets["profile-images"])
	require.NoError(t, client.Ping(context.Background()))
}

func TestEnsureBucketFailsWhenCreateFails(t *testing.T) {
	api := newFakeObjects()
	api.makeErrs = 1
	client := newClient(api, testConfig(), nil)

	require.Error(t, client.EnsureBucket(context.Background()))
}

func TestUploadStoresObjectAndReturnsPublicURL(t *testing.T) {
	api := newFakeObjects()
	client := newClient(api, testConfig(), nil)

	url, err := client.Upload(context.Background(), "users/abc/avatar 1.png", strings.NewReader("png"), 3, "image/png")
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/profile-images/users/abc/avatar%201.png", url)
	require.Equal(t, "png", api.objects["profile-images/users/abc/avatar 1.png"])
	require.Equal(t, "image/png", api.types["profile-images/users/abc/avatar 1.png"])

	key, ok := client.KeyFromURL(url)
	require.True(t, ok)
	require.Equal(t, "users/abc/avatar 1.png", key)

	require.NoError(t, client.Delete(context.Background(), key))
	require.Empty(t, api.objects)
}

func TestUploadRejectsEmptyBody(t *testing.T) {
	client := newClient(newFakeObjects(), testConfig(), nil)

	_, err := client.Upload(context.Background(), "users/a.png", strings.NewReader(""), 0, "image/png")
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestUploadMapsStoreFailure(t *testing.T) {
	api := newFakeObjects()
	api.putErr = errors.New("network down")
	client := newClient(api, testConfig(), nil)

	_, err := client.Upload(context.Background(), "users/a.png", strings.NewReader("x"), 1, "image/png")
	require.Equal(t, pkgerrors.CodeDependency, pkgerrors.CodeOf(err))
}

func TestPublicURLDefaultsToEndpoint(t *testing.T) {
	cfg := testConfig()
	cfg.PublicBaseURL = ""
	cfg.UseSSL = true
	client := newClient(newFakeObjects(), cfg, nil)

	require.Equal(t, "https://minio.local:9000/profile-images/u/x.jpg", client.PublicURL("u/x.jpg"))
	_, ok := client.KeyFromURL("https://elsewhere.com/u/x.jpg")
	require.False(t, ok)
}
