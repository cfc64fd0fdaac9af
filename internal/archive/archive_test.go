package archive

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/require"

	"github.com/ohkbilal/certa/internal/assess"
	"github.com/ohkbilal/certa/internal/runctx"
)

// fakeStore records uploads in memory. GetObject is not exercised because
// *minio.Object cannot be constructed outside the client.
type fakeStore struct {
	ObjectStore
	buckets map[string]bool
	objects map[string][]byte
	meta    map[string]map[string]string
	putErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		buckets: map[string]bool{},
		objects: map[string][]byte{},
		meta:    map[string]map[string]string{},
	}
}

func (f *fakeStore) BucketExists(_ context.Context, bucket string) (bool, error) {
	return f.buckets[bucket], nil
}

func (f *fakeStore) MakeBucket(_ context.Context, bucket string, _ minio.MakeBucketOptions) error {
	f.buckets[bucket] = true
	return nil
}

func (f *fakeStore) PutObject(_ context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.objects[bucket+"/"+object] = b
	f.meta[bucket+"/"+object] = opts.UserMetadata
	return minio.UploadInfo{Bucket: bucket, Key: object, Size: size}, nil
}

func fixedOutput() assess.Output {
	return assess.Run(assess.Request{FluidID: "hf-48", Temperature: 25, Materials: []string{"ptfe"}},
		runctx.WithClock(func() time.Time { return time.UnixMilli(1700000000000) }),
		runctx.WithIDSource(func() string { return "x" }),
	)
}

func TestEnsureBucket(t *testing.T) {
	fs := newFakeStore()
	a := New(fs, "evidence", "", nil)
	require.NoError(t, a.EnsureBucket(context.Background()))
	require.True(t, fs.buckets["evidence"])
	require.NoError(t, a.EnsureBucket(context.Background()))
}

func TestPut(t *testing.T) {
	fs := newFakeStore()
	a := New(fs, "evidence", "", nil)
	out := fixedOutput()

	key, err := a.Put(context.Background(), out)
	require.NoError(t, err)
	require.Equal(t, "assessments/V16.0/RUN-1700000000000-x.json", key)
	require.Contains(t, string(fs.objects["evidence/"+key]), `"primary_regime": "FLUORIDE_ACID"`)
	require.Equal(t, out.MustHash(), fs.meta["evidence/"+key]["fao-hash"])
}

func TestPutError(t *testing.T) {
	fs := newFakeStore()
	fs.putErr = errors.New("boom")
	_, err := New(fs, "evidence", "", nil).Put(context.Background(), fixedOutput())
	require.ErrorContains(t, err, "boom")
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, Config{}.Validate())
	require.False(t, Config{}.Enabled())

	err := Config{Endpoint: "localhost:9000"}.Validate()
	require.ErrorIs(t, err, ErrNotConfigured)

	err = Config{Endpoint: "localhost:9000", Bucket: "b"}.Validate()
	require.ErrorIs(t, err, ErrNotConfigured)

	require.NoError(t, Config{Endpoint: "localhost:9000", Bucket: "b", AccessKey: "k", SecretKey: "s"}.Validate())
}

func TestNewMinIOClient(t *testing.T) {
	_, err := NewMinIOClient(Config{})
	require.ErrorIs(t, err, ErrNotConfigured)

	c, err := NewMinIOClient(Config{Endpoint: "localhost:9000", Bucket: "b", AccessKey: "k", SecretKey: "s"})
	require.NoError(t, err)
	require.NotNil(t, c)
}
