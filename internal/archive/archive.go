package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/ohkbilal/certa/internal/assess"
)

// ErrNotConfigured is returned by Config.Validate when required fields are missing.
var ErrNotConfigured = errors.New("archive not configured")

// #region config
// Config locates the evidence bucket.
type Config struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Enabled reports whether an endpoint is set. An empty endpoint disables archiving.
func (c Config) Enabled() bool { return strings.TrimSpace(c.Endpoint) != "" }

// Validate checks an enabled config for the fields minio needs.
func (c Config) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.Bucket == "" {
		return fmt.Errorf("bucket is required: %w", ErrNotConfigured)
	}
	if c.AccessKey == "" || c.SecretKey == "" {
		return fmt.Errorf("access and secret key are required: %w", ErrNotConfigured)
	}
	return nil
}

// #endregion config

// #region object-store
// ObjectStore is the subset of *minio.Client the archiver uses.
type ObjectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucket, object string, opts minio.GetObjectOptions) (*minio.Object, error)
}

// NewMinIOClient builds a minio client from cfg.
func NewMinIOClient(cfg Config) (*minio.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Enabled() {
		return nil, fmt.Errorf("new minio client: %w", ErrNotConfigured)
	}
	return minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: newTransport(),
	})
}

func newTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// #endregion object-store

// #region archiver
// Archiver writes final assessment outputs to an object store as JSON
// evidence, keyed by policy version and run id.
type Archiver struct {
	store  ObjectStore
	bucket string
	region string
	log    *zap.Logger
}

// New creates an archiver over store. A nil logger disables logging.
func New(store ObjectStore, bucket, region string, log *zap.Logger) *Archiver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Archiver{store: store, bucket: bucket, region: region, log: log}
}

// EnsureBucket creates the evidence bucket if it does not exist.
func (a *Archiver) EnsureBucket(ctx context.Context) error {
	exists, err := a.store.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("bucket exists %s: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.store.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{Region: a.region}); err != nil {
		return fmt.Errorf("make bucket %s: %w", a.bucket, err)
	}
	return nil
}

// Put uploads out and returns its object key. The FAO hash is attached as
// object metadata so evidence can be checked without a database.
func (a *Archiver) Put(ctx context.Context, out assess.Output) (string, error) {
	hash, err := out.Hash()
	if err != nil {
		return "", fmt.Errorf("archive %s: %w", out.Context.RunID, err)
	}
	blob, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal output: %w", err)
	}
	key := ObjectKey(out)
	_, err = a.store.PutObject(ctx, a.bucket, key, bytes.NewReader(blob), int64(len(blob)), minio.PutObjectOptions{
		ContentType:  "application/json",
		UserMetadata: map[string]string{"fao-hash": hash, "policy-version": out.Context.PolicyVersion},
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	a.log.Info("assessment archived",
		zap.String("run_id", out.Context.RunID),
		zap.String("object", key),
		zap.String("fao_hash", hash),
	)
	return key, nil
}

// Get downloads a previously archived output.
func (a *Archiver) Get(ctx context.Context, key string) (assess.Output, error) {
	obj, err := a.store.GetObject(ctx, a.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return assess.Output{}, fmt.Errorf("get object %s: %w", key, err)
	}
	defer obj.Close()
	var out assess.Output
	if err := json.NewDecoder(obj).Decode(&out); err != nil {
		return assess.Output{}, fmt.Errorf("decode object %s: %w", key, err)
	}
	return out, nil
}

// ObjectKey returns the object path for out: assessments/<policy>/<run id>.json.
func ObjectKey(out assess.Output) string {
	policy := out.Context.PolicyVersion
	if policy == "" {
		policy = "unversioned"
	}
	return fmt.Sprintf("assessments/%s/%s.json", policy, out.Context.RunID)
}

// #endregion archiver
