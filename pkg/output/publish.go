package output

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const contentType = "text/plain; charset=utf-8"

// PublishConfig holds settings for the object storage target.
type PublishConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Prefix    string
	UseSSL    bool
	Timeout   time.Duration
}

// ObjectStore is the subset of the minio client used for publishing.
type ObjectStore interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// NewObjectStore creates a minio-backed ObjectStore.
func NewObjectStore(cfg PublishConfig) (ObjectStore, error) {
	// Minio expects endpoint without scheme
	endpoint := strings.TrimPrefix(cfg.Endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeout,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: timeout,
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return client, nil
}

// Publisher uploads artifacts to a bucket.
type Publisher struct {
	store  ObjectStore
	bucket string
	region string
	prefix string
	log    *slog.Logger
}

// NewPublisher creates a Publisher writing to cfg.Bucket under cfg.Prefix.
func NewPublisher(store ObjectStore, cfg PublishConfig, log *slog.Logger) *Publisher {
	if log == nil {
		log = slog.Default()
	}
	return &Publisher{
		store:  store,
		bucket: cfg.Bucket,
		region: cfg.Region,
		prefix: cfg.Prefix,
		log:    log,
	}
}

// Publish uploads every artifact, creating the bucket when it is missing.
// It returns the object keys written.
func (p *Publisher) Publish(ctx context.Context, artifacts ...Artifact) ([]string, error) {
	exists, err := p.store.BucketExists(ctx, p.bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", p.bucket, err)
	}
	if !exists {
		if err := p.store.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{Region: p.region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", p.bucket, err)
		}
		p.log.Info("created bucket", "bucket", p.bucket)
	}

	keys := make([]string, 0, len(artifacts))
	for _, artifact := range artifacts {
		key := p.prefix + artifact.Name
		reader := strings.NewReader(artifact.Content)
		_, err := p.store.PutObject(ctx, p.bucket, key, reader, reader.Size(), minio.PutObjectOptions{
			ContentType: contentType,
		})
		if err != nil {
			return keys, fmt.Errorf("upload %s: %w", key, err)
		}
		p.log.Info("published artifact", "bucket", p.bucket, "key", key)
		keys = append(keys, key)
	}
	return keys, nil
}
