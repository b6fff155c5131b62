package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/approval"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/config"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/ids"
)

// AuditArchive writes each approval event as a JSON object to an
// S3-compatible bucket.
type AuditArchive struct {
	client *minio.Client
	cfg    config.StorageConfig
}

func NewAuditArchive(cfg config.StorageConfig) (*AuditArchive, error) {
	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL

	if strings.HasPrefix(endpoint, "http") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint: %w", err)
		}
		endpoint = u.Host
		useSSL = u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}

	return &AuditArchive{
		client: client,
		cfg:    cfg,
	}, nil
}

func (a *AuditArchive) EnsureBucket(ctx context.Context) error {
	bucket := a.cfg.BucketAudit
	exists, err := a.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("bucket exists %s: %w", bucket, err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: a.cfg.Region}); err != nil {
			return fmt.Errorf("create bucket %s: %w", bucket, err)
		}
	}
	return nil
}

func (a *AuditArchive) Record(ctx context.Context, event approval.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	key := objectKey(event, ids.New())
	_, err = a.client.PutObject(ctx, a.cfg.BucketAudit, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// objectKey partitions events by entity and UTC day.
func objectKey(event approval.Event, id string) string {
	at := event.At.UTC()
	return path.Join(
		"approvals",
		string(event.Entity),
		at.Format("2006/01/02"),
		id+".json",
	)
}
