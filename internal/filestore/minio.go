package filestore

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type minioConfig struct {
	Endpoint  string `json:"endpoint"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	Bucket    string `json:"bucket"`
	Region    string `json:"region"`
	UseSSL    bool   `json:"use_ssl"`
}

// minioStore presigns GET urls against a MinIO deployment. The region is set
// explicitly so presigning never needs a bucket-location round trip.
type minioStore struct {
	client *minio.Client
	bucket string
	ttl    time.Duration
}

func init() {
	Register("minio", createMinioStore)
}

func createMinioStore(args interface{}, urlTTL time.Duration) (Store, error) {
	cfg := &minioConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &minioStore{client: cli, bucket: cfg.Bucket, ttl: urlTTL}, nil
}

func (s *minioStore) Type() string {
	return "minio"
}

func (s *minioStore) URL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("file key is required")
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.ttl, url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
