package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// FeedArchive stores raw uploaded feed documents in S3-compatible storage
// so a matching run can be audited or replayed after the fact. Optional:
// the server runs without it when no credentials are configured.
type FeedArchive struct {
	client     *minio.Client
	bucketName string
	region     string
}

// NewFeedArchive creates an S3-backed feed archive.
func NewFeedArchive(endpoint, accessKey, secretKey, bucketName, region string, useSSL bool) (*FeedArchive, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	return &FeedArchive{
		client:     client,
		bucketName: bucketName,
		region:     region,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (a *FeedArchive) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = a.client.MakeBucket(ctx, a.bucketName, minio.MakeBucketOptions{
			Region: a.region,
		})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// ArchiveFeed stores one raw feed document and returns its object key.
// Keys are date-partitioned so old feeds can be expired by prefix.
func (a *FeedArchive) ArchiveFeed(ctx context.Context, source string, data []byte) (string, error) {
	now := time.Now().UTC()
	key := fmt.Sprintf("feeds/%s/%s-%d.json", now.Format("2006/01/02"), sanitizeSource(source), now.UnixNano())

	_, err := a.client.PutObject(ctx, a.bucketName, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive feed: %w", err)
	}

	return key, nil
}

// FetchFeed retrieves an archived feed document by key.
func (a *FeedArchive) FetchFeed(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := a.client.GetObject(ctx, a.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get archived feed: %w", err)
	}

	return obj, nil
}

// GetPresignedURL generates a presigned URL for downloading an archived feed
func (a *FeedArchive) GetPresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	url, err := a.client.PresignedGetObject(ctx, a.bucketName, key, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return url.String(), nil
}

// DeleteFeed removes an archived feed document.
func (a *FeedArchive) DeleteFeed(ctx context.Context, key string) error {
	err := a.client.RemoveObject(ctx, a.bucketName, key, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete archived feed: %w", err)
	}

	return nil
}

// sanitizeSource makes a vendor source label safe for an object key.
func sanitizeSource(source string) string {
	if source == "" {
		return "feed"
	}
	out := make([]rune, 0, len(source))
	for _, r := range source {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r == ' ' || r == '_':
			out = append(out, '-')
		}
	}
	if len(out) == 0 {
		return "feed"
	}
	return string(out)
}
