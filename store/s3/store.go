// Package s3 provides the production Store implementation backed by the
// AWS S3 API (works with MinIO and other S3-compatible endpoints).
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/viant/bucketfs/store"
)

// Config holds S3 connection settings.
type Config struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PathStyle bool
}

// Store implements store.Store over the S3 API.
type Store struct {
	client *awss3.Client
}

// New creates an S3-backed store. Credentials fall back to the default AWS
// chain when no static keys are configured.
func New(ctx context.Context, cfg Config) (*Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})
	return &Store{client: client}, nil
}

// NewWithClient wraps an existing client, used by tests.
func NewWithClient(client *awss3.Client) *Store {
	return &Store{client: client}
}

// GetObject implements store.Store.
func (s *Store) GetObject(ctx context.Context, id store.Identifier) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(id.Bucket),
		Key:    aws.String(id.Key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		var notFound *types.NotFound
		if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %v", store.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: get %v: %v", store.ErrUpstream, id, err)
	}
	return out.Body, nil
}

// ListObjects implements store.Store using ListObjectsV2 continuation tokens.
func (s *Store) ListObjects(ctx context.Context, bucket, prefix, token string, maxKeys int) (*store.Page, error) {
	if maxKeys <= 0 {
		maxKeys = store.DefaultPageSize
	}
	input := &awss3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		MaxKeys: aws.Int32(int32(maxKeys)),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}
	if token != "" {
		input.ContinuationToken = aws.String(token)
	}
	out, err := s.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s/%s: %v", store.ErrUpstream, bucket, prefix, err)
	}
	page := &store.Page{Objects: make([]store.Object, 0, len(out.Contents))}
	for _, item := range out.Contents {
		object := store.Object{
			Size:         item.Size,
			LastModified: item.LastModified,
			ETag:         item.ETag,
			StorageClass: string(item.StorageClass),
		}
		if item.Key != nil {
			object.Key = *item.Key
		}
		page.Objects = append(page.Objects, object)
	}
	if out.IsTruncated != nil && *out.IsTruncated && out.NextContinuationToken != nil {
		page.NextToken = *out.NextContinuationToken
	}
	return page, nil
}
