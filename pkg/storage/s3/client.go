package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/angelmondragon/comptoir-backend/pkg/config"
	"github.com/angelmondragon/comptoir-backend/pkg/logger"
)

const pingTimeout = 5 * time.Second

// objectAPI is the subset of the S3 client used here.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// Client writes report archives under a key prefix of one bucket.
type Client struct {
	api    objectAPI
	bucket string
	prefix string
	logg   *logger.Logger
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// NewClient loads the AWS configuration. Static credentials are used when
// both keys are set; otherwise the default provider chain applies.
func NewClient(ctx context.Context, cfg config.ArchiveConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.S3Bucket) == "" {
		return nil, errors.New("s3 bucket name is required")
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newClient(s3.NewFromConfig(awsCfg), cfg, logg), nil
}

func newClient(api objectAPI, cfg config.ArchiveConfig, logg *logger.Logger) *Client {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Client{
		api:    api,
		bucket: cfg.S3Bucket,
		prefix: strings.Trim(cfg.S3Prefix, "/"),
		logg:   logg,
	}
}

func (c *Client) Bucket() string {
	return c.bucket
}

// Key joins name under the configured prefix.
func (c *Client) Key(name string) string {
	if c.prefix == "" {
		return name
	}
	return path.Join(c.prefix, name)
}

// Put uploads body as name and returns the object key.
func (c *Client) Put(ctx context.Context, name, contentType string, body []byte) (string, error) {
	if c == nil || c.api == nil {
		return "", errors.New("s3 client not initialized")
	}
	key := c.Key(name)
	_, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", c.bucket, key, err)
	}
	c.logg.Info(c.logg.WithField(ctx, "key", key), "archive.uploaded")
	return key, nil
}

func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.api == nil {
		return errors.New("s3 client not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if _, err := c.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucket)}); err != nil {
		return fmt.Errorf("head bucket %s: %w", c.bucket, err)
	}
	return nil
}
