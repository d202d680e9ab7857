package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/Alijeyrad/fieldcare/config"
)

// objectAPI is the part of the S3 client the backend uses.
type objectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Client stores opaque payloads as objects under <prefix>/patients/<id>
// in an S3-compatible bucket.
type Client struct {
	api    objectAPI
	bucket string
	prefix string
}

// New creates a client for AWS S3 or, when an endpoint is configured, an
// S3-compatible service addressed path-style.
func New(ctx context.Context, cfg config.S3Config) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3: bucket name is required")
	}

	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)))
	}
	awsCfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load config: %w", err)
	}

	cli := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newClient(cli, cfg.Bucket, cfg.Prefix), nil
}

func newClient(api objectAPI, bucket, prefix string) *Client {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = "fieldcare"
	}
	return &Client{api: api, bucket: bucket, prefix: prefix}
}

func (c *Client) key(id string) string { return c.prefix + "/patients/" + id }

func (c *Client) versionKey() string { return c.prefix + "/schema_version" }

// Open records the schema version, refusing to run against a newer one.
func (c *Client) Open(ctx context.Context, version int) error {
	raw, err := c.read(ctx, c.versionKey())
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if raw != nil {
		current, err := strconv.Atoi(strings.TrimSpace(string(raw)))
		if err != nil {
			return fmt.Errorf("corrupt schema version %q", raw)
		}
		if current > version {
			return fmt.Errorf("stored schema version %d is newer than supported %d", current, version)
		}
		if current == version {
			return nil
		}
	}
	return c.write(ctx, c.versionKey(), []byte(strconv.Itoa(version)))
}

// Get returns the payload stored under id, or nil when there is none.
func (c *Client) Get(ctx context.Context, id string) ([]byte, error) {
	return c.read(ctx, c.key(id))
}

func (c *Client) Put(ctx context.Context, id string, payload []byte) error {
	return c.write(ctx, c.key(id), payload)
}

func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.key(id)),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %q: %w", id, err)
	}
	return nil
}

func (c *Client) read(ctx context.Context, key string) ([]byte, error) {
	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, nil
		}
		return nil, fmt.Errorf("s3 get %q: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read %q: %w", key, err)
	}
	return data, nil
}

func (c *Client) write(ctx context.Context, key string, data []byte) error {
	_, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/octet-stream"),
		ACL:           types.ObjectCannedACLPrivate,
	})
	if err != nil {
		return fmt.Errorf("s3 put %q: %w", key, err)
	}
	return nil
}
