package remotestore

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Config describes the image bucket.
type S3Config struct {
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string
	Bucket    string

	// PublicBaseURL prefixes object keys in returned URLs. Defaults to
	// <Endpoint>/<Bucket>.
	PublicBaseURL string
}

// Enabled reports whether enough is set to talk to the bucket.
func (c S3Config) Enabled() bool {
	return c.Bucket != "" && c.Endpoint != ""
}

func (c S3Config) publicBase() string {
	if c.PublicBaseURL != "" {
		return strings.TrimRight(c.PublicBaseURL, "/")
	}
	return strings.TrimRight(c.Endpoint, "/") + "/" + c.Bucket
}

type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Blobs stores images in a publicly readable S3-compatible bucket.
type S3Blobs struct {
	client     putObjectAPI
	bucket     string
	publicBase string
}

// NewS3Blobs builds a path-style S3 client with static credentials.
func NewS3Blobs(ctx context.Context, c S3Config) (*S3Blobs, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.AccessKey,
			c.SecretKey,
			"",
		)))
	if err != nil {
		return nil, &Error{Op: "s3 config", Problem: ProblemNotConfigured, Err: err}
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(c.Endpoint)
		o.UsePathStyle = true
	})

	return &S3Blobs{client: client, bucket: c.Bucket, publicBase: c.publicBase()}, nil
}

// Upload stores data under key and returns its public URL.
func (b *S3Blobs) Upload(ctx context.Context, data []byte, key, contentType string) (string, error) {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(b.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("max-age=3600"),
	})
	if err != nil {
		return "", classifyS3("upload", fmt.Errorf("put %s: %w", key, err))
	}
	return b.URL(key), nil
}

// URL returns the public URL of key.
func (b *S3Blobs) URL(key string) string {
	return b.publicBase + "/" + key
}
