package export

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
)

// PutObjectAPI is the part of *s3.Client used by S3Sink.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads files to an S3 bucket, under an optional key prefix.
type S3Sink struct {
	client PutObjectAPI
	bucket string
	prefix string
}

// NewS3Sink loads the default AWS configuration (environment, shared
// config, instance role) for region and returns a sink for bucket.
func NewS3Sink(ctx context.Context, bucket, region, prefix string) (*S3Sink, error) {
	if bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, errors.Wrap(err, "load default config failed")
	}
	return NewS3SinkWithClient(s3.NewFromConfig(cfg), bucket, prefix), nil
}

// NewS3SinkWithClient returns a sink using an existing client.
func NewS3SinkWithClient(client PutObjectAPI, bucket, prefix string) *S3Sink {
	return &S3Sink{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// Key returns the object key used for name.
func (s *S3Sink) Key(name string) (string, error) {
	clean, err := cleanName(name)
	if err != nil {
		return "", err
	}
	if s.prefix == "" {
		return clean, nil
	}
	return path.Join(s.prefix, clean), nil
}

// Put uploads r and returns an s3://bucket/key URI.
func (s *S3Sink) Put(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	key, err := s.Key(name)
	if err != nil {
		return "", err
	}
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   r,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", errors.Wrap(err, "put object failed")
	}
	return "s3://" + s.bucket + "/" + key, nil
}
