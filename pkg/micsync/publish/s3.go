// Package publish uploads payloads to S3 (or an S3-compatible store) with a
// public-read ACL and derives the object's public URL.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/GpSinghJadon/micsync-go/pkg/micsync/models"
)

// ContentType is the content type stored with published payloads.
const ContentType = "application/json; charset=utf-8"

// ObjectStore is the subset of the S3 API used for publishing.
// *s3.Client satisfies it.
type ObjectStore interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Credentials holds static access credentials. They are never logged.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// Publisher uploads payloads to an ObjectStore.
type Publisher struct {
	store  ObjectStore
	logger *slog.Logger
}

// New creates a Publisher over an existing store.
func New(store ObjectStore, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{store: store, logger: logger}
}

// NewS3Publisher builds an S3 client from static credentials and wraps it in
// a Publisher. Any failure is a *PublishError with Op "client".
func NewS3Publisher(creds Credentials, target models.PublishTarget, logger *slog.Logger) (*Publisher, error) {
	client, err := NewS3Client(creds, target)
	if err != nil {
		return nil, err
	}
	return New(client, logger), nil
}

// NewS3Client creates an S3 client for target's region. When target has an
// endpoint override, path-style addressing is used against that endpoint.
// The SDK's retryer is limited to a single attempt.
func NewS3Client(creds Credentials, target models.PublishTarget) (*s3.Client, error) {
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return nil, newPublishError("client", target.S3URI(), ErrMissingCredentials)
	}
	if target.Region == "" {
		return nil, newPublishError("client", target.S3URI(), ErrMissingRegion)
	}

	opts := s3.Options{
		Region: target.Region,
		Credentials: credentials.NewStaticCredentialsProvider(
			creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken,
		),
		RetryMaxAttempts: 1,
	}
	if target.Endpoint != "" {
		opts.BaseEndpoint = aws.String(endpointURL(target.Endpoint))
		opts.UsePathStyle = true
	}

	return s3.New(opts), nil
}

// Publish uploads payload as the object at target and returns its public URL.
// Uploading to an existing key overwrites it.
func (p *Publisher) Publish(ctx context.Context, payload []byte, target models.PublishTarget) (string, error) {
	if target.Bucket == "" || target.Key == "" {
		return "", newPublishError("upload", target.S3URI(), ErrInvalidTarget)
	}

	_, err := p.store.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(target.Bucket),
		Key:           aws.String(target.Key),
		Body:          bytes.NewReader(payload),
		ContentLength: aws.Int64(int64(len(payload))),
		ContentType:   aws.String(ContentType),
		ACL:           cannedACL(target.Visibility),
	})
	if err != nil {
		return "", newPublishError("upload", target.S3URI(), err)
	}

	location := PublicURL(target)
	p.logger.Info("payload published",
		"target", target.S3URI(),
		"bytes", len(payload),
		"url", location,
	)
	return location, nil
}

// PublicURL derives the public URL of target:
// https://s3-{region}.amazonaws.com/{bucket}/{key}, or
// {endpoint}/{bucket}/{key} when an endpoint override is set.
func PublicURL(target models.PublishTarget) string {
	base := fmt.Sprintf("https://s3-%s.amazonaws.com", target.Region)
	if target.Endpoint != "" {
		base = strings.TrimRight(endpointURL(target.Endpoint), "/")
	}
	return fmt.Sprintf("%s/%s/%s", base, target.Bucket, escapeKey(target.Key))
}

func cannedACL(v models.Visibility) types.ObjectCannedACL {
	if v == "" || v == models.VisibilityPublicRead {
		return types.ObjectCannedACLPublicRead
	}
	return types.ObjectCannedACL(v)
}

// endpointURL prefixes a bare host with https://.
func endpointURL(endpoint string) string {
	if strings.Contains(endpoint, "://") {
		return endpoint
	}
	return "https://" + endpoint
}

// escapeKey escapes each path segment of an object key.
func escapeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
