package publish

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// ErrMissingCredentials indicates the access key or secret is empty.
var ErrMissingCredentials = errors.New("missing access key or secret")

// ErrMissingRegion indicates no region was configured.
var ErrMissingRegion = errors.New("missing region")

// ErrInvalidTarget indicates the bucket or key is empty.
var ErrInvalidTarget = errors.New("bucket and key are required")

// PublishError represents a failure to build the storage client or upload.
type PublishError struct {
	Op     string // "client", "upload"
	Target string // s3://bucket/key
	// Code is the S3 API error code (e.g., NoSuchBucket, AccessDenied), if any.
	Code string
	Err  error
}

func (e *PublishError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("publish error (%s) for %s: %s: %v", e.Op, e.Target, e.Code, e.Err)
	}
	return fmt.Sprintf("publish error (%s) for %s: %v", e.Op, e.Target, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

func newPublishError(op, target string, err error) *PublishError {
	pe := &PublishError{Op: op, Target: target, Err: err}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		pe.Code = apiErr.ErrorCode()
	}
	return pe
}
