package models

import "fmt"

// Visibility is the canned access policy applied to a published object.
type Visibility string

// VisibilityPublicRead makes the object readable by anyone with its URL.
const VisibilityPublicRead Visibility = "public-read"

// PublishTarget identifies where the payload is stored. It is fixed per run.
type PublishTarget struct {
	// Bucket is the destination bucket name.
	Bucket string `json:"bucket"`
	// Key is the object key inside the bucket.
	Key string `json:"key"`
	// Region is the bucket's region (e.g., us-east-1).
	Region string `json:"region"`
	// Visibility is the access policy for the object.
	Visibility Visibility `json:"visibility"`
	// Endpoint overrides the AWS endpoint for S3-compatible stores (optional).
	Endpoint string `json:"endpoint,omitempty"`
}

// S3URI returns the s3://bucket/key form of the target.
func (t PublishTarget) S3URI() string {
	return fmt.Sprintf("s3://%s/%s", t.Bucket, t.Key)
}
