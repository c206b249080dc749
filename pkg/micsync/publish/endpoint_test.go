package publish

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GpSinghJadon/micsync-go/pkg/micsync/models"
)

// recordedRequest is what the fake S3 endpoint saw.
type recordedRequest struct {
	method      string
	path        string
	acl         string
	contentType string
}

// fakeS3 answers every request with status and body and records it.
type fakeS3 struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_, _ = io.Copy(io.Discard, r.Body)

	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		method:      r.Method,
		path:        r.URL.Path,
		acl:         r.Header.Get("x-amz-acl"),
		contentType: r.Header.Get("Content-Type"),
	})
	f.mu.Unlock()

	if f.body != "" {
		w.Header().Set("Content-Type", "application/xml")
	}
	w.WriteHeader(f.status)
	_, _ = io.WriteString(w, f.body)
}

func (f *fakeS3) recorded() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

func endpointTarget(endpoint string) models.PublishTarget {
	target := testTarget()
	target.Region = "us-east-1"
	target.Endpoint = endpoint
	return target
}

var testCreds = Credentials{AccessKeyID: "AKIAEXAMPLE", SecretAccessKey: "wJalrXUtnFEMI/K7MDENG"}

func TestS3Publisher_Endpoint_Success(t *testing.T) {
	fake := &fakeS3{status: http.StatusOK}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	target := endpointTarget(srv.URL)
	pub, err := NewS3Publisher(testCreds, target, nil)
	require.NoError(t, err)

	location, err := pub.Publish(context.Background(), []byte(`[{"MIC":"XNYS"}]`), target)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/mic-registry/iso10383/mic.json", location)

	reqs := fake.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPut, reqs[0].method)
	assert.Equal(t, "/mic-registry/iso10383/mic.json", reqs[0].path)
	assert.Equal(t, "public-read", reqs[0].acl)
	assert.Equal(t, ContentType, reqs[0].contentType)
}

func TestS3Publisher_Endpoint_ServerErrorIsNotRetried(t *testing.T) {
	fake := &fakeS3{
		status: http.StatusInternalServerError,
		body: `<?xml version="1.0" encoding="UTF-8"?>` +
			`<Error><Code>InternalError</Code><Message>We encountered an internal error.</Message></Error>`,
	}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	target := endpointTarget(srv.URL)
	pub, err := NewS3Publisher(testCreds, target, nil)
	require.NoError(t, err)

	_, err = pub.Publish(context.Background(), []byte(`[]`), target)
	require.Error(t, err)

	var pubErr *PublishError
	require.ErrorAs(t, err, &pubErr)
	assert.Equal(t, "upload", pubErr.Op)
	assert.Equal(t, "InternalError", pubErr.Code)

	reqs := fake.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, "public-read", reqs[0].acl)
}
