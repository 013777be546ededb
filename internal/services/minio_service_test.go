package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 answers bucket HEAD requests and records every method it sees.
type fakeS3 struct {
	mu      sync.Mutex
	exists  bool
	methods []string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.methods = append(f.methods, r.Method)
	exists := f.exists
	f.mu.Unlock()

	if r.Method == http.MethodHead && exists {
		w.WriteHeader(http.StatusOK)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func (f *fakeS3) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.methods...)
}

func newTestMinioStore(t *testing.T, backend *fakeS3) *minioStore {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	client, err := minio.New(strings.TrimPrefix(srv.URL, "http://"), &minio.Options{
		Creds:  credentials.NewStaticV4("access", "secret", ""),
		Region: "us-east-1",
	})
	require.NoError(t, err)
	return &minioStore{client: client, bucket: "products"}
}

func TestMinioStorePing(t *testing.T) {
	backend := &fakeS3{exists: true}
	store := newTestMinioStore(t, backend)

	require.NoError(t, store.Ping(context.Background()))
	assert.Contains(t, backend.seen(), http.MethodHead)
	assert.NotContains(t, backend.seen(), http.MethodPut)
}

func TestMinioStorePing_MissingBucketIsNotCreated(t *testing.T) {
	backend := &fakeS3{}
	store := newTestMinioStore(t, backend)

	err := store.Ping(context.Background())

	assert.ErrorContains(t, err, `bucket "products" does not exist`)
	assert.NotContains(t, backend.seen(), http.MethodPut)
}
