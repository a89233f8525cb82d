package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wimotos/backend/internal/domain/shared"
	"github.com/wimotos/backend/internal/infrastructure/config"
)

// fakeS3 answers path-style object requests for a single bucket
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodPut:
		data, _ := io.ReadAll(r.Body)
		f.objects[path] = data
		f.types[path] = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		data, ok := f.objects[path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			return
		}
		w.Header().Set("Content-Type", f.types[path])
		_, _ = w.Write(data)
	case http.MethodDelete:
		delete(f.objects, path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestS3(t *testing.T) (*S3ObjectStorage, *fakeS3) {
	t.Helper()
	fake := newFakeS3()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s, err := NewS3ObjectStorage(&config.StorageConfig{
		Endpoint:        srv.URL,
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		Bucket:          "wimotos",
		UsePathStyle:    true,
	}, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return s, fake
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.StorageConfig
		want string
	}{
		{"nil config", nil, "configuration is required"},
		{"missing bucket", &config.StorageConfig{AccessKeyID: "k", SecretAccessKey: "s"}, "bucket is required"},
		{"missing credentials", &config.StorageConfig{Bucket: "b"}, "credentials are required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewS3ObjectStorage(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	s, err := NewS3ObjectStorage(&config.StorageConfig{Bucket: "b", AccessKeyID: "k", SecretAccessKey: "s"})
	require.NoError(t, err)
	assert.Equal(t, "b", s.Bucket())
	assert.Equal(t, defaultPresignExpiry, s.expiry)
}

func TestS3ObjectStorage_UploadGetDelete(t *testing.T) {
	s, fake := newTestS3(t)
	ctx := context.Background()

	require.NoError(t, s.Upload(ctx, "products/p1/cover.jpg", []byte("jpeg-bytes"), "image/jpeg"))
	assert.Equal(t, []byte("jpeg-bytes"), fake.objects["wimotos/products/p1/cover.jpg"])
	assert.Equal(t, "image/jpeg", fake.types["wimotos/products/p1/cover.jpg"])

	data, err := s.GetBytes(ctx, "products/p1/cover.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), data)

	require.NoError(t, s.DeleteObject(ctx, "products/p1/cover.jpg"))
	_, err = s.GetBytes(ctx, "products/p1/cover.jpg")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestS3ObjectStorage_DownloadURL(t *testing.T) {
	s, _ := newTestS3(t)
	u, err := s.DownloadURL(context.Background(), "products/p1/cover.jpg")
	require.NoError(t, err)
	assert.Contains(t, u, "/wimotos/products/p1/cover.jpg")
	assert.Contains(t, u, "X-Amz-Signature")
}

func TestS3ObjectStorage_KeyRequired(t *testing.T) {
	s, _ := newTestS3(t)
	ctx := context.Background()
	assert.Error(t, s.Upload(ctx, "", nil, ""))
	_, err := s.GetBytes(ctx, "")
	assert.Error(t, err)
	assert.Error(t, s.DeleteObject(ctx, ""))
	_, err = s.DownloadURL(ctx, "")
	assert.Error(t, err)
}

func TestMemoryObjectStorage(t *testing.T) {
	s := NewMemoryObjectStorage()
	ctx := context.Background()

	src := []byte("png")
	require.NoError(t, s.Upload(ctx, "a", src, "image/png"))
	src[0] = 'X'

	got, err := s.GetBytes(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), got, "upload keeps its own copy")
	assert.Equal(t, "image/png", s.ContentType("a"))
	assert.Equal(t, 1, s.Len())

	u, err := s.DownloadURL(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "memory://a", u)

	require.NoError(t, s.DeleteObject(ctx, "a"))
	_, err = s.GetBytes(ctx, "a")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	require.NoError(t, s.DeleteObject(ctx, "a"))
	require.NoError(t, s.EnsureBucket(ctx))
}
