package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateGifURLByContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.Header().Set("Content-Type", "image/gif")
	}))
	defer srv.Close()

	v := NewValidator()
	assert.NoError(t, v.ValidateGifURL(context.Background(), srv.URL+"/funny"))
}

func TestValidateGifURLBySuffix(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
	}))
	defer srv.Close()

	v := NewValidator()
	assert.NoError(t, v.ValidateGifURL(context.Background(), srv.URL+"/cat.GIF"))
}

func TestValidateGifURLRejections(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
	}))
	defer srv.Close()

	v := NewValidator()
	ctx := context.Background()

	assert.Error(t, v.ValidateGifURL(ctx, "ftp://example.com/cat.gif"))
	assert.Error(t, v.ValidateGifURL(ctx, "javascript:alert(1)"))
	assert.Error(t, v.ValidateGifURL(ctx, "/relative/cat.gif"))
	assert.Error(t, v.ValidateGifURL(ctx, srv.URL+"/page.html"))
	// Unreachable hosts fail closed.
	assert.Error(t, v.ValidateGifURL(ctx, "http://127.0.0.1:1/cat.gif"))
}
