package extract

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/receipt-reconciler/internal/common"
)

func uploadFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "a.jpg")
	require.NoError(t, os.WriteFile(path, []byte("fake jpeg bytes"), 0o644))
	return path
}

func newTestClient(url string) *HTTPClient {
	return NewHTTPClient(common.ExtractConfig{
		APIURL:  url,
		APIKey:  "secret-key",
		Timeout: 5 * time.Second,
	}, nil)
}

func TestHTTPClient_Extract(t *testing.T) {
	var gotKey, gotFilename, gotPartType string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("apikey")

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		gotFilename = hdr.Filename
		gotPartType = hdr.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(file)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"totalAmount":{"data":12.5,"text":"$12.50"}}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	raw, err := c.Extract(context.Background(), ExtractRequest{
		Path:        uploadFixture(t),
		Filename:    "a.jpg",
		ContentType: "image/jpeg",
	})
	require.NoError(t, err)

	assert.Equal(t, "secret-key", gotKey)
	assert.Equal(t, "a.jpg", gotFilename)
	assert.Equal(t, "image/jpeg", gotPartType)
	assert.Equal(t, []byte("fake jpeg bytes"), gotBody)
	assert.JSONEq(t, `{"totalAmount":{"data":12.5,"text":"$12.50"}}`, string(raw))
}

func TestHTTPClient_NonTwoHundredIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Extract(context.Background(), ExtractRequest{
		Path: uploadFixture(t), Filename: "a.jpg", ContentType: "image/jpeg",
	})
	assert.ErrorIs(t, err, common.ErrExtraction)
}

func TestHTTPClient_MalformedPayloadIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// date must be a {data, text} object, not a bare string
		_, _ = w.Write([]byte(`{"date":"2020-01-02"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Extract(context.Background(), ExtractRequest{
		Path: uploadFixture(t), Filename: "a.jpg", ContentType: "image/jpeg",
	})
	assert.Error(t, err)
}

func TestHTTPClient_TruncatedBodyIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Promise more bytes than are sent; the connection drops mid-body.
		w.Header().Set("Content-Length", "1000")
		_, _ = w.Write([]byte(`{"totalAmount":{"data":12.5,`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Extract(context.Background(), ExtractRequest{
		Path: uploadFixture(t), Filename: "a.jpg", ContentType: "image/jpeg",
	})
	require.Error(t, err)

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "EXTRACT_TRANSPORT", appErr.Code, "a short read is a transport failure, not a parse failure")
}

func TestHTTPClient_SingleAttempt(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Extract(context.Background(), ExtractRequest{
		Path: uploadFixture(t), Filename: "a.jpg", ContentType: "image/jpeg",
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "a failed upload is never retried")
}

func TestHTTPClient_MissingUploadFile(t *testing.T) {
	c := newTestClient("http://127.0.0.1:0")
	_, err := c.Extract(context.Background(), ExtractRequest{
		Path: filepath.Join(t.TempDir(), "nope.jpg"), Filename: "nope.jpg",
	})
	assert.Error(t, err)
}
