package neocities

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_List(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/list", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"result": "success",
			"files": [
				{
					"path": "index.html",
					"is_directory": false,
					"size": 1023,
					"updated_at": "Sat, 13 Feb 2016 03:04:00 -0000",
					"sha1_hash": "c8aac06f343c962a24a7eb111aad739ff48b7fb1"
				},
				{
					"path": "images",
					"is_directory": true,
					"updated_at": "Sat, 13 Feb 2016 03:04:00 -0000"
				}
			]
		}`))
	}))
	defer srv.Close()

	client := New("test-key", WithBaseURL(srv.URL))
	tree, err := client.List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, tree.CountFiles())
	assert.Equal(t, 1, tree.CountDirectories())

	index := tree.Find("index.html")
	require.NotNil(t, index)
	assert.Equal(t, int64(1023), index.Size)
	assert.Equal(t, "c8aac06f343c962a24a7eb111aad739ff48b7fb1", index.SHA1Hash)
	assert.Equal(t, 2016, index.LastModified.Year())

	images := tree.Find("images")
	require.NotNil(t, images)
	assert.True(t, images.IsDirectory)
}

func TestClient_List_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"result": "error", "error_type": "invalid_auth", "message": "invalid credentials"}`))
	}))
	defer srv.Close()

	client := New("bad-key", WithBaseURL(srv.URL))
	_, err := client.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_auth")
	assert.Contains(t, err.Error(), "invalid credentials")
}

func TestClient_Upload(t *testing.T) {
	localPath := filepath.Join(t.TempDir(), "index.html")
	require.NoError(t, os.WriteFile(localPath, []byte("<h1>hi</h1>"), 0o644))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/upload", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		// The multipart field name carries the remote path.
		file, _, err := r.FormFile("sub/index.html")
		require.NoError(t, err)
		defer file.Close()

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result": "success"}`))
	}))
	defer srv.Close()

	client := New("test-key", WithBaseURL(srv.URL))
	assert.NoError(t, client.Upload(context.Background(), "sub/index.html", localPath))
}

func TestClient_Delete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/delete", r.URL.Path)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, []string{"old.html", "stale"}, r.PostForm["filenames[]"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result": "success"}`))
	}))
	defer srv.Close()

	client := New("test-key", WithBaseURL(srv.URL))
	assert.NoError(t, client.Delete(context.Background(), "old.html", "stale"))
}

func TestClient_Delete_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"result": "error", "error_type": "missing_files", "message": "old.html was not found"}`))
	}))
	defer srv.Close()

	client := New("test-key", WithBaseURL(srv.URL))
	err := client.Delete(context.Background(), "old.html")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing_files")
}
