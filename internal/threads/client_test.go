package threads

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threads-autoposter/internal/config"
	"threads-autoposter/models"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	creds := NewCredentialStore("test-token", filepath.Join(t.TempDir(), ".env"))
	return NewClient(&config.Config{
		ThreadsBaseURL: baseURL,
		APIVersion:     "v1.0",
		ThreadsUserID:  "17841400000",
		AppID:          "app-id",
		AppSecret:      "app-secret",
		HTTPTimeoutSec: 5,
	}, creds)
}

func TestCreateContainerSendsTypedParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1.0/17841400000/threads", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "IMAGE", q.Get("media_type"))
		assert.Equal(t, "https://cdn.example.com/1_1.png", q.Get("image_url"))
		assert.Equal(t, "caption", q.Get("text"))
		assert.Equal(t, "test-token", q.Get("access_token"))
		w.Write([]byte(`{"id":"container-1"}`))
	}))
	defer server.Close()

	id, err := newTestClient(t, server.URL).CreateContainer(context.Background(), &models.Draft{
		MediaType: models.MediaTypeImage,
		Text:      "caption",
		MediaURLs: []string{"https://cdn.example.com/1_1.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, "container-1", id)
}

func TestCreateContainerPollGateSkipsNetwork(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).CreateContainer(context.Background(), &models.Draft{
		MediaType: models.MediaTypePoll,
		Poll:      &models.Poll{Question: "Q", Options: map[string]string{"option_a": "only one"}},
	})
	require.Error(t, err)
	assert.Equal(t, 0, calls)
}

func TestCreateContainerNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"bad media"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).CreateContainer(context.Background(), &models.Draft{
		MediaType: models.MediaTypeText,
		Text:      "hello",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating media container")
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "bad media")
}

func TestPublishContainer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1.0/17841400000/threads_publish", r.URL.Path)
		assert.Equal(t, "container-1", r.URL.Query().Get("creation_id"))
		w.Write([]byte(`{"id":"post-9"}`))
	}))
	defer server.Close()

	postID, err := newTestClient(t, server.URL).PublishContainer(context.Background(), "container-1")
	require.NoError(t, err)
	assert.Equal(t, "post-9", postID)
}

func TestPublishContainerFailureIncludesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("token expired"))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).PublishContainer(context.Background(), "container-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publishing post")
	assert.Contains(t, err.Error(), "token expired")
}

func TestExchangeTokenErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"message":"invalid app secret"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).ExchangeToken(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token exchange failed")
}
