package threads

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threads-autoposter/internal/config"
)

type tokenServer struct {
	expiresIn     time.Duration
	now           time.Time
	refreshCalls  int
	refreshedWith string
}

func newGuardFixture(t *testing.T, expiresIn time.Duration) (*Guard, *tokenServer, string) {
	t.Helper()
	ts := &tokenServer{expiresIn: expiresIn, now: time.Now()}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1.0/debug_token":
			fmt.Fprintf(w, `{"data":{"expires_at":%d}}`, ts.now.Add(ts.expiresIn).Unix())
		case "/v1.0/oauth/access_token":
			ts.refreshCalls++
			ts.refreshedWith = r.URL.Query().Get("fb_exchange_token")
			assert.Equal(t, "fb_exchange_token", r.URL.Query().Get("grant_type"))
			assert.Equal(t, "app-id", r.URL.Query().Get("client_id"))
			assert.Equal(t, "app-secret", r.URL.Query().Get("client_secret"))
			w.Write([]byte(`{"access_token":"fresh-token"}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	t.Cleanup(server.Close)

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("THREADS_ACCESS_TOKEN=stale-token\n"), 0600))

	creds := NewCredentialStore("stale-token", envFile)
	client := NewClient(&config.Config{
		ThreadsBaseURL: server.URL,
		APIVersion:     "v1.0",
		ThreadsUserID:  "17841400000",
		AppID:          "app-id",
		AppSecret:      "app-secret",
		HTTPTimeoutSec: 5,
	}, creds)

	guard := NewGuard(client, 2)
	guard.now = func() time.Time { return ts.now }
	return guard, ts, envFile
}

func TestGuardRefreshesOnExactThreshold(t *testing.T) {
	guard, ts, envFile := newGuardFixture(t, 2*24*time.Hour+time.Minute)

	refreshed := guard.EnsureFresh(context.Background())

	assert.True(t, refreshed)
	assert.Equal(t, 1, ts.refreshCalls)
	assert.Equal(t, "stale-token", ts.refreshedWith)
	assert.Equal(t, "fresh-token", guard.client.creds.Token())

	data, err := os.ReadFile(envFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "THREADS_ACCESS_TOKEN=fresh-token")
}

func TestGuardSkipsAboveThreshold(t *testing.T) {
	guard, ts, _ := newGuardFixture(t, 3*24*time.Hour+time.Minute)

	refreshed := guard.EnsureFresh(context.Background())

	assert.False(t, refreshed)
	assert.Equal(t, 0, ts.refreshCalls)
	assert.Equal(t, "stale-token", guard.client.creds.Token())
}

func TestGuardSkipsBelowThreshold(t *testing.T) {
	// The trigger is exact equality with the threshold: one remaining
	// day does not refresh even though the token is closer to expiry.
	guard, ts, _ := newGuardFixture(t, 24*time.Hour+time.Minute)

	refreshed := guard.EnsureFresh(context.Background())

	assert.False(t, refreshed)
	assert.Equal(t, 0, ts.refreshCalls)
}

func TestGuardToleratesIntrospectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	creds := NewCredentialStore("stale-token", filepath.Join(t.TempDir(), ".env"))
	client := NewClient(&config.Config{
		ThreadsBaseURL: server.URL,
		APIVersion:     "v1.0",
		ThreadsUserID:  "17841400000",
		HTTPTimeoutSec: 5,
	}, creds)

	refreshed := NewGuard(client, 2).EnsureFresh(context.Background())

	assert.False(t, refreshed)
	assert.Equal(t, "stale-token", creds.Token())
}
