package threads

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"threads-autoposter/internal/config"
	"threads-autoposter/internal/logger"
	"threads-autoposter/models"
)

// CredentialStore owns the mutable access token for a run and
// persists replacements to the flat KEY=value env file. The token is
// never ambient global state; everything that needs it goes through
// the store.
type CredentialStore struct {
	token   string
	envFile string
}

func NewCredentialStore(token, envFile string) *CredentialStore {
	return &CredentialStore{token: token, envFile: envFile}
}

func (s *CredentialStore) Token() string {
	return s.token
}

// Update replaces the in-memory token and rewrites the env file.
func (s *CredentialStore) Update(token string) error {
	if err := config.UpdateEnvFile(s.envFile, "THREADS_ACCESS_TOKEN", token); err != nil {
		return err
	}
	s.token = token
	return nil
}

// Client speaks the Threads Graph-style HTTP API. All parameters
// travel as query strings; the credential rides along as the
// access_token parameter.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiVersion string
	userID     string
	appID      string
	appSecret  string
	creds      *CredentialStore
}

func NewClient(cfg *config.Config, creds *CredentialStore) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.HTTPTimeoutSec) * time.Second,
		},
		baseURL:    strings.TrimRight(cfg.ThreadsBaseURL, "/"),
		apiVersion: cfg.APIVersion,
		userID:     cfg.ThreadsUserID,
		appID:      cfg.AppID,
		appSecret:  cfg.AppSecret,
		creds:      creds,
	}
}

type debugTokenResponse struct {
	Data struct {
		ExpiresAt int64 `json:"expires_at"`
	} `json:"data"`
}

// DebugToken introspects the current access token and returns its
// expiry as epoch seconds.
func (c *Client) DebugToken(ctx context.Context) (int64, error) {
	token := c.creds.Token()
	params := url.Values{}
	params.Set("input_token", token)
	params.Set("access_token", token)

	endpoint := fmt.Sprintf("%s/%s/debug_token?%s", c.baseURL, c.apiVersion, params.Encode())
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return 0, err
	}

	var parsed debugTokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, fmt.Errorf("decoding debug_token response: %w", err)
	}
	if parsed.Data.ExpiresAt == 0 {
		return 0, fmt.Errorf("debug_token response has no expiry: %s", strings.TrimSpace(string(body)))
	}
	return parsed.Data.ExpiresAt, nil
}

type exchangeTokenResponse struct {
	AccessToken string          `json:"access_token"`
	Error       json.RawMessage `json:"error,omitempty"`
}

// ExchangeToken performs the long-lived-token exchange using the app
// credentials and returns the refreshed access token.
func (c *Client) ExchangeToken(ctx context.Context) (string, error) {
	params := url.Values{}
	params.Set("grant_type", "fb_exchange_token")
	params.Set("client_id", c.appID)
	params.Set("client_secret", c.appSecret)
	params.Set("fb_exchange_token", c.creds.Token())

	endpoint := fmt.Sprintf("%s/%s/oauth/access_token?%s", c.baseURL, c.apiVersion, params.Encode())
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return "", err
	}

	var parsed exchangeTokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decoding access_token response: %w", err)
	}
	if parsed.AccessToken == "" {
		return "", fmt.Errorf("token exchange failed: %s", strings.TrimSpace(string(body)))
	}
	return parsed.AccessToken, nil
}

type containerResponse struct {
	ID string `json:"id"`
}

// CreateContainer creates a top-level container for the draft and
// returns its identifier. Parameter shaping is media-type specific;
// poll drafts with an option count outside [2,4] fail before any
// network call.
func (c *Client) CreateContainer(ctx context.Context, draft *models.Draft) (string, error) {
	params, err := draftParams(draft)
	if err != nil {
		return "", err
	}
	return c.createContainer(ctx, params)
}

// CreateItemContainer creates a carousel child container for one
// image URL. Item containers are never published directly.
func (c *Client) CreateItemContainer(ctx context.Context, imageURL string) (string, error) {
	return c.createContainer(ctx, carouselItemParams(imageURL))
}

// CreateCarouselContainer creates the parent container referencing the
// given item container ids.
func (c *Client) CreateCarouselContainer(ctx context.Context, children []string, text string) (string, error) {
	return c.createContainer(ctx, carouselParams(children, text))
}

func (c *Client) createContainer(ctx context.Context, params url.Values) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/%s/threads?%s&access_token=%s",
		c.baseURL, c.apiVersion, c.userID, params.Encode(), url.QueryEscape(c.creds.Token()))

	body, err := c.post(ctx, endpoint, "creating media container")
	if err != nil {
		return "", err
	}

	var parsed containerResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decoding container response: %w", err)
	}
	if parsed.ID == "" {
		return "", fmt.Errorf("container response has no id: %s", strings.TrimSpace(string(body)))
	}
	return parsed.ID, nil
}

// PublishContainer commits a created container as a live post and
// returns the published post id. A container is single use; it cannot
// be republished.
func (c *Client) PublishContainer(ctx context.Context, containerID string) (string, error) {
	params := url.Values{}
	params.Set("creation_id", containerID)

	endpoint := fmt.Sprintf("%s/%s/%s/threads_publish?%s&access_token=%s",
		c.baseURL, c.apiVersion, c.userID, params.Encode(), url.QueryEscape(c.creds.Token()))

	body, err := c.post(ctx, endpoint, "publishing post")
	if err != nil {
		return "", err
	}

	var parsed containerResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decoding publish response: %w", err)
	}
	if parsed.ID == "" {
		return "", fmt.Errorf("publish response has no id: %s", strings.TrimSpace(string(body)))
	}
	return parsed.ID, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return body, nil
}

func (c *Client) post(ctx context.Context, endpoint, action string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("error %s: %w", action, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error %s: %w", action, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error %s: reading response: %w", action, err)
	}
	if resp.StatusCode != http.StatusOK {
		logger.Error("Platform call failed",
			"action", action,
			"status", resp.StatusCode,
			"reason", http.StatusText(resp.StatusCode),
			"body", strings.TrimSpace(string(body)))
		return nil, fmt.Errorf("error %s: %d %s: %s",
			action, resp.StatusCode, http.StatusText(resp.StatusCode), strings.TrimSpace(string(body)))
	}
	return body, nil
}
