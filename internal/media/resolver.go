package media

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"threads-autoposter/internal/config"
	"threads-autoposter/internal/logger"
)

// Resolver discovers rendered media assets by probing a numbered
// naming convention with HEAD requests. There is no directory listing;
// the convention is the only index. Any non-200 response (redirects
// included, they are not followed) means "absent", never an error.
type Resolver struct {
	httpClient   *http.Client
	imageBaseURL string
	videoBaseURL string
	maxProbes    int
}

func NewResolver(cfg *config.Config) *Resolver {
	return &Resolver{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.HTTPTimeoutSec) * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		imageBaseURL: strings.TrimRight(cfg.RenderBaseImageURL, "/"),
		videoBaseURL: strings.TrimRight(cfg.RenderBaseVideoURL, "/"),
		maxProbes:    cfg.MaxImageProbes,
	}
}

// ImagesForDay probes {base}/{day}_{i}.png for i = 1..maxProbes and
// returns the ordered prefix of URLs that exist, stopping at the first
// miss. The result may be empty.
func (r *Resolver) ImagesForDay(ctx context.Context, day int) []string {
	var urls []string
	for i := 1; i <= r.maxProbes; i++ {
		url := fmt.Sprintf("%s/%d_%d.png", r.imageBaseURL, day, i)
		if !r.exists(ctx, url) {
			break
		}
		urls = append(urls, url)
	}
	return urls
}

// VideoForDay probes the single fixed filename {base}/Video_{day}.mp4
// and returns the URL, or "" when the asset is absent.
func (r *Resolver) VideoForDay(ctx context.Context, day int) string {
	url := fmt.Sprintf("%s/Video_%d.mp4", r.videoBaseURL, day)
	if r.exists(ctx, url) {
		return url
	}
	return ""
}

func (r *Resolver) exists(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		logger.Error("Building probe request failed", "url", url, "error", err)
		return false
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		logger.Debug("Media probe failed", "url", url, "error", err)
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
