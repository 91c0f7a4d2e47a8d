package threads

import (
	"context"
	"time"

	"threads-autoposter/internal/logger"
)

// Guard keeps the access credential fresh before a publish attempt.
// Freshness is best effort: introspection or refresh failing is logged
// and the pipeline continues with the existing, possibly-stale token.
type Guard struct {
	client        *Client
	thresholdDays int
	now           func() time.Time
}

func NewGuard(client *Client, thresholdDays int) *Guard {
	return &Guard{
		client:        client,
		thresholdDays: thresholdDays,
		now:           time.Now,
	}
}

// EnsureFresh introspects the token and refreshes it when the
// remaining lifetime in whole days equals the configured threshold.
// The trigger is exact equality, not "at or below": this reproduces
// the observed refresh cadence of the deployed system and changing it
// to <= would alter when refreshes fire. Returns whether a refresh
// happened.
func (g *Guard) EnsureFresh(ctx context.Context) bool {
	expiresAt, err := g.client.DebugToken(ctx)
	if err != nil {
		logger.Warn("Token introspection failed, continuing with existing token", "error", err)
		return false
	}

	remainingDays := int((expiresAt - g.now().Unix()) / 86400)
	logger.Info("Access token checked",
		"expires_at", time.Unix(expiresAt, 0).Format("2006-01-02 15:04:05"),
		"remaining_days", remainingDays)

	if remainingDays != g.thresholdDays {
		logger.Info("Access token is valid")
		return false
	}

	logger.Info("Access token near expiry, refreshing")
	newToken, err := g.client.ExchangeToken(ctx)
	if err != nil {
		logger.Warn("Token refresh failed, continuing with existing token", "error", err)
		return false
	}
	if err := g.client.creds.Update(newToken); err != nil {
		logger.Warn("Persisting refreshed token failed, continuing with existing token", "error", err)
		return false
	}

	logger.Info("Access token refreshed and persisted")
	return true
}
