package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"studybuddy/config"
	"studybuddy/internal/domain/service"

	"github.com/pkg/errors"
)

// fallbackClient calls the server's email-fallback endpoint with a bearer
// token. It is deliberately separate from the pipeline: reconciliation never
// participates in the refresh cycle, it simply skips its pass when no valid
// token is at hand.
type fallbackClient struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewFallbackNotifier is the constructor for fallbackClient.
func NewFallbackNotifier(cfg *config.Config, logger *slog.Logger) service.FallbackNotifier {
	return &fallbackClient{
		url:        cfg.API.BaseURL + cfg.API.FallbackPath,
		httpClient: &http.Client{Timeout: cfg.API.RequestTimeout},
		logger:     logger,
	}
}

func (c *fallbackClient) CheckEmailFallback(ctx context.Context, bearer string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader("{}"))
	if err != nil {
		return errors.Wrap(err, "failed to build fallback request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "fallback request failed")
	}
	defer resp.Body.Close()

	// The response content is logged, never parsed into the trigger decision.
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	c.logger.Info("Email fallback check completed",
		slog.Int("status", resp.StatusCode),
		slog.String("response", strings.TrimSpace(string(body))),
		slog.Time("at", time.Now()))

	return nil
}
