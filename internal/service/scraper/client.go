package scraper

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/hololive-member-sync/internal/constants"
	"github.com/kapu/hololive-member-sync/internal/domain"
	"github.com/kapu/hololive-member-sync/internal/util"
	"github.com/kapu/hololive-member-sync/pkg/errors"
)

const acceptLanguage = "ja,en;q=0.8,ko;q=0.6"

type Config struct {
	TalentsURL  string
	ScheduleURL string
	UserAgent   string
	Timeout     time.Duration
}

// Client downloads the official talent roster and the schedule page.
type Client struct {
	httpClient  *http.Client
	talentsURL  string
	scheduleURL string
	userAgent   string
	maxAttempts int
	logger      *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.ScraperConfig.Timeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = constants.ScraperConfig.UserAgent
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		talentsURL:  cfg.TalentsURL,
		scheduleURL: cfg.ScheduleURL,
		userAgent:   cfg.UserAgent,
		maxAttempts: constants.RetryConfig.MaxAttempts,
		logger:      logger,
	}
}

func (c *Client) FetchTalents(ctx context.Context) ([]*domain.OfficialTalent, error) {
	body, err := c.fetch(ctx, "talents", c.talentsURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	talents, err := ParseTalents(body, c.talentsURL)
	if err != nil {
		return nil, errors.NewSourceError("failed to parse talents page", "talents", c.talentsURL, err)
	}

	c.logger.Info("Talents fetched", zap.Int("count", len(talents)))
	return talents, nil
}

func (c *Client) FetchScheduleNames(ctx context.Context) ([]*domain.ScheduleName, error) {
	body, err := c.fetch(ctx, "schedule", c.scheduleURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	names, err := ParseScheduleNames(body)
	if err != nil {
		return nil, errors.NewSourceError("failed to parse schedule page", "schedule", c.scheduleURL, err)
	}

	c.logger.Info("Schedule names fetched", zap.Int("count", len(names)))
	return names, nil
}

// fetch GETs url, retrying transport errors and 5xx/429 responses with
// exponential backoff. The caller closes the returned body.
func (c *Client) fetch(ctx context.Context, source, url string) (io.ReadCloser, error) {
	var lastErr error

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := computeDelay(attempt - 1)
			c.logger.Warn("Retrying source fetch",
				zap.String("source", source),
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, errors.NewSourceError("failed to build request", source, url, err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept-Language", acceptLanguage)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = errors.NewSourceError("HTTP request failed", source, url, err)
			continue
		}

		if resp.StatusCode == http.StatusOK {
			return struct {
				io.Reader
				io.Closer
			}{io.LimitReader(resp.Body, constants.ScraperConfig.MaxBodySize), resp.Body}, nil
		}

		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		lastErr = errors.NewSourceError(
			fmt.Sprintf("unexpected status code %d: %s", resp.StatusCode, util.TruncateString(string(snippet), 120)),
			source, url, nil,
		)
		if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 {
			return nil, lastErr
		}
	}

	return nil, lastErr
}

func computeDelay(attempt int) time.Duration {
	base := constants.RetryConfig.BaseDelay * time.Duration(math.Pow(2, float64(attempt)))
	jitter := time.Duration(rand.Float64() * float64(constants.RetryConfig.Jitter))
	return base + jitter
}
