// Package pinboard submits bookmarks through the Pinboard posts/add API.
// https://pinboard.in/api/
package pinboard

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/MrSnakeDoc/pinsync/internal/domain"
	"github.com/MrSnakeDoc/pinsync/internal/logger"
	"github.com/MrSnakeDoc/pinsync/internal/utils"
)

// StatusError reports a non-200 answer from the Pinboard API. It is never
// fatal to a run; the orchestrator records it and moves on.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("pinboard returned status %d", e.StatusCode)
}

type Client struct {
	baseURL   string
	token     string
	dryRun    bool
	rateDelay time.Duration
	http      *http.Client
	logger    logger.Logger
}

func NewClient(baseURL, token string, dryRun bool, rateDelay, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL:   baseURL,
		token:     token,
		dryRun:    dryRun,
		rateDelay: rateDelay,
		http:      &http.Client{Timeout: timeout},
		logger:    log,
	}
}

// Add submits one bookmark. Existing bookmarks at the same URL are never
// overwritten. After every real submission attempt, success or not, the
// client pauses for the configured delay to respect Pinboard's rate limit;
// the delay is unconditional per call, not adaptive.
//
// In dry-run mode the derived fields are logged instead and no network call
// or delay happens.
func (c *Client) Add(ctx context.Context, sub domain.Submission) error {
	if c.dryRun {
		c.logger.Info("dry run: would add bookmark",
			logger.String("title", sub.Description),
			logger.String("url", sub.URL),
			logger.String("extended", sub.Extended),
			logger.String("tags", sub.Tags),
			logger.String("dt", sub.CreatedAt))
		return nil
	}
	defer time.Sleep(c.rateDelay)

	replace := "no"
	if !sub.NoReplace {
		replace = "yes"
	}

	params := url.Values{}
	params.Set("auth_token", c.token)
	params.Set("format", "json")
	params.Set("url", sub.URL)
	params.Set("description", sub.Description)
	params.Set("extended", sub.Extended)
	params.Set("tags", sub.Tags)
	params.Set("replace", replace)
	params.Set("dt", sub.CreatedAt)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to build pinboard request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("pinboard request failed: %w", err)
	}
	utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("failed to add bookmark",
			logger.String("title", sub.Description),
			logger.Int("status", resp.StatusCode))
		return &StatusError{StatusCode: resp.StatusCode}
	}

	c.logger.Info("bookmark added",
		logger.String("title", sub.Description),
		logger.String("url", sub.URL))
	return nil
}
