package gviz

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultUserAgent = "sheetfolio/1.0"

// maxBodyBytes bounds one export response.
const maxBodyBytes = 8 << 20

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ClientConfig struct {
	UserAgent  string
	Timeout    time.Duration
	HTTPClient httpDoer
	Logger     *zap.Logger
}

type Client struct {
	userAgent  string
	httpClient httpDoer
	logger     *zap.Logger
}

// Body is the outcome of fetching one source. OK is false when the request
// failed; Err then carries the reason.
type Body struct {
	Text     string
	OK       bool
	Err      error
	Duration time.Duration
}

// Bodies maps source name to its fetch outcome.
type Bodies map[string]Body

func NewClient(cfg ClientConfig) *Client {
	doer := cfg.HTTPClient
	if doer == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		doer = &http.Client{Timeout: timeout}
	}

	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		userAgent:  userAgent,
		httpClient: doer,
		logger:     logger,
	}
}

// Fetch retrieves the raw body of one source. Any non-2xx status is an error.
func (c *Client) Fetch(ctx context.Context, source Source) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.URL, nil)
	if err != nil {
		return "", fmt.Errorf("create request for %s: %w", source.Name, err)
	}
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request %s failed: %w", source.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("request %s failed with status %d", source.Name, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read %s response: %w", source.Name, err)
	}
	return string(body), nil
}

// FetchAll starts one request per source at once and waits until every
// request has settled. A failed source is recorded as not OK and never
// cancels the others.
func (c *Client) FetchAll(ctx context.Context, sources []Source) Bodies {
	results := make([]Body, len(sources))

	var group errgroup.Group
	for i, source := range sources {
		group.Go(func() error {
			started := time.Now()
			text, err := c.Fetch(ctx, source)
			results[i] = Body{Text: text, OK: err == nil, Err: err, Duration: time.Since(started)}
			if err != nil {
				c.logger.Warn("fetch source failed",
					zap.String("source", source.Name),
					zap.Duration("duration", results[i].Duration),
					zap.Error(err),
				)
				return nil
			}
			c.logger.Debug("fetched source",
				zap.String("source", source.Name),
				zap.Int("bytes", len(text)),
				zap.Duration("duration", results[i].Duration),
			)
			return nil
		})
	}
	_ = group.Wait()

	bodies := make(Bodies, len(sources))
	for i, source := range sources {
		bodies[source.Name] = results[i]
	}
	return bodies
}

// Get returns the body text of name and whether it was fetched.
func (b Bodies) Get(name string) (string, bool) {
	body, ok := b[name]
	if !ok || !body.OK {
		return "", false
	}
	return body.Text, true
}
