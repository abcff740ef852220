package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goliatone/go-market-cache/cache"
	"go.uber.org/zap"
)

// StatusError is a non-2xx reply from a remote endpoint.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// get fetches url and returns the body of a 2xx reply.
func (c *Client) get(ctx context.Context, op, url string) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, cache.NewError(cache.KindSourceFetch, op, "", fmt.Errorf("create request: %w", err))
	}

	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("source request failed", zap.String("url", url), zap.Error(err))
		return nil, cache.NewError(cache.KindSourceFetch, op, "", fmt.Errorf("do request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		c.logger.Warn("source replied with error status",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
		)
		return nil, cache.NewError(cache.KindSourceFetch, op, "", &StatusError{StatusCode: resp.StatusCode, URL: url})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, cache.NewError(cache.KindSourceFetch, op, "", fmt.Errorf("read response: %w", err))
	}

	c.logger.Debug("source fetched",
		zap.String("url", url),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return body, nil
}
