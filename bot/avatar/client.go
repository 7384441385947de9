package avatar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m3rciful/avatarbot/core/logger"

	"log/slog"
)

const defaultFetchTimeout = 30 * time.Second

// StatusError reports a non-success HTTP status from the avatar API. The
// response body is never inspected for such responses.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("avatar api status %d", e.Code)
}

// Request describes one avatar generation call.
type Request struct {
	Style  string
	Seed   string
	Format string
	// BackgroundColor is a resolved 6-hex-digit code, or empty for no
	// explicit background.
	BackgroundColor string
}

// Client fetches generated avatars from a DiceBear-compatible HTTP API.
// Each Fetch performs exactly one request; failed fetches are not retried.
type Client struct {
	baseURL      string
	defaultStyle string
	http         *http.Client
}

// NewClient builds an avatar API client. defaultStyle names the one legacy
// style that receives an explicit transparency flag when no background color
// is chosen.
func NewClient(baseURL, defaultStyle string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		defaultStyle: defaultStyle,
		http:         &http.Client{Timeout: timeout},
	}
}

// URL renders the request URL for req without performing the call.
func (c *Client) URL(req Request) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	b.WriteByte('/')
	b.WriteString(url.PathEscape(req.Style))
	b.WriteByte('/')
	b.WriteString(url.PathEscape(req.Format))
	b.WriteString("?seed=")
	b.WriteString(url.QueryEscape(req.Seed))
	switch {
	case req.BackgroundColor != "":
		b.WriteString("&backgroundColor=")
		b.WriteString(url.QueryEscape(req.BackgroundColor))
	case strings.EqualFold(req.Style, c.defaultStyle):
		// Legacy behavior: the default style is requested with an
		// explicit transparent background unless a color was chosen.
		b.WriteString("&transparent=true")
	}
	return b.String()
}

// Fetch performs the avatar API call and returns the full response body.
// Context cancellation aborts the in-flight request.
func (c *Client) Fetch(ctx context.Context, req Request) ([]byte, error) {
	fetchURL := c.URL(req)
	start := time.Now()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("avatar: build request: %w", err)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		logger.AV.Error("fetch failed",
			slog.String("event", "fetch"),
			slog.String("status", "error"),
			slog.String("style", req.Style),
			slog.String("format", req.Format),
			slog.String("url", fetchURL),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("avatar: fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		logger.AV.Error("fetch failed",
			slog.String("event", "fetch"),
			slog.String("status", "error"),
			slog.String("style", req.Style),
			slog.String("format", req.Format),
			slog.Int("http_code", resp.StatusCode),
			slog.String("url", fetchURL),
		)
		return nil, &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("avatar: read body: %w", err)
	}

	logger.AV.Info("fetch ok",
		slog.String("event", "fetch"),
		slog.String("status", "ok"),
		slog.String("style", req.Style),
		slog.String("format", req.Format),
		slog.Int("http_code", resp.StatusCode),
		slog.Int("bytes", len(body)),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return body, nil
}
