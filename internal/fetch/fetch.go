package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Page is the raw result of fetching one URL.
type Page struct {
	Body        []byte
	ContentType string
}

// ErrUnsupportedContentType marks responses whose body is not extractable
// text (binary, video, audio, archives). Callers treat this as a skip, not a
// failure.
var ErrUnsupportedContentType = errors.New("unsupported content type")

// Client wraps http.Client with per-request timeouts, a bounded retry on
// transient errors, redirect caps, and a per-host politeness limiter
// consulted before every request.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// MaxAttempts includes the initial attempt. Minimum 1.
	MaxAttempts int
	// PerRequestTimeout bounds each request including retries' individual tries.
	PerRequestTimeout time.Duration
	// RedirectMaxHops caps redirect following to avoid loops. Zero means default (5).
	RedirectMaxHops int
	// Limiter, when set, enforces a minimum inter-request interval per host.
	Limiter *HostLimiter
}

// Get issues a GET with context and user-agent, retrying transient errors up
// to MaxAttempts. Non-text content types return ErrUnsupportedContentType.
func (c *Client) Get(ctx context.Context, rawURL string) (Page, error) {
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		page, err := c.tryOnce(ctx, rawURL)
		if err == nil {
			return page, nil
		}
		if !isTransient(err) || i == attempts-1 {
			return Page{}, err
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return Page{}, ctx.Err()
		case <-time.After(time.Duration(i+1) * 200 * time.Millisecond):
		}
	}
	return Page{}, lastErr
}

func (c *Client) tryOnce(ctx context.Context, rawURL string) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Page{}, fmt.Errorf("new request: %w", err)
	}
	if req.URL == nil || !isHTTPScheme(req.URL) {
		return Page{}, fmt.Errorf("unsupported URL scheme: %q", rawURL)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx, req.URL.Hostname()); err != nil {
			return Page{}, err
		}
	}

	if c.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(req.Context(), c.PerRequestTimeout)
		defer cancel()
		req = req.WithContext(ctx)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return Page{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return Page{}, fmt.Errorf("server error: %d", resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return Page{}, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !IsTextContentType(contentType) {
		return Page{}, fmt.Errorf("%w: %s", ErrUnsupportedContentType, contentType)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Page{}, fmt.Errorf("read body: %w", err)
	}
	return Page{Body: body, ContentType: contentType}, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		// Clone to attach our redirect policy without mutating the caller's client.
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{Timeout: c.PerRequestTimeout, CheckRedirect: c.checkRedirectFunc()}
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		if req.URL == nil || !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return strings.Contains(err.Error(), "server error:")
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// IsTextContentType reports whether a Content-Type can yield extractable
// text. HTML and XHTML get full extraction; plain text passes through.
// An absent header is treated as HTML, matching how servers that omit it
// almost always serve pages.
func IsTextContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if ct == "" {
		return true
	}
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch {
	case strings.HasPrefix(ct, "text/"):
		return true
	case ct == "application/xhtml+xml", ct == "application/xml":
		return true
	default:
		return false
	}
}
