package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/careercompass/compass/internal/model"
)

const (
	defaultUserAgent = "compass/0.1"
	defaultTimeout   = 30 * time.Second
	maxBodyBytes     = 4 << 20
)

// Client talks to the CareerCompass backend. Every call funnels through
// Request, which attaches JSON headers and the session cookie and converts
// every failure into a typed error. It performs no retries.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	logger    *slog.Logger
}

// Ensure Client satisfies the interfaces the synchronizer depends on.
var (
	_ model.ItemSaver       = (*Client)(nil)
	_ model.SavedItemLister = (*Client)(nil)
)

// NewClient builds a Client for baseURL ("host:port" or a full URL). When
// httpClient is nil a default one is created; a cookie jar is always present
// so the session credential is forwarded on every request.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	var hc http.Client
	if httpClient != nil {
		hc = *httpClient
	} else {
		hc.Timeout = defaultTimeout
	}
	if hc.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		hc.Jar = jar
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		baseURL:   base,
		http:      &hc,
		userAgent: defaultUserAgent,
		logger:    logger,
	}, nil
}

// BaseURL returns the resolved backend root.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// Cookies returns the session cookies currently held for the backend.
func (c *Client) Cookies() []*http.Cookie {
	return c.http.Jar.Cookies(c.baseURL)
}

// SetCookies seeds the jar, typically from a persisted session.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	c.http.Jar.SetCookies(c.baseURL, cookies)
}

// envelope is the common {success, message} shape. Some error responses use
// "error" instead of "message".
type envelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (e envelope) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

func (e envelope) rejected() bool {
	return e.Success != nil && !*e.Success
}

// Request sends body as JSON to path and decodes the JSON response into dest.
// dest may be nil for endpoints whose body is ignored. Errors are
// *model.NetworkError or, when the server explicitly answered success:false,
// *model.ServerRejection.
func (c *Client) Request(ctx context.Context, method, path string, body, dest any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &model.NetworkError{Path: path, Message: "could not encode request", Err: err}
		}
		reader = bytes.NewReader(b)
	}

	reqURL := c.baseURL.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return &model.NetworkError{Path: path, Message: "could not create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &model.NetworkError{Path: path, Message: "request failed", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &model.NetworkError{Path: path, Message: "could not read response", Err: err}
	}

	c.logger.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env envelope
		_ = json.Unmarshal(raw, &env)
		if env.rejected() {
			return &model.ServerRejection{Path: path, Message: env.text()}
		}
		msg := env.text()
		if msg == "" {
			msg = fmt.Sprintf("server returned HTTP %d", resp.StatusCode)
		}
		return &model.NetworkError{
			Path:    path,
			Message: msg,
			Err: &model.HTTPError{
				StatusCode: resp.StatusCode,
				RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
				Err:        errors.New(http.StatusText(resp.StatusCode)),
			},
		}
	}

	if dest == nil || len(bytes.TrimSpace(raw)) == 0 {
		if dest != nil {
			return &model.NetworkError{Path: path, Message: "empty response body"}
		}
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return &model.NetworkError{Path: path, Message: "response was not valid JSON", Err: err}
	}
	return nil
}

// withFallback fills an empty rejection message with the caller's default.
func withFallback(err error, fallback string) error {
	var rej *model.ServerRejection
	if errors.As(err, &rej) && rej.Message == "" {
		rej.Message = fallback
	}
	return err
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("base url is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url %q has no host", raw)
	}
	u.Path = "/"
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds format (e.g. "120"). Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
