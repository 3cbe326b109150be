// Package gateway wraps outgoing HTTP calls to the booking API: it attaches
// the current bearer token and transparently recovers, exactly once, from a
// token that expired mid-flight.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vmtran/tourbook/internal/errs"
	"github.com/vmtran/tourbook/internal/session"
)

// DefaultPublicEndpoints are paths served without credentials: auth
// bootstrap plus public tour browsing.
var DefaultPublicEndpoints = []string{
	"/api/authentication/login",
	"/api/authentication/register",
	"/api/authentication/forget-password",
	"/api/authentication/reset-password",
	"/odata/tour",
	"/api/tour",
}

// DefaultAuthOverrides are paths that live under a public prefix but still
// require credentials (rating and feedback sit under /api/tour).
var DefaultAuthOverrides = []string{
	"/api/tour/rating",
	"/api/tour/feedback",
}

// APIError is a non-2xx response from the server, carrying whatever message
// the body held. Callers interpret Status themselves.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// Config carries gateway construction parameters.
type Config struct {
	BaseURL         string
	HTTPClient      *http.Client // defaults to a 30s-timeout client
	PublicEndpoints []string     // defaults to DefaultPublicEndpoints
	AuthOverrides   []string     // defaults to DefaultAuthOverrides
	Logger          *zap.Logger
}

// Client is the authenticated API client. Safe for concurrent use.
type Client struct {
	baseURL   string
	http      *http.Client
	session   *session.Manager
	public    []string
	overrides []string
	log       *zap.Logger
}

// New constructs a Client bound to a session manager.
func New(sess *session.Manager, cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	pub := cfg.PublicEndpoints
	if pub == nil {
		pub = DefaultPublicEndpoints
	}
	ovr := cfg.AuthOverrides
	if ovr == nil {
		ovr = DefaultAuthOverrides
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		http:      hc,
		session:   sess,
		public:    pub,
		overrides: ovr,
		log:       log,
	}
}

// Get issues an authenticated GET and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues an authenticated POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put issues an authenticated PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Delete issues an authenticated DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// Do sends one logical JSON request. Non-public paths get a token refresh
// check before send and at most one refresh-and-resend after a 401; the
// second failure, whatever it is, propagates to the caller.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("gateway: encode %s %s: %w", method, path, err)
		}
	}
	return c.DoRaw(ctx, method, path, "application/json", payload, out)
}

// DoRaw sends a pre-encoded payload with an explicit content type. Used by
// Do and by multipart uploads; same credential and retry discipline.
func (c *Client) DoRaw(ctx context.Context, method, path, contentType string, payload []byte, out any) error {
	public := c.IsPublic(path)
	if !public {
		// Result deliberately ignored: the request is sent with whatever
		// token is current and the 401 path below handles a stale one.
		c.session.RefreshIfNeeded(ctx)
	}

	// attempt counter is per logical request; never shared across calls.
	for attempt := 0; ; attempt++ {
		resp, err := c.send(ctx, method, path, contentType, payload, public)
		if err != nil {
			return fmt.Errorf("gateway: %s %s: %w", method, path, err)
		}

		if resp.StatusCode == http.StatusUnauthorized && !public {
			drain(resp)
			if attempt > 0 {
				return fmt.Errorf("gateway: %s %s: %w", method, path, errs.ErrUnauthorized)
			}
			c.log.Debug("401 received, refreshing and retrying once",
				zap.String("method", method), zap.String("path", path))
			if !c.session.RefreshIfNeeded(ctx) {
				return fmt.Errorf("gateway: %s %s: %w", method, path, errs.ErrUnauthorized)
			}
			continue
		}

		return c.decode(resp, method, path, out)
	}
}

func (c *Client) send(ctx context.Context, method, path, contentType string, payload []byte, public bool) (*http.Response, error) {
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	if !public {
		if tok := c.session.AccessToken(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return c.http.Do(req)
}

func (c *Client) decode(resp *http.Response, method, path string, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: readMessage(resp.Body)}
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("gateway: %s %s: %w: %w", method, path, errs.ErrNotFound, apiErr)
		}
		return fmt.Errorf("gateway: %s %s: %w", method, path, apiErr)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("gateway: %s %s: read body: %w", method, path, err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("gateway: %s %s: decode body: %w", method, path, err)
	}
	return nil
}

// IsPublic reports whether path is on the unauthenticated allow-list.
// Matching is by exact path or path-prefix, tolerant of trailing slashes,
// against the path with the base URL and query string stripped. Auth
// overrides win over public prefixes.
func (c *Client) IsPublic(path string) bool {
	p := path
	if strings.HasPrefix(p, c.baseURL) {
		p = strings.TrimPrefix(p, c.baseURL)
	}
	if u, err := url.Parse(p); err == nil {
		p = u.Path
	}
	if matchAny(c.overrides, p) {
		return false
	}
	return matchAny(c.public, p)
}

func matchAny(endpoints []string, path string) bool {
	for _, e := range endpoints {
		if strings.HasSuffix(e, "/") {
			if path == strings.TrimRight(e, "/") || strings.HasPrefix(path, e) {
				return true
			}
			continue
		}
		if path == e || strings.HasPrefix(path, e+"/") {
			return true
		}
	}
	return false
}

func readMessage(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 4<<10))
	if err != nil {
		return ""
	}
	var m struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(b, &m) == nil && m.Message != "" {
		return m.Message
	}
	return strings.TrimSpace(string(b))
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	_ = resp.Body.Close()
}
