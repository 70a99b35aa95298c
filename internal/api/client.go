// Package api is the typed boundary to the remote blogging platform API.
//
// One method per endpoint, one response struct per shape. Responses are
// decoded and normalized here so the layers above never touch the wire
// format's quirks (profile-as-array, nested comment authors, the
// {success,data} feed envelope).
//
// Authorization rules:
//   - The bearer token is attached whenever the session holds one.
//   - A protected call without a token fails locally with
//     apperror.ErrUnauthorized before any I/O happens.
//   - A 401 from the server means the credential was rejected after being
//     accepted locally; the client forces a logout so every view drops its
//     authenticated rendering.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/sakif/blogkit/internal/apperror"
	"github.com/sakif/blogkit/internal/session"
)

const defaultTimeout = 15 * time.Second

// Client talks to the platform API on behalf of one session.
type Client struct {
	baseURL string
	http    *http.Client
	session *session.Session
	limiter *rate.Limiter
	logger  *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP client, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRateLimit throttles outgoing requests to rps with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// New creates a Client for the API at baseURL, authenticating from sess.
func New(baseURL string, sess *session.Session, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		session: sess,
		limiter: rate.NewLimiter(rate.Limit(20), 40),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do performs one request/response cycle.
//
// body (if non-nil) is JSON-encoded; out (if non-nil) receives the decoded
// response body when the status is one of wantStatus. protected gates the
// call on a locally present token.
func (c *Client) do(ctx context.Context, method, path string, body, out any, protected bool, wantStatus ...int) error {
	token := c.session.Token()
	if protected && token == "" {
		return apperror.Unauthorized("please log in to continue")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("api: waiting for rate limiter: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("api: building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperror.APIFailure(0, fmt.Sprintf("request to %s failed: %v", path, err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperror.APIFailure(resp.StatusCode, fmt.Sprintf("reading response from %s: %v", path, err))
	}

	for _, want := range wantStatus {
		if resp.StatusCode == want {
			if out == nil || len(bytes.TrimSpace(raw)) == 0 {
				return nil
			}
			if err := json.Unmarshal(raw, out); err != nil {
				return apperror.APIFailure(resp.StatusCode,
					fmt.Sprintf("unexpected response shape from %s: %v", path, err))
			}
			return nil
		}
	}

	if resp.StatusCode == http.StatusUnauthorized && protected {
		// Server-side credential rejection: force the logout the original
		// never performed, so stale tokens cannot linger.
		c.logger.Warn("credential rejected by server, ending session", slog.String("path", path))
		c.session.Logout()
		return apperror.Unauthorized("your session has expired, please log in again")
	}

	c.logger.Debug("api call failed",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
	)
	return apperror.APIFailure(resp.StatusCode, payloadMessage(raw))
}

// payloadMessage digs the most specific human-readable message out of an
// error response body. Servers answer with {"message":...}, {"error":...},
// a bare JSON string, or plain text.
func payloadMessage(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ""
	}

	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}

	var bare string
	if err := json.Unmarshal(trimmed, &bare); err == nil {
		return bare
	}

	if !bytes.HasPrefix(trimmed, []byte("{")) && !bytes.HasPrefix(trimmed, []byte("[")) {
		return string(trimmed)
	}
	return ""
}
