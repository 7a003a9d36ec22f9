package httpapi

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"net"
	nethttp "net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/http2"

	"github.com/rescale-labs/safebox/internal/errs"
	"github.com/rescale-labs/safebox/internal/logging"
	"github.com/rescale-labs/safebox/internal/ratelimit"
)

// defaultRateLimit and defaultBurst size the client-side token bucket
// guarding every request, well under what any reasonable server-side
// throttle would allow, so a burst of concurrent transfers backs off
// locally instead of drawing a wave of 429s.
const (
	defaultRateLimit = 10.0
	defaultBurst     = 30.0
)

// TokenSource supplies the bearer token for the Authorization header and
// refreshes it once on a persistent 401 (§6).
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
	Refresh(ctx context.Context) error
}

// LogoutFunc is invoked when a refreshed token still draws a 401, per
// the logout-callback design note (§9): the HTTP layer never imports
// the auth/session component directly, avoiding an import cycle.
type LogoutFunc func()

// DefaultCollaborator is the default Collaborator: a connection-pooled,
// HTTP/2-capable client wrapped in hashicorp/go-retryablehttp for
// transport-level retries, with the core's bearer-token and one-shot
// 401-refresh policy layered on top. Grounded on the teacher's
// internal/http client/transport tuning (internal/http/client.go,
// deleted here since its pool/timeout settings are reproduced directly
// below), with its hand-rolled ErrorType classifier replaced by
// retryablehttp's CheckRetry hook. retryablehttp reads a plain io.Reader
// request body into memory in full before the first attempt, so file
// bodies are buffered, not streamed.
type DefaultCollaborator struct {
	baseURL  string
	http     *retryablehttp.Client
	tok      TokenSource
	onLogout LogoutFunc
	log      *logging.Logger
	limiter  *ratelimit.RateLimiter
}

func NewDefaultCollaborator(baseURL string, tok TokenSource, onLogout LogoutFunc, log *logging.Logger) *DefaultCollaborator {
	if log == nil {
		log = logging.Nop()
	}
	transport := &nethttp.Transport{
		DialContext: (&net.Dialer{Timeout: 15 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		MaxIdleConns:          512,
		MaxIdleConnsPerHost:   100,
		MaxConnsPerHost:       100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	_ = http2.ConfigureTransport(transport)

	rc := retryablehttp.NewClient()
	rc.HTTPClient = &nethttp.Client{Transport: transport}
	rc.RetryMax = 5
	rc.Logger = nil
	// A 429 is handed back to do() instead of being retried here, so the
	// limiter can drain and cool down from the Retry-After header.
	rc.CheckRetry = func(ctx context.Context, resp *nethttp.Response, err error) (bool, error) {
		if err == nil && resp != nil && resp.StatusCode == nethttp.StatusTooManyRequests {
			return false, nil
		}
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}

	return &DefaultCollaborator{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		http:     rc,
		tok:      tok,
		onLogout: onLogout,
		log:      log,
		limiter:  ratelimit.NewRateLimiter(defaultRateLimit, defaultBurst),
	}
}

func (c *DefaultCollaborator) buildURL(req Request) string {
	u := c.baseURL + req.Path
	if len(req.Query) > 0 {
		v := url.Values{}
		for k, val := range req.Query {
			v.Set(k, val)
		}
		u += "?" + v.Encode()
	}
	return u
}

func (c *DefaultCollaborator) do(ctx context.Context, req Request, token string) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errs.Wrap(errs.KindTransport, "rate_limit_wait_cancelled", err)
	}

	var body io.Reader = req.Body
	if req.OnWrite != nil && req.Body != nil {
		body = &countingReader{r: req.Body, onWrite: req.OnWrite}
	}

	rreq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, c.buildURL(req), body)
	if err != nil {
		return nil, errs.Wrap(errs.KindProtocol, "build_request_failed", err)
	}
	for k, v := range req.Headers {
		rreq.Header.Set(k, v)
	}
	rreq.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(rreq)
	if err != nil {
		return nil, classifyTransportError(err)
	}

	if resp.StatusCode == nethttp.StatusTooManyRequests {
		c.limiter.Drain()
		c.limiter.SetCooldown(retryAfterDelay(resp.Header.Get("Retry-After")))
	}

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}
	return &Response{StatusCode: resp.StatusCode, Headers: headers, Body: resp.Body}, nil
}

// retryAfterDelay parses a Retry-After header (seconds form) into a
// cooldown duration, falling back to a conservative default when the
// header is absent or malformed.
func retryAfterDelay(header string) time.Duration {
	const fallback = 5 * time.Second
	if header == "" {
		return fallback
	}
	secs, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || secs < 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}

// Do issues req with the current access token, retrying once after a
// single token refresh on a 401, and invoking the logout callback if
// the refreshed token still draws one (§6).
func (c *DefaultCollaborator) Do(ctx context.Context, req Request) (*Response, error) {
	token, err := c.tok.AccessToken(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.KindAuth, "token_unavailable", err)
	}

	resp, err := c.do(ctx, req, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != nethttp.StatusUnauthorized {
		return resp, decodeAPIErrorIfAny(resp)
	}
	resp.Body.Close()

	if err := c.tok.Refresh(ctx); err != nil {
		if c.onLogout != nil {
			c.onLogout()
		}
		return nil, errs.ErrUnauthorized
	}
	token, err = c.tok.AccessToken(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.KindAuth, "token_unavailable", err)
	}
	resp, err = c.do(ctx, req, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == nethttp.StatusUnauthorized {
		resp.Body.Close()
		if c.onLogout != nil {
			c.onLogout()
		}
		return nil, errs.ErrUnauthorized
	}
	return resp, decodeAPIErrorIfAny(resp)
}

// decodeAPIErrorIfAny parses the §6 error body on non-2xx responses
// without consuming Body for callers that expect a 2xx.
func decodeAPIErrorIfAny(resp *Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	defer resp.Body.Close()
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Extra   string `json:"extra"`
		} `json:"error"`
		RequestID string `json:"request_id"`
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil || json.Unmarshal(data, &body) != nil {
		return errs.ErrNon2xxStatus
	}
	return &errs.APIError{Code: body.Error.Code, Message: body.Error.Message, Extra: body.Error.Extra, RequestID: body.RequestID}
}

func classifyTransportError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "tls") {
		return errs.Wrap(errs.KindTransport, "tls_failure", err)
	}
	return errs.Wrap(errs.KindTransport, "network_unreachable", err)
}

type countingReader struct {
	r       io.Reader
	onWrite ProgressFunc
	total   int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.total += int64(n)
	if n > 0 {
		c.onWrite(c.total)
	}
	return n, err
}
