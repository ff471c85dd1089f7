package authfetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-rental-session/authapi"
	apperrors "github.com/jrsteele09/go-rental-session/internal/errors"
	"github.com/jrsteele09/go-rental-session/internal/utils"
	"github.com/jrsteele09/go-rental-session/session"
	"github.com/jrsteele09/go-rental-session/token"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const (
	HeaderRequestID = "X-Request-ID"

	refreshKey = "refresh"

	// refreshTimeout bounds a shared refresh, which outlives the callers
	// waiting on it.
	refreshTimeout = 30 * time.Second
)

// Refresher exchanges a refresh token for a new access token
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

// Client sends requests carrying the session's access token. It refreshes the
// token before use when it is missing or close to expiry, and once more when
// the server answers 401 or 403.
type Client struct {
	baseURL    string
	session    *session.Session
	refresher  Refresher
	httpClient *http.Client
	redirect   LoginRedirector
	metrics    *Metrics

	group      singleflight.Group
	refreshing atomic.Int32
	failedAt   atomic.Uint64 // session version left by the last terminal failure
}

// New creates a Client. A nil refresher calls POST /auth/refresh on baseURL.
func New(baseURL string, sess *session.Session, refresher Refresher, options ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		session:    sess,
		httpClient: http.DefaultClient,
	}
	for _, opt := range options {
		opt(c)
	}
	if refresher == nil {
		refresher = authapi.New(baseURL, c.httpClient)
	}
	c.refresher = refresher
	return c
}

func (c *Client) Session() *session.Session {
	return c.session
}

// State is the session's token state, including the transient refreshing and
// failed states only the client can observe.
func (c *Client) State() token.State {
	if c.refreshing.Load() > 0 {
		return token.StateRefreshing
	}
	if v := c.failedAt.Load(); v != 0 && v == c.session.Version() {
		return token.StateFailed
	}
	return c.session.State()
}

func (c *Client) Get(ctx context.Context, endpoint string, opts ...RequestOption) (*http.Response, error) {
	return c.Do(ctx, http.MethodGet, endpoint, nil, opts...)
}

func (c *Client) Delete(ctx context.Context, endpoint string, opts ...RequestOption) (*http.Response, error) {
	return c.Do(ctx, http.MethodDelete, endpoint, nil, opts...)
}

// Post JSON-encodes body; a nil body sends no payload
func (c *Client) Post(ctx context.Context, endpoint string, body any, opts ...RequestOption) (*http.Response, error) {
	return c.doJSON(ctx, http.MethodPost, endpoint, body, opts)
}

func (c *Client) Put(ctx context.Context, endpoint string, body any, opts ...RequestOption) (*http.Response, error) {
	return c.doJSON(ctx, http.MethodPut, endpoint, body, opts)
}

func (c *Client) Patch(ctx context.Context, endpoint string, body any, opts ...RequestOption) (*http.Response, error) {
	return c.doJSON(ctx, http.MethodPatch, endpoint, body, opts)
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, body any, opts []RequestOption) (*http.Response, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("[authfetch %s] encode body: %w", method, err)
		}
	}
	return c.Do(ctx, method, endpoint, payload, opts...)
}

// Do sends the request. Responses other than the authentication failures
// handled here are returned as they are, whatever their status. A terminal
// failure clears the session and returns an error wrapping
// ErrAuthenticationFailed with no response.
func (c *Client) Do(ctx context.Context, method, endpoint string, body []byte, opts ...RequestOption) (*http.Response, error) {
	resp, outcome, err := c.do(ctx, method, endpoint, body, applyRequestOptions(opts))
	c.metrics.request(method, outcome)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, ro *requestOptions) (*http.Response, string, error) {
	target := utils.ResolveURL(c.baseURL, endpoint)
	if ro.headers.Get(HeaderRequestID) == "" {
		ro.headers.Set(HeaderRequestID, uuid.NewString())
	}

	accessToken := c.session.AccessToken()
	if state := token.StateOf(accessToken, c.session.RefreshWindow()); !state.UsableWithoutRefresh() {
		log.Debug().Str("url", target).Str("state", state.String()).Msg("Refreshing access token before request")
		var err error
		if accessToken, err = c.refresh(ctx, TriggerProactive, accessToken); err != nil {
			return nil, outcomeOf(err), err
		}
	}

	resp, err := c.send(ctx, method, target, body, accessToken, ro)
	if err != nil {
		return nil, OutcomeTransportError, err
	}
	if !rejected(resp) {
		return resp, statusOutcome(resp), nil
	}
	discard(resp)

	log.Debug().Str("url", target).Int("status", resp.StatusCode).Msg("Request rejected, refreshing access token")
	c.metrics.retry()
	if accessToken, err = c.refresh(ctx, TriggerReactive, accessToken); err != nil {
		return nil, outcomeOf(err), err
	}

	resp, err = c.send(ctx, method, target, body, accessToken, ro)
	if err != nil {
		return nil, OutcomeTransportError, err
	}
	if rejected(resp) {
		discard(resp)
		cause := fmt.Errorf("%s %s rejected with status %d after refresh", method, target, resp.StatusCode)
		return nil, OutcomeAuthFailed, c.fail(ctx, cause)
	}
	return resp, statusOutcome(resp), nil
}

func (c *Client) send(ctx context.Context, method, target string, body []byte, accessToken string, ro *requestOptions) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("[authfetch %s] new request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, values := range ro.headers {
		req.Header[key] = append([]string(nil), values...)
	}
	bearer := oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}
	bearer.SetAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("[authfetch %s] %s: %w", method, target, err)
	}
	return resp, nil
}

// refresh returns a usable access token, replacing stale. Concurrent callers
// share one refresh call. The call runs to completion even if the caller that
// started it gives up; only that caller stops waiting.
func (c *Client) refresh(ctx context.Context, trigger, stale string) (string, error) {
	ch := c.group.DoChan(refreshKey, func() (any, error) {
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		return c.doRefresh(refreshCtx, trigger, stale)
	})

	select {
	case <-ctx.Done():
		return "", apperrors.Wrapf(ctx.Err(), "[authfetch refresh]")
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (c *Client) doRefresh(ctx context.Context, trigger, stale string) (string, error) {
	// another caller may already have replaced the token
	if current := c.session.AccessToken(); current != stale && !token.IsExpired(current) {
		return current, nil
	}

	c.refreshing.Add(1)
	defer c.refreshing.Add(-1)

	refreshToken := c.session.RefreshToken()
	if refreshToken == "" {
		c.metrics.refresh(trigger, ResultRejected)
		return "", c.fail(ctx, apperrors.ErrNoRefreshToken)
	}

	accessToken, err := c.refresher.Refresh(ctx, refreshToken)
	if err == nil && accessToken == "" {
		err = apperrors.MissingField("access_token")
	}
	if err != nil {
		if apperrors.Is(err, apperrors.ErrRefreshRejected) {
			c.metrics.refresh(trigger, ResultRejected)
		} else {
			c.metrics.refresh(trigger, ResultError)
		}
		return "", c.fail(ctx, err)
	}

	if err := c.session.ReplaceAccessToken(ctx, accessToken); err != nil {
		c.metrics.refresh(trigger, ResultError)
		return "", c.fail(ctx, err)
	}
	c.metrics.refresh(trigger, ResultSuccess)
	log.Debug().Str("trigger", trigger).Str("username", c.session.Username()).Msg("Access token refreshed")
	return accessToken, nil
}

// fail clears the session and reports a terminal authentication failure
func (c *Client) fail(ctx context.Context, cause error) error {
	if err := c.session.Clear(ctx); err != nil {
		log.Err(err).Msg("Failed to clear session after authentication failure")
	}
	c.failedAt.Store(c.session.Version())
	log.Warn().Err(cause).Msg("Authentication failed, session cleared")
	if c.redirect != nil {
		c.redirect(ctx, cause)
	}
	return fmt.Errorf("%w: %w", apperrors.ErrAuthenticationFailed, cause)
}

func rejected(resp *http.Response) bool {
	return resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}

func statusOutcome(resp *http.Response) string {
	if resp.StatusCode >= 400 {
		return OutcomeHTTPError
	}
	return OutcomeOK
}

func outcomeOf(err error) string {
	if apperrors.Is(err, apperrors.ErrAuthenticationFailed) {
		return OutcomeAuthFailed
	}
	return OutcomeTransportError
}
