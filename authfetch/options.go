package authfetch

import (
	"context"
	"net/http"
)

// LoginRedirector is called once per terminal authentication failure, after
// the session has been cleared.
type LoginRedirector func(ctx context.Context, err error)

type Option func(*Client)

// WithHTTPClient sets the client used for requests and, when no Refresher is
// given, for refresh calls.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func WithLoginRedirector(redirect LoginRedirector) Option {
	return func(c *Client) {
		c.redirect = redirect
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}

type requestOptions struct {
	headers http.Header
}

// RequestOption customises a single request
type RequestOption func(*requestOptions)

// WithHeader sets a request header. Authorization is always replaced by the
// session's bearer token.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		o.headers.Set(key, value)
	}
}

// WithHeaders merges h into the request headers
func WithHeaders(h http.Header) RequestOption {
	return func(o *requestOptions) {
		for key, values := range h {
			o.headers.Del(key)
			for _, v := range values {
				o.headers.Add(key, v)
			}
		}
	}
}

func applyRequestOptions(opts []RequestOption) *requestOptions {
	o := &requestOptions{headers: http.Header{}}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
