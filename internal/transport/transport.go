// Package transport builds the single *http.Client shared by the token
// exchanger and the store client for one workflow run.
package transport

import (
	"net/http"
	"time"
)

// DefaultUserAgent is sent when Options.UserAgent is empty.
const DefaultUserAgent = "cwspublish"

// Options configures New.
type Options struct {
	// UserAgent overrides DefaultUserAgent.
	UserAgent string
}

// New returns a client with pooled connections. No client-level timeout is
// set; requests are bounded only by their context and the transport's own
// dial and handshake limits.
func New(opts Options) *http.Client {
	base := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	return &http.Client{Transport: &userAgentTransport{base: base, userAgent: ua}}
}

// Close releases idle connections held by a client built with New.
func Close(client *http.Client) {
	client.CloseIdleConnections()
}

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

// RoundTrip sets the User-Agent header unless the caller already did.
func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(clone)
}

// CloseIdleConnections forwards to the base transport so Close works through
// the wrapper.
func (t *userAgentTransport) CloseIdleConnections() {
	if c, ok := t.base.(interface{ CloseIdleConnections() }); ok {
		c.CloseIdleConnections()
	}
}
