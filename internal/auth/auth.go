// Package auth exchanges a long-lived OAuth2 refresh token for a short-lived
// Chrome Web Store access token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/vk/cwspublish/internal/ctxlog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	// Scope grants read/write access to the caller's store items.
	Scope = "https://www.googleapis.com/auth/chromewebstore"
	// RedirectURL is the out-of-band redirect registered for installed apps.
	RedirectURL = "urn:ietf:wg:oauth:2.0:oob"
)

var (
	// ErrMissingCredentials is returned before any network call when a
	// credential field is empty.
	ErrMissingCredentials = errors.New("missing oauth2 credentials")
	// ErrTokenExchange covers every failed exchange: transport errors, HTTP
	// errors and responses without an access token.
	ErrTokenExchange = errors.New("token exchange failed")
)

// Credentials are supplied by the caller and never persisted.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// Validate reports which fields are empty.
func (c Credentials) Validate() error {
	var missing []string
	if c.ClientID == "" {
		missing = append(missing, "client id")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "client secret")
	}
	if c.RefreshToken == "" {
		missing = append(missing, "refresh token")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrMissingCredentials, missing)
	}
	return nil
}

// Exchanger performs refresh-token grants.
type Exchanger struct {
	endpoint   oauth2.Endpoint
	httpClient *http.Client
}

// Option customizes an Exchanger.
type Option func(*Exchanger)

// WithHTTPClient sets the client used for the token request.
func WithHTTPClient(client *http.Client) Option {
	return func(e *Exchanger) {
		e.httpClient = client
	}
}

// WithTokenURL points the exchanger at a different token endpoint.
func WithTokenURL(tokenURL string) Option {
	return func(e *Exchanger) {
		e.endpoint.TokenURL = tokenURL
	}
}

// NewExchanger returns an exchanger for Google's authorization server.
func NewExchanger(opts ...Option) *Exchanger {
	e := &Exchanger{endpoint: google.Endpoint}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Exchange makes one token request and returns the access token. It never
// retries.
func (e *Exchanger) Exchange(ctx context.Context, creds Credentials) (string, error) {
	logger := ctxlog.FromContext(ctx)

	if err := creds.Validate(); err != nil {
		return "", err
	}

	cfg := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     e.endpoint,
		RedirectURL:  RedirectURL,
		Scopes:       []string{Scope},
	}

	if e.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, e.httpClient)
	}

	logger.Debug("Requesting access token.", "token_url", e.endpoint.TokenURL)
	token, err := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken}).Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			logger.Debug("Token endpoint rejected the request.", "error_code", retrieveErr.ErrorCode, "status", retrieveErr.Response.StatusCode)
		} else {
			logger.Debug("Token request failed.", "error", err)
		}
		return "", fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	if token == nil || token.AccessToken == "" {
		return "", fmt.Errorf("%w: response has no access token", ErrTokenExchange)
	}

	logger.Debug("Access token obtained.", "expiry", token.Expiry)
	return token.AccessToken, nil
}
