// Package app wires the archive reader, the token exchanger and the store
// client into the upload and publish workflows.
package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/cwspublish/internal/archive"
	"github.com/vk/cwspublish/internal/auth"
	"github.com/vk/cwspublish/internal/report"
	"github.com/vk/cwspublish/internal/transport"
	"github.com/vk/cwspublish/internal/webstore"
)

// TokenExchanger turns credentials into an access token.
type TokenExchanger interface {
	Exchange(ctx context.Context, creds auth.Credentials) (string, error)
}

// Store is the subset of the store API the workflows call.
type Store interface {
	Upload(ctx context.Context, itemID string, blob *archive.Blob, accessToken string) (*webstore.Result, error)
	Publish(ctx context.Context, itemID, accessToken string, target webstore.Target) (*webstore.Result, error)
}

// App runs one workflow. It holds no state between runs besides its
// configuration and the shared HTTP client.
type App struct {
	config     *Config
	logger     *slog.Logger
	reporter   *report.Reporter
	httpClient *http.Client
	exchanger  TokenExchanger
	store      Store
}

// NewApp builds an App that reports to outW and errW and logs to errW.
func NewApp(outW, errW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, errW)
	httpClient := transport.New(transport.Options{})

	authOpts := []auth.Option{auth.WithHTTPClient(httpClient)}
	if cfg.TokenURL != "" {
		authOpts = append(authOpts, auth.WithTokenURL(cfg.TokenURL))
	}

	storeOpts := []webstore.Option{webstore.WithHTTPClient(httpClient)}
	if cfg.APIBaseURL != "" {
		storeOpts = append(storeOpts, webstore.WithBaseURL(cfg.APIBaseURL))
	}

	logger.Debug("App configured.", "command", cfg.Command, "extension_id", cfg.ExtensionID, "target", cfg.Target.String())
	return &App{
		config:     cfg,
		logger:     logger,
		reporter:   report.New(outW, errW),
		httpClient: httpClient,
		exchanger:  auth.NewExchanger(authOpts...),
		store:      webstore.NewClient(storeOpts...),
	}
}

// Close releases idle connections.
func (a *App) Close() {
	transport.Close(a.httpClient)
}
