package app

import (
	"context"
	"fmt"

	"github.com/vk/cwspublish/internal/archive"
	"github.com/vk/cwspublish/internal/auth"
	"github.com/vk/cwspublish/internal/ctxlog"
	"github.com/vk/cwspublish/internal/webstore"
)

// Fixed failure messages for the two local failure kinds.
const (
	ZipErrorMessage  = "Unable to read the extension zip file. Check that the path exists and is readable."
	AuthErrorMessage = "Unable to obtain an access token. Check the client id, client secret and refresh token."
)

// Run executes the configured command.
func (a *App) Run(ctx context.Context) error {
	a.logger.Debug("App.Run started.", "command", a.config.Command)
	switch a.config.Command {
	case CommandPublish:
		return a.Publish(ctx)
	case CommandUpload:
		_, err := a.Upload(ctx)
		return err
	}
	return fmt.Errorf("unknown command %q", a.config.Command)
}

// Upload reads the archive, obtains an access token and uploads the archive.
// It returns the access token so a following publish can reuse it. Every
// failure is reported before it is returned.
func (a *App) Upload(ctx context.Context) (string, error) {
	ctx = ctxlog.With(ctxlog.WithLogger(ctx, a.logger), "extension_id", a.config.ExtensionID)
	logger := ctxlog.FromContext(ctx)

	blob, err := archive.Read(ctx, a.config.Source)
	if err != nil {
		logger.Debug("Stopping: archive not readable.", "error", err)
		return "", a.reporter.Failure(ZipErrorMessage, err)
	}

	token, err := a.exchanger.Exchange(ctx, auth.Credentials{
		ClientID:     a.config.ClientID,
		ClientSecret: a.config.ClientSecret,
		RefreshToken: a.config.RefreshToken,
	})
	if err != nil || token == "" {
		logger.Debug("Stopping: no access token.", "error", err)
		return "", a.reporter.Failure(AuthErrorMessage, err)
	}

	res, uploadErr := a.store.Upload(ctx, a.config.ExtensionID, blob, token)
	if err := a.reportResult("upload", res, uploadErr); err != nil {
		return "", err
	}
	return token, nil
}

// Publish uploads the archive and, only if that succeeded, publishes the
// item to the configured target.
func (a *App) Publish(ctx context.Context) error {
	token, err := a.Upload(ctx)
	if err != nil {
		return err
	}

	ctx = ctxlog.With(ctxlog.WithLogger(ctx, a.logger), "extension_id", a.config.ExtensionID)
	res, err := a.store.Publish(ctx, a.config.ExtensionID, token, a.config.Target)
	return a.reportResult("publish", res, err)
}

// reportResult prints the outcome of one store call and returns a non-nil
// error for anything but success.
func (a *App) reportResult(step string, res *webstore.Result, err error) error {
	if err != nil {
		return a.reporter.Failure(fmt.Sprintf("%s failed: %v", step, err), err)
	}
	if res == nil || !res.Success {
		if res == nil || res.Body == nil {
			code := 0
			if res != nil {
				code = res.StatusCode
			}
			return a.reporter.Failure(fmt.Sprintf("%s failed: empty response (HTTP %d)", step, code), nil)
		}
		return a.reporter.Failure(res, nil)
	}
	a.reporter.Success(res)
	return nil
}
