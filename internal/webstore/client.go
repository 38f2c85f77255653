// Package webstore talks to the Chrome Web Store publish API: it uploads a
// new package for an existing item and publishes the item to an audience.
package webstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/vk/cwspublish/internal/archive"
	"github.com/vk/cwspublish/internal/ctxlog"
)

// DefaultBaseURL hosts both the upload and the publish endpoints.
const DefaultBaseURL = "https://www.googleapis.com"

var (
	// ErrRequest marks a transport-level failure: the request could not be
	// sent or the response could not be read.
	ErrRequest = errors.New("store request failed")
	// ErrInvalidArgument is returned before any network call when the item
	// id, access token or archive is missing.
	ErrInvalidArgument = errors.New("invalid store request")
)

// Client issues store calls. It keeps no state between calls.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL replaces DefaultBaseURL.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

// WithHTTPClient sets the client used for store calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// NewClient returns a client for the public store API.
func NewClient(opts ...Option) *Client {
	c := &Client{baseURL: DefaultBaseURL, httpClient: http.DefaultClient}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload replaces the draft package of itemID with blob. The call is not
// idempotent on the store side: every call overwrites the draft.
func (c *Client) Upload(ctx context.Context, itemID string, blob *archive.Blob, accessToken string) (*Result, error) {
	logger := ctxlog.FromContext(ctx).With("item_id", itemID)

	if blob == nil {
		return &Result{}, fmt.Errorf("%w: no archive", ErrInvalidArgument)
	}
	if err := checkArgs(itemID, accessToken); err != nil {
		return &Result{}, err
	}

	endpoint := fmt.Sprintf("%s/upload/chromewebstore/v1.1/items/%s?%s",
		c.baseURL, url.PathEscape(itemID), url.Values{"uploadType": {"media"}}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(blob.Data))
	if err != nil {
		return &Result{}, fmt.Errorf("%w: failed to create upload request: %v", ErrRequest, err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	logger.Info("Uploading package.", "source", blob.Path, "size", blob.Size())
	res, err := c.do(req, accessToken, UploadSucceeded)
	if err != nil {
		return res, err
	}

	if resp, ok := decode[UploadResponse](res.Body); ok {
		logger.Info("Upload finished.", "status", res.StatusCode, "upload_state", resp.UploadState)
		if resp.UploadState == UploadStateInProgress {
			logger.Warn("Package accepted but still being processed by the store.")
		}
		for _, itemErr := range resp.ItemError {
			logger.Error("Store reported an item error.", "error_code", itemErr.ErrorCode, "detail", itemErr.ErrorDetail)
		}
	} else {
		logger.Warn("Upload response has no readable body.", "status", res.StatusCode)
	}
	return res, nil
}

// Publish makes the current draft of itemID visible to target.
func (c *Client) Publish(ctx context.Context, itemID, accessToken string, target Target) (*Result, error) {
	logger := ctxlog.FromContext(ctx).With("item_id", itemID, "target", target.String())

	if err := checkArgs(itemID, accessToken); err != nil {
		return &Result{}, err
	}

	endpoint := fmt.Sprintf("%s/chromewebstore/v1.1/items/%s/publish?%s",
		c.baseURL, url.PathEscape(itemID), url.Values{"publishTarget": {target.String()}}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return &Result{}, fmt.Errorf("%w: failed to create publish request: %v", ErrRequest, err)
	}

	logger.Info("Publishing item.")
	res, err := c.do(req, accessToken, PublishSucceeded)
	if err != nil {
		return res, err
	}

	if resp, ok := decode[PublishResponse](res.Body); ok {
		logger.Info("Publish finished.", "status", res.StatusCode, "publish_status", resp.Status, "detail", resp.StatusDetail)
	} else {
		logger.Warn("Publish response has no readable body.", "status", res.StatusCode)
	}
	return res, nil
}

// do sends req with bearer auth. Success requires a 2xx status and a body that
// satisfies accept.
func (c *Client) do(req *http.Request, accessToken string, accept func([]byte) bool) (*Result, error) {
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("x-goog-api-version", "2")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Result{}, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Result{StatusCode: resp.StatusCode}, fmt.Errorf("%w: failed to read response body: %v", ErrRequest, err)
	}
	if len(body) == 0 {
		body = nil
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300 && accept(body)
	return &Result{Success: ok, StatusCode: resp.StatusCode, Body: body}, nil
}

func checkArgs(itemID, accessToken string) error {
	if itemID == "" {
		return fmt.Errorf("%w: empty item id", ErrInvalidArgument)
	}
	if accessToken == "" {
		return fmt.Errorf("%w: empty access token", ErrInvalidArgument)
	}
	return nil
}
