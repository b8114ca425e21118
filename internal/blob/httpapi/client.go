// Package httpapi implements the blob adapter against a remote
// blob-store REST API: PUT bytes keyed by owner, then GET the public
// download URL for the stored object.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/plantit/plantit/internal/domain/types"
	"github.com/plantit/plantit/internal/observability/logger"
)

// Client talks to the blob store over HTTP.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithTimeout sets the per-call HTTP timeout. Timeouts surface as
// StorageUnreachable.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client (tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a blob client for the store at baseURL.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload implements blob.Store. The store keys objects by owner, so a
// re-upload for the same owner overwrites.
func (c *Client) Upload(ctx context.Context, ownerUserID string, data []byte) (types.BlobRef, error) {
	log := logger.From(ctx).With(
		logger.Layer("adapter"),
		logger.Component("blob.httpapi"),
		logger.UserID(ownerUserID),
	)

	url := fmt.Sprintf("%s/o/%s", c.baseURL, ownerUserID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return "", types.NewStorageError(types.StorageUnknown, "build request", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug("blob upload failed", logger.Err(err))
		return "", types.NewStorageError(types.StorageUnreachable, "blob store unreachable", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		return types.BlobRef(ownerUserID), nil
	case resp.StatusCode == http.StatusInsufficientStorage || resp.StatusCode == http.StatusRequestEntityTooLarge:
		return "", types.NewStorageError(types.StorageQuotaExceeded, "storage quota exceeded", nil)
	case resp.StatusCode >= 500:
		return "", types.NewStorageError(types.StorageUnreachable, fmt.Sprintf("blob store returned %d", resp.StatusCode), nil)
	default:
		return "", types.NewStorageError(types.StorageUnknown, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}
}

type urlResponse struct {
	DownloadURL string `json:"downloadUrl"`
}

// ResolveURL implements blob.Store.
func (c *Client) ResolveURL(ctx context.Context, ref types.BlobRef) (string, error) {
	url := fmt.Sprintf("%s/o/%s/url", c.baseURL, ref)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", types.NewStorageError(types.StorageUnknown, "build request", err)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", types.NewStorageError(types.StorageUnreachable, "blob store unreachable", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fallthrough to decode below
	case resp.StatusCode == http.StatusNotFound:
		return "", types.NewStorageError(types.StorageNotFound, "blob not found", nil)
	case resp.StatusCode >= 500:
		return "", types.NewStorageError(types.StorageUnreachable, fmt.Sprintf("blob store returned %d", resp.StatusCode), nil)
	default:
		return "", types.NewStorageError(types.StorageUnknown, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	var ur urlResponse
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return "", types.NewStorageError(types.StorageUnknown, "decode url response", err)
	}
	return ur.DownloadURL, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
