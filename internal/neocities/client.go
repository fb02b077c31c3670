// Package neocities is a minimal client for the neocities.org REST API:
// list the site's files, upload one, delete some. Errors are surfaced to the
// caller as-is; there is no retry policy here.
package neocities

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/imroc/req/v3"

	"github.com/neocities-sync/neocities-sync/internal/filetree"
	"github.com/neocities-sync/neocities-sync/internal/version"
)

const DefaultBaseURL = "https://neocities.org"

const (
	routeList   = "/api/list"
	routeUpload = "/api/upload"
	routeDelete = "/api/delete"
)

type Client struct {
	client *req.Client
}

type Option func(*Client)

// WithBaseURL points the client at a different API host (tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.client.SetBaseURL(baseURL)
	}
}

// New creates a client authenticated with the site's API key.
func New(apiKey string, opts ...Option) *Client {
	client := req.C().
		SetBaseURL(DefaultBaseURL).
		SetUserAgent(version.AppName + "/" + version.Version).
		SetTimeout(5 * time.Minute).
		SetCommonBearerAuthToken(apiKey)

	c := &Client{client: client}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List fetches the remote file listing as a tree. The remote listing is
// already filtered server-side.
func (c *Client) List(ctx context.Context) (*filetree.Tree, error) {
	var listResp listResponse
	var apiErr APIError
	slog.Debug("listing remote files")
	res, err := c.client.R().
		SetContext(ctx).
		SetSuccessResult(&listResp).
		SetErrorResult(&apiErr).
		Get(routeList)
	if err := handleAPIError(res, err, &apiErr, "list files"); err != nil {
		return nil, err
	}

	entries := make([]*filetree.Entry, 0, len(listResp.Files))
	for _, f := range listResp.Files {
		entries = append(entries, f.toEntry())
	}
	return filetree.New(entries...), nil
}

// Upload sends the file at localPath to remotePath on the site. The multipart
// field name carries the remote path, per the API contract.
func (c *Client) Upload(ctx context.Context, remotePath, localPath string) error {
	var apiErr APIError
	slog.Debug("uploading file", "remote", remotePath, "local", localPath)
	res, err := c.client.R().
		SetContext(ctx).
		SetFile(remotePath, localPath).
		SetErrorResult(&apiErr).
		Post(routeUpload)
	return handleAPIError(res, err, &apiErr, fmt.Sprintf("upload %q", remotePath))
}

// Delete removes files or directories from the site.
func (c *Client) Delete(ctx context.Context, paths ...string) error {
	form := url.Values{}
	for _, p := range paths {
		form.Add("filenames[]", p)
	}
	var apiErr APIError
	slog.Debug("deleting remote paths", "paths", paths)
	res, err := c.client.R().
		SetContext(ctx).
		SetFormDataFromValues(form).
		SetErrorResult(&apiErr).
		Post(routeDelete)
	return handleAPIError(res, err, &apiErr, fmt.Sprintf("delete %v", paths))
}
