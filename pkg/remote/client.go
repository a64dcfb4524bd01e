package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxErrorBody = 512

// Client talks to the document service over HTTP:
//
//	GET  {endpoint}/sources/{path}    authoritative template source
//	POST {endpoint}/assets            {path, fileName, dataUrl} -> {contentUrl}
//	PUT  {endpoint}/documents/{path}  composed HTML
//	POST {endpoint}/previews          {path}
type Client struct {
	endpoint string
	token    string
	http     *http.Client
	timeout  time.Duration
	logger   *slog.Logger
}

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithToken sends token as a bearer credential.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient supplies the underlying HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			clone := *client
			c.http = &clone
		}
	}
}

// WithTimeout bounds each request.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithClientLogger routes request diagnostics to logger.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient constructs a Client for endpoint.
func NewClient(endpoint string, options ...ClientOption) (*Client, error) {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return nil, errors.New("remote: endpoint is required")
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("remote: invalid endpoint %q: %w", endpoint, err)
	}
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c, nil
}

var (
	_ SourceFetcher  = (*Client)(nil)
	_ AssetUploader  = (*Client)(nil)
	_ DocumentSaver  = (*Client)(nil)
	_ PreviewTrigger = (*Client)(nil)
)

// FetchSource implements SourceFetcher.
func (c *Client) FetchSource(ctx context.Context, path string) (string, error) {
	body, err := c.do(ctx, "fetch", path, http.MethodGet, c.url("sources", path), nil, "")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// UploadAsset implements AssetUploader.
func (c *Client) UploadAsset(ctx context.Context, destPath, fileName, dataURL string) (UploadResult, error) {
	payload, err := json.Marshal(map[string]string{
		"path":     destPath,
		"fileName": fileName,
		"dataUrl":  dataURL,
	})
	if err != nil {
		return UploadResult{}, fmt.Errorf("remote: encode upload: %w", err)
	}
	body, err := c.do(ctx, "upload", destPath+"/"+fileName, http.MethodPost, c.url("assets", ""), payload, "application/json")
	if err != nil {
		return UploadResult{}, err
	}
	var result UploadResult
	if err := json.Unmarshal(body, &result); err != nil {
		return UploadResult{}, fmt.Errorf("remote: decode upload response: %w", err)
	}
	if result.ContentURL == "" {
		return UploadResult{}, fmt.Errorf("remote: upload %s: response has no content URL", fileName)
	}
	return result, nil
}

// SaveDocument implements DocumentSaver.
func (c *Client) SaveDocument(ctx context.Context, destPath, html string) (SaveResult, error) {
	if _, err := c.do(ctx, "save", destPath, http.MethodPut, c.url("documents", destPath), []byte(html), "text/html; charset=utf-8"); err != nil {
		return SaveResult{Path: destPath, Status: StatusOf(err)}, err
	}
	return SaveResult{Path: destPath, Status: http.StatusOK}, nil
}

// TriggerPreview implements PreviewTrigger.
func (c *Client) TriggerPreview(ctx context.Context, path string) error {
	payload, err := json.Marshal(map[string]string{"path": path})
	if err != nil {
		return fmt.Errorf("remote: encode preview: %w", err)
	}
	_, err = c.do(ctx, "preview", path, http.MethodPost, c.url("previews", ""), payload, "application/json")
	return err
}

func (c *Client) url(collection, path string) string {
	u := c.endpoint + "/" + collection
	if path = strings.Trim(path, "/"); path != "" {
		segments := strings.Split(path, "/")
		for i, s := range segments {
			segments[i] = url.PathEscape(s)
		}
		u += "/" + strings.Join(segments, "/")
	}
	return u
}

func (c *Client) do(ctx context.Context, op, path, method, target string, payload []byte, contentType string) ([]byte, error) {
	reqCtx := ctx
	var cancel context.CancelFunc
	if c.timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("remote: %s %s: %w", op, path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote: %s %s: %w", op, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("remote: %s %s: read body: %w", op, path, err)
	}
	c.logger.Debug("remote request",
		slog.String("op", op),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := strings.TrimSpace(string(data))
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, &StatusError{Op: op, Path: path, Status: resp.StatusCode, Body: snippet}
	}
	return data, nil
}
