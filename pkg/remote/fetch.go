package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"time"
)

// Fetcher implements SourceFetcher by delegating to file, fs.FS or HTTP
// strategies depending on the shape of the requested path.
type Fetcher struct {
	fs      fs.FS
	http    *http.Client
	timeout time.Duration
}

// FetcherOption customises a Fetcher.
type FetcherOption func(*Fetcher)

// WithFileSystem resolves relative, non-URL paths inside fsys.
func WithFileSystem(fsys fs.FS) FetcherOption {
	return func(f *Fetcher) {
		f.fs = fsys
	}
}

// WithFetchClient enables URL sources.
func WithFetchClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		if client != nil {
			clone := *client
			f.http = &clone
		}
	}
}

// WithFetchTimeout bounds URL requests.
func WithFetchTimeout(timeout time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.timeout = timeout
	}
}

// NewFetcher constructs a Fetcher.
func NewFetcher(options ...FetcherOption) *Fetcher {
	f := &Fetcher{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}
	return f
}

var _ SourceFetcher = (*Fetcher)(nil)

// FetchSource reads path as a URL, an fs.FS entry or a file.
func (f *Fetcher) FetchSource(ctx context.Context, path string) (string, error) {
	src, err := ParseSource(path)
	if err != nil {
		return "", err
	}
	if src.Kind() == SourceKindFile && f.fs != nil {
		src = SourceFromFS(path)
	}
	data, err := f.Load(ctx, src)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Load reads the raw bytes behind src.
func (f *Fetcher) Load(ctx context.Context, src Source) ([]byte, error) {
	if src == nil {
		return nil, errors.New("remote: source is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch src.Kind() {
	case SourceKindFile:
		data, err := os.ReadFile(src.Location())
		if err != nil {
			return nil, fmt.Errorf("remote: read %s: %w", src.Location(), err)
		}
		return data, nil
	case SourceKindFS:
		if f.fs == nil {
			return nil, errors.New("remote: file system not configured")
		}
		data, err := fs.ReadFile(f.fs, src.Location())
		if err != nil {
			return nil, fmt.Errorf("remote: read %s: %w", src.Location(), err)
		}
		return data, nil
	case SourceKindURL:
		if f.http == nil {
			return nil, errors.New("remote: http support disabled")
		}
		return getURL(ctx, f.http, src.Location(), f.timeout)
	default:
		return nil, errors.New("remote: unsupported source kind")
	}
}

func getURL(ctx context.Context, client *http.Client, url string, timeout time.Duration) ([]byte, error) {
	reqCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Op: "fetch", Path: url, Status: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}
