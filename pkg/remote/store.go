package remote

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FileStore keeps templates, assets and documents in a local directory. It
// backs the CLI and tests the same way the HTTP client backs a deployment.
type FileStore struct {
	root string
	// AssetPrefix is prepended to stored asset paths to build content URLs.
	AssetPrefix string
	// Previews records every TriggerPreview call.
	Previews []string
}

// NewFileStore returns a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{root: filepath.Clean(dir), AssetPrefix: "/"}
}

var (
	_ SourceFetcher  = (*FileStore)(nil)
	_ AssetUploader  = (*FileStore)(nil)
	_ DocumentSaver  = (*FileStore)(nil)
	_ PreviewTrigger = (*FileStore)(nil)
)

// FetchSource reads path relative to the root.
func (s *FileStore) FetchSource(ctx context.Context, p string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	full, err := s.resolve(p)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("remote: read %s: %w", p, err)
	}
	return string(data), nil
}

// UploadAsset decodes dataURL and writes it under destPath.
func (s *FileStore) UploadAsset(ctx context.Context, destPath, fileName, dataURL string) (UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return UploadResult{}, err
	}
	if fileName == "" || strings.ContainsAny(fileName, `/\`) {
		return UploadResult{}, fmt.Errorf("remote: invalid asset name %q", fileName)
	}
	_, data, err := DecodeDataURL(dataURL)
	if err != nil {
		return UploadResult{}, err
	}
	rel := path.Join(strings.Trim(filepath.ToSlash(destPath), "/"), fileName)
	if err := s.write(rel, data); err != nil {
		return UploadResult{}, err
	}
	return UploadResult{ContentURL: strings.TrimRight(s.AssetPrefix, "/") + "/" + rel}, nil
}

// SaveDocument writes html to destPath.
func (s *FileStore) SaveDocument(ctx context.Context, destPath, html string) (SaveResult, error) {
	if err := ctx.Err(); err != nil {
		return SaveResult{}, err
	}
	if err := s.write(destPath, []byte(html)); err != nil {
		return SaveResult{Path: destPath}, err
	}
	return SaveResult{Path: destPath, Status: 200}, nil
}

// TriggerPreview records the request.
func (s *FileStore) TriggerPreview(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.Previews = append(s.Previews, p)
	return nil
}

func (s *FileStore) write(rel string, data []byte) error {
	full, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("remote: create directory for %s: %w", rel, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("remote: write %s: %w", rel, err)
	}
	return nil
}

// resolve maps a slash separated path into the root, refusing escapes.
func (s *FileStore) resolve(p string) (string, error) {
	clean := path.Clean("/" + filepath.ToSlash(p))
	if clean == "/" {
		return "", errors.New("remote: empty path")
	}
	return filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}
