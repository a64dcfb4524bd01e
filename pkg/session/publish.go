package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sort"

	"github.com/goliatone/go-daas/pkg/formdata"
	"github.com/goliatone/go-daas/pkg/remote"
)

// PublishResult summarises a Publish call.
type PublishResult struct {
	HTML string
	Save remote.SaveResult
	// Uploaded maps image keys to their new content URLs.
	Uploaded map[string]string
	// FailedUploads lists image keys whose upload failed; they stay unfilled.
	FailedUploads []string
	Previewed     bool
}

// Publish uploads pending images, composes, saves to destPath and triggers a
// preview refresh, in that order. Upload failures are logged and leave the
// image unfilled; any later failure ends the call.
func (s *Session) Publish(ctx context.Context, destPath string) (PublishResult, error) {
	if s.saver == nil {
		return PublishResult{}, errors.New("session: no document saver configured")
	}
	s.Sync()

	result := PublishResult{Uploaded: map[string]string{}}
	if err := s.uploadImages(ctx, destPath, &result); err != nil {
		return result, err
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	html, err := s.compose(ctx, result.Uploaded)
	if err != nil {
		return result, err
	}
	result.HTML = html

	if err := ctx.Err(); err != nil {
		return result, err
	}
	saved, err := s.saver.SaveDocument(ctx, destPath, html)
	result.Save = saved
	if err != nil {
		s.logger.Warn("save failed",
			slog.String("path", destPath),
			slog.Int("status", remote.StatusOf(err)),
			slog.Any("error", err))
		return result, fmt.Errorf("session: save %s: %w", destPath, err)
	}

	if s.preview != nil {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := s.preview.TriggerPreview(ctx, destPath); err != nil {
			return result, fmt.Errorf("session: preview %s: %w", destPath, err)
		}
		result.Previewed = true
	}
	return result, nil
}

func (s *Session) uploadImages(ctx context.Context, destPath string, result *PublishResult) error {
	s.mu.Lock()
	pending := map[string]formdata.Image{}
	for key, value := range s.data {
		if value.Image != nil && value.Image.Pending() {
			pending[key] = *value.Image
		}
	}
	s.mu.Unlock()
	if len(pending) == 0 {
		return nil
	}

	keys := make([]string, 0, len(pending))
	for key := range pending {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	assetDir := path.Join(path.Dir(destPath), "assets")
	refreshed := formdata.Data{}
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		img := pending[key]
		if s.uploader == nil {
			s.logger.Warn("image upload skipped, no uploader", slog.String("key", key))
			result.FailedUploads = append(result.FailedUploads, key)
			continue
		}
		name := img.FileName
		if name == "" {
			name = key
		}
		uploaded, err := s.uploader.UploadAsset(ctx, assetDir, name, img.DataURL)
		if err != nil {
			s.logger.Warn("image upload failed",
				slog.String("key", key),
				slog.String("file", name),
				slog.Any("error", err))
			result.FailedUploads = append(result.FailedUploads, key)
			continue
		}
		result.Uploaded[key] = uploaded.ContentURL

		s.mu.Lock()
		if current, ok := s.data[key]; ok && current.Image != nil {
			updated := *current.Image
			updated.ExistingURL = uploaded.ContentURL
			updated.DataURL = ""
			s.data[key] = formdata.Value{Image: &updated}
			refreshed[key] = s.data[key]
		}
		s.mu.Unlock()
	}
	if s.registry != nil && len(refreshed) > 0 {
		s.registry.Fill(refreshed)
	}
	return nil
}
