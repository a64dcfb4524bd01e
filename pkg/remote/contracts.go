package remote

import "context"

// SourceFetcher returns the authoritative template source for a path, as
// opposed to any rendered or cached variant.
type SourceFetcher interface {
	FetchSource(ctx context.Context, path string) (string, error)
}

// AssetUploader stores an asset given as a data URL and returns where it can
// be referenced from.
type AssetUploader interface {
	UploadAsset(ctx context.Context, destPath, fileName, dataURL string) (UploadResult, error)
}

// DocumentSaver persists composed HTML.
type DocumentSaver interface {
	SaveDocument(ctx context.Context, destPath, html string) (SaveResult, error)
}

// PreviewTrigger asks the remote side to refresh its preview of path.
type PreviewTrigger interface {
	TriggerPreview(ctx context.Context, path string) error
}

// UploadResult describes a stored asset.
type UploadResult struct {
	ContentURL string `json:"contentUrl"`
}

// SaveResult describes a persisted document.
type SaveResult struct {
	Path   string `json:"path,omitempty"`
	Status int    `json:"status,omitempty"`
}

// FetcherFunc adapts a function to SourceFetcher.
type FetcherFunc func(ctx context.Context, path string) (string, error)

// FetchSource implements SourceFetcher.
func (f FetcherFunc) FetchSource(ctx context.Context, path string) (string, error) {
	return f(ctx, path)
}
