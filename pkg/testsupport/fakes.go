package testsupport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-daas/pkg/remote"
)

// MemoryStore is an in-memory implementation of every remote contract.
// Failures can be injected per operation.
type MemoryStore struct {
	mu sync.Mutex

	Sources   map[string]string
	Documents map[string]string
	Assets    map[string]string
	Previews  []string
	Calls     []string

	FetchErr   error
	SaveErr    error
	PreviewErr error
	// UploadErrs fails uploads of the listed file names.
	UploadErrs map[string]error
}

// NewMemoryStore seeds a store with template sources keyed by path.
func NewMemoryStore(sources map[string]string) *MemoryStore {
	if sources == nil {
		sources = map[string]string{}
	}
	return &MemoryStore{
		Sources:    sources,
		Documents:  map[string]string{},
		Assets:     map[string]string{},
		UploadErrs: map[string]error{},
	}
}

var (
	_ remote.SourceFetcher  = (*MemoryStore)(nil)
	_ remote.AssetUploader  = (*MemoryStore)(nil)
	_ remote.DocumentSaver  = (*MemoryStore)(nil)
	_ remote.PreviewTrigger = (*MemoryStore)(nil)
)

func (m *MemoryStore) record(call string) {
	m.Calls = append(m.Calls, call)
}

// FetchSource implements remote.SourceFetcher.
func (m *MemoryStore) FetchSource(_ context.Context, path string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("fetch " + path)
	if m.FetchErr != nil {
		return "", m.FetchErr
	}
	src, ok := m.Sources[path]
	if !ok {
		return "", fmt.Errorf("testsupport: no source %q", path)
	}
	return src, nil
}

// UploadAsset implements remote.AssetUploader.
func (m *MemoryStore) UploadAsset(_ context.Context, destPath, fileName, dataURL string) (remote.UploadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("upload " + fileName)
	if err := m.UploadErrs[fileName]; err != nil {
		return remote.UploadResult{}, err
	}
	url := "https://cdn.test/" + destPath + "/" + fileName
	m.Assets[url] = dataURL
	return remote.UploadResult{ContentURL: url}, nil
}

// SaveDocument implements remote.DocumentSaver.
func (m *MemoryStore) SaveDocument(_ context.Context, destPath, html string) (remote.SaveResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("save " + destPath)
	if m.SaveErr != nil {
		return remote.SaveResult{Path: destPath, Status: remote.StatusOf(m.SaveErr)}, m.SaveErr
	}
	m.Documents[destPath] = html
	return remote.SaveResult{Path: destPath, Status: 200}, nil
}

// TriggerPreview implements remote.PreviewTrigger.
func (m *MemoryStore) TriggerPreview(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("preview " + path)
	if m.PreviewErr != nil {
		return m.PreviewErr
	}
	m.Previews = append(m.Previews, path)
	return nil
}

// CallLog returns a copy of the recorded calls in order.
func (m *MemoryStore) CallLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Calls...)
}

// ManualClock is a settable time source.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock starts the clock at a fixed instant.
func NewManualClock() *ManualClock {
	return &ManualClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

// Now returns the current instant.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
