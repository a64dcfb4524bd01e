package remote

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestDecodeDataURL(t *testing.T) {
	cases := []struct {
		name      string
		raw       string
		mediaType string
		data      string
		wantErr   bool
	}{
		{name: "base64", raw: "data:image/png;base64,aGk=", mediaType: "image/png", data: "hi"},
		{name: "escaped text", raw: "data:text/plain,a%20b", mediaType: "text/plain", data: "a b"},
		{name: "default media type", raw: "data:,x", mediaType: "text/plain;charset=US-ASCII", data: "x"},
		{name: "not a data url", raw: "https://x.test/a.png", wantErr: true},
		{name: "missing payload", raw: "data:image/png;base64", wantErr: true},
		{name: "bad base64", raw: "data:image/png;base64,***", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mediaType, data, err := DecodeDataURL(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if mediaType != tc.mediaType || string(data) != tc.data {
				t.Fatalf("got %q %q, want %q %q", mediaType, data, tc.mediaType, tc.data)
			}
		})
	}
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	ctx := context.Background()

	if err := os.WriteFile(filepath.Join(dir, "home.html"), []byte("<p>[[x]]</p>"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	src, err := store.FetchSource(ctx, "home.html")
	if err != nil || src != "<p>[[x]]</p>" {
		t.Fatalf("fetch = %q, %v", src, err)
	}

	uploaded, err := store.UploadAsset(ctx, "pages/assets", "cat.txt", "data:text/plain,meow")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if uploaded.ContentURL != "/pages/assets/cat.txt" {
		t.Fatalf("unexpected content url %q", uploaded.ContentURL)
	}
	if data, _ := os.ReadFile(filepath.Join(dir, "pages", "assets", "cat.txt")); string(data) != "meow" {
		t.Fatalf("unexpected asset contents %q", data)
	}
	if _, err := store.UploadAsset(ctx, "pages", "../evil.png", "data:,x"); err == nil {
		t.Fatalf("expected invalid asset name to fail")
	}

	if _, err := store.SaveDocument(ctx, "../../outside.html", "<p>x</p>"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "outside.html")); err != nil {
		t.Fatalf("expected escaping path kept inside the root: %v", err)
	}
	if _, err := store.SaveDocument(ctx, "/", "x"); err == nil {
		t.Fatalf("expected empty path to fail")
	}

	if err := store.TriggerPreview(ctx, "pages/home.html"); err != nil {
		t.Fatalf("preview: %v", err)
	}
	if len(store.Previews) != 1 || store.Previews[0] != "pages/home.html" {
		t.Fatalf("unexpected previews %v", store.Previews)
	}
}

func TestFetcherSources(t *testing.T) {
	ctx := context.Background()

	fsys := fstest.MapFS{"templates/a.html": {Data: []byte("<p>fs</p>")}}
	got, err := NewFetcher(WithFileSystem(fsys)).FetchSource(ctx, "/templates/a.html")
	if err != nil || got != "<p>fs</p>" {
		t.Fatalf("fs fetch = %q, %v", got, err)
	}

	path := filepath.Join(t.TempDir(), "b.html")
	if err := os.WriteFile(path, []byte("<p>file</p>"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if got, err := NewFetcher().FetchSource(ctx, path); err != nil || got != "<p>file</p>" {
		t.Fatalf("file fetch = %q, %v", got, err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, "<p>url</p>")
	}))
	defer server.Close()

	if _, err := NewFetcher().FetchSource(ctx, server.URL+"/c.html"); err == nil {
		t.Fatalf("expected URL fetch to fail without a client")
	}
	fetcher := NewFetcher(WithFetchClient(server.Client()))
	if got, err := fetcher.FetchSource(ctx, server.URL+"/c.html"); err != nil || got != "<p>url</p>" {
		t.Fatalf("url fetch = %q, %v", got, err)
	}
	if _, err := fetcher.FetchSource(ctx, server.URL+"/missing"); StatusOf(err) != http.StatusNotFound {
		t.Fatalf("expected 404 status error, got %v", err)
	}
	if _, err := fetcher.FetchSource(ctx, ""); err == nil {
		t.Fatalf("expected empty location to fail")
	}
}
