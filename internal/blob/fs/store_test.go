package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/plantit/plantit/internal/domain/types"
)

func TestUploadAndResolve(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir(), "https://blobs.local")
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	ref, err := s.Upload(ctx, "u1", []byte("jpeg-bytes"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if ref != types.BlobRef("u1") {
		t.Fatalf("unexpected ref %q", ref)
	}

	url, err := s.ResolveURL(ctx, ref)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if url != "https://blobs.local/u1" {
		t.Fatalf("unexpected url %q", url)
	}
}

func TestUpload_OverwritesSameOwner(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := New(root, "https://blobs.local")
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if _, err := s.Upload(ctx, "u1", []byte("first")); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if _, err := s.Upload(ctx, "u1", []byte("second")); err != nil {
		t.Fatalf("re-upload: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(root, "u1"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "second" {
		t.Fatalf("expected overwrite, got %q", got)
	}
}

func TestResolveURL_NotFound(t *testing.T) {
	s, err := New(t.TempDir(), "https://blobs.local")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_, err = s.ResolveURL(context.Background(), "ghost")
	se, ok := types.AsStorageError(err)
	if !ok || se.Kind != types.StorageNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}
