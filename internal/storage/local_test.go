package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStore_UploadAndDelete(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}

	var lastProgress int64
	url, err := store.Upload(context.Background(),
		strings.NewReader("homework contents"),
		"submissions/s-1/essay.pdf",
		func(written int64) { lastProgress = written })
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if url != "/uploads/submissions/s-1/essay.pdf" {
		t.Errorf("URL = %q, want /uploads/submissions/s-1/essay.pdf", url)
	}
	if lastProgress != int64(len("homework contents")) {
		t.Errorf("progress = %d, want %d", lastProgress, len("homework contents"))
	}

	if err := store.Delete(context.Background(), "submissions/s-1/essay.pdf"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// Deleting again is a no-op.
	if err := store.Delete(context.Background(), "submissions/s-1/essay.pdf"); err != nil {
		t.Errorf("second Delete failed: %v", err)
	}
}

func TestLocalStore_RejectsEscapingPaths(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root, "/uploads")
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}

	url, err := store.Upload(context.Background(),
		strings.NewReader("x"), "../../etc/passwd", nil)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if !strings.HasPrefix(url, "/uploads/") {
		t.Errorf("URL %q escaped the prefix", url)
	}

	if _, statErr := os.Stat(filepath.Join(filepath.Dir(root), "etc", "passwd")); statErr == nil {
		t.Error("upload escaped the store root")
	}
}
