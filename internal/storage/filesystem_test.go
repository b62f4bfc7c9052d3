package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	path, err := store.Write(context.Background(), "out/masterpiece-awakened.mp4", []byte("mp4"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if path != filepath.Join(store.BasePath(), "out", "masterpiece-awakened.mp4") {
		t.Fatalf("path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "mp4" {
		t.Fatalf("read back %q, %v", data, err)
	}
	entries, _ := os.ReadDir(filepath.Join(dir, "out"))
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestSanitizeKey(t *testing.T) {
	cases := map[string]bool{
		"video.mp4":      true,
		"/abs/video.mp4": true,
		"a/../video.mp4": true,
		"../escape.mp4":  false,
		"..":             false,
		"  ":             false,
		"dir\\..\\..\\x": false,
	}
	for key, ok := range cases {
		_, err := sanitizeKey(key)
		if (err == nil) != ok {
			t.Fatalf("sanitizeKey(%q) error = %v, want ok=%v", key, err, ok)
		}
	}
}

func TestWriteCancelled(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Write(ctx, "v.mp4", nil); err == nil {
		t.Fatal("expected context error")
	}
}
