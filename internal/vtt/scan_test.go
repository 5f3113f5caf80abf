package vtt

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsImagePath(t *testing.T) {
	for _, name := range []string{"a.png", "B.PNG", "c.jpg", "d.JPEG", "e.bmp"} {
		if !IsImagePath(name) {
			t.Fatalf("%q rejected", name)
		}
	}
	for _, name := range []string{"notes.txt", "save.vtt", "archive.png.zip", "png"} {
		if IsImagePath(name) {
			t.Fatalf("%q accepted", name)
		}
	}
}

func TestScanImageDir_SortedImagesOnly(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"zeta.png", "alpha.jpg", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.png"), 0o755); err != nil {
		t.Fatal(err)
	}

	got := ScanImageDir(dir)
	if len(got) != 2 {
		t.Fatalf("scan found %d entries, want 2: %v", len(got), got)
	}
	if filepath.Base(got[0]) != "alpha.jpg" || filepath.Base(got[1]) != "zeta.png" {
		t.Fatalf("scan order wrong: %v", got)
	}
}

func TestScanImageDir_MissingDir(t *testing.T) {
	if got := ScanImageDir(filepath.Join(t.TempDir(), "nope")); got != nil {
		t.Fatalf("missing dir yielded %v", got)
	}
}
