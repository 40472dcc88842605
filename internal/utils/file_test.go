package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetFileExtension(t *testing.T) {
	tests := map[string]string{
		"photo.JPG":         "jpg",
		"/tmp/a/b.webp":     "webp",
		"archive.tar.gz":    "gz",
		"no_extension":      "",
		"/dir.with.dots/ab": "",
	}
	for in, want := range tests {
		if got := GetFileExtension(in); got != want {
			t.Errorf("GetFileExtension(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsImageFile(t *testing.T) {
	if !IsImageFile("holiday.jpeg") {
		t.Error("Expected jpeg to be an image file")
	}
	if !IsImageFile("scan.WEBP") {
		t.Error("Expected upper-case WEBP to be an image file")
	}
	if IsImageFile("notes.txt") {
		t.Error("Expected txt not to be an image file")
	}
}

func TestNormalizeFormat(t *testing.T) {
	tests := map[string]string{
		"png":  "png",
		".PNG": "png",
		"webp": "webp",
		"jpeg": "jpg",
		"":     "jpg",
		"tiff": "jpg",
	}
	for in, want := range tests {
		if got := NormalizeFormat(in); got != want {
			t.Errorf("NormalizeFormat(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestClipFilename(t *testing.T) {
	at := time.UnixMilli(1700000000123)

	got := ClipFilename("/cache", "clip_", "jpg", at)
	want := filepath.Join("/cache", "clip_1700000000123.jpg")
	if got != want {
		t.Errorf("ClipFilename = %q, want %q", got, want)
	}

	got = ClipFilename("out", "a/b:", "webp", at)
	want = filepath.Join("out", "a_b_1700000000123.webp")
	if got != want {
		t.Errorf("ClipFilename = %q, want %q", got, want)
	}
}

func TestEnsureDirAndFileExists(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "nested", "clips")

	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir failed: %v", err)
	}
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir on existing dir failed: %v", err)
	}

	file := filepath.Join(dir, "x.jpg")
	if FileExists(file) {
		t.Error("Expected missing file to be reported absent")
	}
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if !FileExists(file) {
		t.Error("Expected written file to exist")
	}
	if FileExists(dir) {
		t.Error("Expected directory not to count as a file")
	}
}

func TestSanitizeFilename(t *testing.T) {
	if got := SanitizeFilename(" a:b*c. "); got != "a_b_c" {
		t.Errorf("SanitizeFilename = %q", got)
	}
}

func TestFormatFileSize(t *testing.T) {
	tests := map[int64]string{
		512:         "512 B",
		2048:        "2.0 KB",
		5 * 1 << 20: "5.0 MB",
	}
	for in, want := range tests {
		if got := FormatFileSize(in); got != want {
			t.Errorf("FormatFileSize(%d) = %q, want %q", in, got, want)
		}
	}
}
