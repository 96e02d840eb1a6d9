package imagefile

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	files := New(dir, testLogger())

	data := []byte("fake png payload")
	path, err := files.Save(data, "A Cat in the Forest!")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if filepath.Dir(path) != dir {
		t.Errorf("path %q not under %q", path, dir)
	}
	name := filepath.Base(path)
	if !strings.HasPrefix(name, "a-cat-in-the-forest-") {
		t.Errorf("file name %q should start with sanitized prompt", name)
	}
	if !strings.HasSuffix(name, ".png") {
		t.Errorf("file name %q should end in .png", name)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading saved file: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("saved bytes do not round trip")
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "images")
	files := New(dir, testLogger())

	if _, err := files.Save([]byte("payload"), "test"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("images directory was not created: %v", err)
	}
}

func TestSaveNeverClobbers(t *testing.T) {
	files := New(t.TempDir(), testLogger())

	data := []byte("identical payload")
	first, err := files.Save(data, "same prompt")
	if err != nil {
		t.Fatalf("first Save() error = %v", err)
	}
	second, err := files.Save(data, "same prompt")
	if err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	if first == second {
		t.Fatalf("both saves returned %q", first)
	}
	for _, path := range []string{first, second} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("saved file %q missing: %v", path, err)
		}
	}
}

func TestSaveEmptyData(t *testing.T) {
	files := New(t.TempDir(), testLogger())
	if _, err := files.Save(nil, "prompt"); err == nil {
		t.Fatal("expected error for empty data")
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Sunset Over Water", "sunset-over-water"},
		{"collapses punctuation", "a cat, in... the forest!!", "a-cat-in-the-forest"},
		{"trims edges", "  --hello--  ", "hello"},
		{"keeps digits", "scene 42 take 7", "scene-42-take-7"},
		{"non ascii dropped", "café au lait", "caf-au-lait"},
		{"empty input", "", "image"},
		{"only punctuation", "!!!???", "image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeName(tt.in); got != tt.want {
				t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeNameCapsLength(t *testing.T) {
	got := SanitizeName(strings.Repeat("a", 200))
	if len(got) != maxNameLen {
		t.Errorf("len = %d, want %d", len(got), maxNameLen)
	}
}
