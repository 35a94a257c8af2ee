package walker

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/sirupsen/logrus"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte{}, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestIsImageFile(t *testing.T) {
	cases := map[string]bool{
		"a.jpg":       true,
		"b.JPEG":      true,
		"c.png":       true,
		"d.bmp":       true,
		"e.tiff":      true,
		"f.webp":      true,
		"notes.txt":   false,
		"archive.zip": false,
		"noext":       false,
	}
	for name, want := range cases {
		if got := IsImageFile(name); got != want {
			t.Errorf("IsImageFile(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestWalkDirectoryFindsNestedImages(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.png"))
	touch(t, filepath.Join(root, "sub", "b.jpg"))
	touch(t, filepath.Join(root, "sub", "deep", "c.tiff"))
	touch(t, filepath.Join(root, "sub", "notes.txt"))

	var visited []string
	err := New(newTestLogger()).Walk(root, func(path string) {
		rel, _ := filepath.Rel(root, path)
		visited = append(visited, rel)
	})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	sort.Strings(visited)
	want := []string{"a.png", filepath.Join("sub", "b.jpg"), filepath.Join("sub", "deep", "c.tiff")}
	if len(visited) != len(want) {
		t.Fatalf("visited %v, want %v", visited, want)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Errorf("visited %v, want %v", visited, want)
			break
		}
	}
}

func TestWalkSingleFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "only.png")
	touch(t, path)

	count := 0
	err := New(newTestLogger()).Walk(path, func(string) { count++ })
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if count != 1 {
		t.Errorf("visited %d files, want 1", count)
	}
}

func TestWalkUnsupportedFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "data.csv")
	touch(t, path)

	err := New(newTestLogger()).Walk(path, func(string) {
		t.Error("visitor must not run for an unsupported file")
	})
	if !errors.Is(err, ErrUnsupportedPath) {
		t.Errorf("expected ErrUnsupportedPath, got %v", err)
	}
}

func TestWalkMissingRoot(t *testing.T) {
	err := New(newTestLogger()).Walk(filepath.Join(t.TempDir(), "gone"), func(string) {
		t.Error("visitor must not run for a missing root")
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
