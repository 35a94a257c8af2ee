// Package walker discovers image files under a root path and dispatches
// each one to a visitor. Traversal uses an explicit stack instead of
// recursion, so arbitrarily deep directory trees cannot exhaust the call
// stack.
package walker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Root-path errors. Per-file problems inside a batch never surface
// here; they are the visitor's concern.
var (
	// ErrNotFound means the root path does not exist.
	ErrNotFound = errors.New("input path does not exist")
	// ErrUnsupportedPath means the root is neither a supported image file
	// nor a directory.
	ErrUnsupportedPath = errors.New("path is neither a supported image file nor a directory")
)

var imageExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".bmp":  {},
	".tiff": {},
	".webp": {},
}

// IsImageFile reports whether path carries a recognized image extension.
func IsImageFile(path string) bool {
	_, ok := imageExts[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Walker enumerates image files. Visitors handle (and log) their own
// per-file failures so a batch always runs to completion.
type Walker struct {
	log *logrus.Logger
}

// New creates a walker.
func New(log *logrus.Logger) *Walker {
	return &Walker{log: log}
}

// Walk calls visit for every image file reachable from root. A file
// root is dispatched directly when its extension is recognized; a
// directory root is scanned depth-first. Files without a recognized
// extension inside a directory are skipped silently, and unreadable
// subdirectories are logged and skipped.
func (w *Walker) Walk(root string, visit func(path string)) error {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, root)
		}
		return fmt.Errorf("stat %s: %w", root, err)
	}

	if !info.IsDir() {
		if !IsImageFile(root) {
			return fmt.Errorf("%w: %s", ErrUnsupportedPath, root)
		}
		visit(root)
		return nil
	}

	stack := []string{root}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			w.log.WithField("path", dir).WithError(err).Warn("skipping unreadable directory")
			continue
		}
		for _, e := range entries {
			path := filepath.Join(dir, e.Name())
			if e.IsDir() {
				stack = append(stack, path)
				continue
			}
			if IsImageFile(path) {
				visit(path)
			}
		}
	}
	return nil
}
