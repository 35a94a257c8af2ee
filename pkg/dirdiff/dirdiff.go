// Package dirdiff reports filenames present in one folder but absent
// from another, a plain set difference over non-recursive directory
// listings. Matching can ignore file extensions, and orphaned files can
// optionally be deleted from the source folder.
package dirdiff

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Options controls a comparison.
type Options struct {
	// IgnoreExtension compares base names without their extensions. Every
	// file whose stem is orphaned is reported.
	IgnoreExtension bool
	// Reverse swaps the comparison, reporting files in folder B that are
	// absent from folder A.
	Reverse bool
}

// Result of a comparison. Files lists the orphans found in Source,
// sorted by name.
type Result struct {
	Source string
	Target string
	Files  []string
}

// Compare returns the files present in folderA but absent from folderB
// (or the reverse, per opts).
func Compare(folderA, folderB string, opts Options) (Result, error) {
	source, target := folderA, folderB
	if opts.Reverse {
		source, target = folderB, folderA
	}

	var files []string
	if opts.IgnoreExtension {
		sourceByStem, err := filesByStem(source)
		if err != nil {
			return Result{}, err
		}
		targetByStem, err := filesByStem(target)
		if err != nil {
			return Result{}, err
		}
		for stem, names := range sourceByStem {
			if _, ok := targetByStem[stem]; !ok {
				files = append(files, names...)
			}
		}
	} else {
		sourceFiles, err := listFiles(source)
		if err != nil {
			return Result{}, err
		}
		targetFiles, err := listFiles(target)
		if err != nil {
			return Result{}, err
		}
		for name := range sourceFiles {
			if _, ok := targetFiles[name]; !ok {
				files = append(files, name)
			}
		}
	}

	sort.Strings(files)
	return Result{Source: source, Target: target, Files: files}, nil
}

// Delete removes the named files from folder. Files already gone are
// skipped. Returns the paths actually deleted.
func Delete(folder string, files []string) ([]string, error) {
	var deleted []string
	for _, name := range files {
		path := filepath.Join(folder, name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		if err := os.Remove(path); err != nil {
			return deleted, fmt.Errorf("delete %s: %w", path, err)
		}
		deleted = append(deleted, path)
	}
	return deleted, nil
}

// listFiles returns the names of the regular files directly inside
// folder.
func listFiles(folder string) (map[string]struct{}, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("read folder %s: %w", folder, err)
	}
	files := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			files[e.Name()] = struct{}{}
		}
	}
	return files, nil
}

// filesByStem groups the regular files directly inside folder by base
// name without extension.
func filesByStem(folder string) (map[string][]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("read folder %s: %w", folder, err)
	}
	byStem := make(map[string][]string, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		byStem[stem] = append(byStem[stem], e.Name())
	}
	return byStem, nil
}
