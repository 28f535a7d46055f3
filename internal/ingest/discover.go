package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// ErrRootNotFound is returned when the results root is missing or is not a
// directory. Ingestion cannot produce meaningful output in that case.
var ErrRootNotFound = errors.New("results root not found")

// Discover returns every file named marker under root, in lexicographic path
// order. The tree is walked with an explicit stack so depth does not grow the
// call stack. Symlinked directories are not followed.
func Discover(root, marker string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRootNotFound, root)
		}
		return nil, fmt.Errorf("stat results root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrRootNotFound, root)
	}

	var found []string
	err = walkDirs(root, func(dir string, entries []os.DirEntry) {
		for _, entry := range entries {
			if entry.Name() != marker || entry.IsDir() {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if isRegularFile(entry, path) {
				found = append(found, path)
			}
		}
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(found)
	return found, nil
}

// walkDirs visits root and every directory below it exactly once, handing
// each directory's sorted entries to visit.
func walkDirs(root string, visit func(dir string, entries []os.DirEntry)) error {
	stack := []string{root}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("list %s: %w", dir, err)
		}
		visit(dir, entries)

		for i := len(entries) - 1; i >= 0; i-- {
			if entries[i].IsDir() {
				stack = append(stack, filepath.Join(dir, entries[i].Name()))
			}
		}
	}
	return nil
}

func isRegularFile(entry os.DirEntry, path string) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
