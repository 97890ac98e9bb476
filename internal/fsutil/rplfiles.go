// Package fsutil locates description files on disk.
package fsutil

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

// Collect expands each path into the files it names. A regular file is
// taken as given whatever its extension. A directory is walked for files
// whose extension matches ext case-insensitively; hidden directories below
// it are skipped. Files from one directory are returned in lexical order,
// and a file reached twice is listed once.
func Collect(paths []string, ext string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		clean := filepath.Clean(p)
		if !seen[clean] {
			seen[clean] = true
			files = append(files, clean)
		}
	}

	for _, root := range paths {
		var found []string
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if path == root || strings.EqualFold(filepath.Ext(path), ext) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", root, err)
		}
		slices.Sort(found)
		for _, f := range found {
			add(f)
		}
	}
	return files, nil
}
