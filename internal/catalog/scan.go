package catalog

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// ScanDir walks root and returns every regular file as a FileEntry with a
// slash-separated path relative to root. Hidden files and directories
// (dot-prefixed) are skipped.
func ScanDir(root string) ([]FileEntry, error) {
	var entries []FileEntry
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && p != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		entries = append(entries, FileEntry{
			RelPath: filepath.ToSlash(rel),
			AbsPath: p,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
