package scanner

import (
	"fmt"
	"os"
	"path/filepath"

	"sketchmatch/imageprocessor"
)

// ListReferenceFiles walks a dataset root one level deep: every
// subdirectory is a category and every .png file inside it a reference.
// Files directly under root and deeper directories are ignored. The result
// is in lexical order by category, then filename. Paths are absolute so a
// dataset indexes under the same keys however its root was spelled.
func ListReferenceFiles(root string) ([]ReferenceFile, FileStats, error) {
	var stats FileStats

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, stats, fmt.Errorf("cannot resolve dataset root: %w", err)
	}
	stats.root = root

	categories, err := os.ReadDir(root)
	if err != nil {
		return nil, stats, fmt.Errorf("cannot read dataset root %s: %w", root, err)
	}

	var files []ReferenceFile
	for _, category := range categories {
		if !category.IsDir() {
			continue
		}
		dir := filepath.Join(root, category.Name())
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, stats, fmt.Errorf("cannot read category %s: %w", dir, err)
		}
		stats.categories++

		for _, entry := range entries {
			if entry.IsDir() || !imageprocessor.IsReferenceFile(entry.Name()) {
				continue
			}
			files = append(files, ReferenceFile{
				Root:     root,
				Path:     filepath.Join(dir, entry.Name()),
				Category: category.Name(),
				Name:     entry.Name(),
			})
		}
	}

	stats.totalFiles = len(files)
	return files, stats, nil
}
