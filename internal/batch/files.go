package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DocumentExtensions are the file types sent to an analyzer.
var DocumentExtensions = []string{".pdf", ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".gif", ".bmp", ".webp"}

// ResultExtensions are the file types holding saved analyze results.
var ResultExtensions = []string{".json"}

// FindInputs walks folderPath and returns the files with one of the given
// extensions, sorted by path. Directories listed in skip are not entered, so
// an output folder inside the input folder is never read back as input.
func FindInputs(folderPath string, extensions []string, skip ...string) ([]string, error) {
	info, err := os.Stat(folderPath)
	if err != nil {
		return nil, fmt.Errorf("folder not found: %s: %w", folderPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", folderPath)
	}

	skipped := make(map[string]bool, len(skip))
	for _, dir := range skip {
		if dir == "" {
			continue
		}
		if abs, err := filepath.Abs(dir); err == nil {
			skipped[abs] = true
		}
	}

	wanted := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		wanted[strings.ToLower(ext)] = true
	}

	var files []string
	err = filepath.WalkDir(folderPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && path != folderPath {
			if abs, err := filepath.Abs(path); err == nil && skipped[abs] {
				return filepath.SkipDir
			}
		}
		if !d.IsDir() && wanted[strings.ToLower(filepath.Ext(d.Name()))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// OutputNames derives one output base name per path from the file name
// without its extension. Repeated names get the lowest free numeric suffix in
// input order. A suffixed name never takes the plain name of another input, so
// the same input list always yields the same distinct names.
func OutputNames(paths []string) []string {
	bases := make([]string, len(paths))
	reserved := make(map[string]bool, len(paths))
	for i, p := range paths {
		bases[i] = strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		reserved[bases[i]] = true
	}

	names := make([]string, len(paths))
	used := make(map[string]bool, len(paths))
	next := make(map[string]int, len(paths))
	for i, base := range bases {
		name := base
		if used[name] {
			for n := max(next[base], 2); ; n++ {
				name = fmt.Sprintf("%s_%d", base, n)
				if !used[name] && !reserved[name] {
					next[base] = n + 1
					break
				}
			}
		}
		used[name] = true
		names[i] = name
	}
	return names
}
