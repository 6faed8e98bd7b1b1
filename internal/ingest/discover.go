package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidPath is returned by Discover for an argument that is neither a
// regular file nor a directory.
var ErrInvalidPath = errors.New("not a valid directory or file")

// DefaultExtensions selects which files a directory scan picks up.
var DefaultExtensions = []string{".log"}

// Discover expands paths into the list of files to track. Regular files are
// taken as given. Directories are walked recursively and only files whose
// name ends in one of exts are kept. The result preserves argument order and
// contains no duplicates.
func Discover(paths []string, exts []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("%w [%s]: %v", ErrInvalidPath, p, err)
		}
		switch {
		case info.Mode().IsRegular():
			add(p)
		case info.IsDir():
			err := filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.Type().IsRegular() && hasExtension(path, exts) {
					add(path)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("scan %s: %w", p, err)
			}
		default:
			return nil, fmt.Errorf("%w [%s]", ErrInvalidPath, p)
		}
	}
	return files, nil
}

func hasExtension(path string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
