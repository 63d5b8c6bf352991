package pipeline

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const VideoExtension = ".mp4"

// Discover lists the videos directly inside folder, sorted by name. Matching
// is case-insensitive on the extension. Symlinks count when they resolve to a
// regular file; directories, broken links and other entries are skipped.
func Discover(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", folder, err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !IsVideo(entry.Name()) {
			continue
		}
		path := filepath.Join(folder, entry.Name())
		if !isRegularFile(entry, path) {
			continue
		}
		files = append(files, path)
	}
	slices.Sort(files)

	return files, nil
}

func IsVideo(name string) bool {
	return strings.EqualFold(filepath.Ext(name), VideoExtension)
}

func isRegularFile(entry fs.DirEntry, path string) bool {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.Type().IsRegular()
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
