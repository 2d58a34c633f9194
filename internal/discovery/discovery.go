// Package discovery finds candidate background video/image files on
// disk, for callers building a background.Clip playlist from a
// directory instead of an explicit file list.
//
// Grounded on internal/discovery/discovery.go's directory-scan idiom
// (stat, read entries, skip hidden, filter by extension, sort), with
// the extension filter generalized from "video files only" to "video
// or still image" since a BackgroundPlaylist may be either.
package discovery

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/five82/subtitlecast/internal/xerr"
)

var videoExtensions = map[string]bool{
	".mp4": true, ".mkv": true, ".mov": true, ".m4v": true,
	".avi": true, ".webm": true,
}

var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".bmp": true,
}

// IsVideoFile reports whether path's extension matches a recognized
// video container.
func IsVideoFile(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsImageFile reports whether path's extension matches a recognized
// still-image format.
func IsImageFile(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// FindBackgroundFiles finds video and still-image files in dir,
// skipping hidden files and subdirectories, sorted alphabetically by
// filename (case-insensitive) so playlist order is deterministic.
func FindBackgroundFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, xerr.Input("background directory does not exist: %s", dir)
	}
	if !info.IsDir() {
		return nil, xerr.Input("background path is not a directory: %s", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, xerr.IO(err, "cannot read background directory %s", dir)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		full := filepath.Join(dir, name)
		if IsVideoFile(full) || IsImageFile(full) {
			files = append(files, full)
		}
	}

	if len(files) == 0 {
		return nil, xerr.Input("no background video or image files found in %s", dir)
	}

	sort.Slice(files, func(i, j int) bool {
		return strings.ToLower(filepath.Base(files[i])) < strings.ToLower(filepath.Base(files[j]))
	})

	return files, nil
}
