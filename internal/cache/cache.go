// Package cache provides disk-space-aware setup for the
// content-addressed prepared-segment cache directory.
//
// Grounded on internal/util/tempfile.go's EnsureDirectoryWritable /
// GetAvailableSpace / CheckDiskSpace trio, generalized from a
// random-suffix temp-directory helper to the fixed, content-addressed
// cache directory described in spec.md §6.
package cache

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/five82/subtitlecast/internal/xerr"
)

// MinFreeMB is the minimum free space, in megabytes, below which
// Ensure logs a warning instead of failing outright: a low-space
// warning is advisory, not fatal, since the cache degrades gracefully
// to re-encoding cache misses.
const MinFreeMB = 500

// Ensure creates dir if needed and reports available disk space via
// logf (nil is safe). It never fails solely due to low space.
func Ensure(dir string, logf func(format string, args ...any)) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return xerr.IO(err, "failed to create cache directory %s", dir)
	}

	available := AvailableMB(dir)
	if available > 0 && available < MinFreeMB && logf != nil {
		logf("low disk space in cache directory %s: %d MB available (recommended minimum %d MB)", dir, available, MinFreeMB)
	}
	return nil
}

// AvailableMB returns the available disk space at path in megabytes,
// or 0 if it cannot be determined.
func AvailableMB(path string) uint64 {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0
	}
	return stat.Bavail * uint64(stat.Bsize) / (1024 * 1024)
}
