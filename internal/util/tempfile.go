package util

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// EnsureDirectoryWritable verifies path exists, is a directory, and a
// probe file can be created inside it.
func EnsureDirectoryWritable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("directory %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	probe, err := os.CreateTemp(path, ".writable_probe_*")
	if err != nil {
		return fmt.Errorf("directory %s is not writable: %w", path, err)
	}
	name := probe.Name()
	_ = probe.Close()
	return os.Remove(name)
}

// TempDir is a created temp directory that removes itself on Cleanup.
type TempDir struct {
	path string
}

// Path returns the directory's path.
func (d *TempDir) Path() string { return d.path }

// Cleanup removes the directory and everything under it.
func (d *TempDir) Cleanup() error { return os.RemoveAll(d.path) }

// CreateTempDir creates a uniquely-named directory under base, prefixed
// with prefix + "_".
func CreateTempDir(base, prefix string) (*TempDir, error) {
	suffix, err := generateRandomString(8)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(base, fmt.Sprintf("%s_%s", prefix, suffix))
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, err
	}
	return &TempDir{path: path}, nil
}

// TempFile is a created temp file that removes itself on Cleanup.
type TempFile struct {
	path string
}

// Path returns the file's path.
func (f *TempFile) Path() string { return f.path }

// Cleanup removes the file.
func (f *TempFile) Cleanup() error { return os.Remove(f.path) }

// CreateTempFile creates an empty, uniquely-named file under base.
func CreateTempFile(base, prefix, ext string) (*TempFile, error) {
	path, err := CreateTempFilePath(base, prefix, ext)
	if err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	_ = f.Close()
	return &TempFile{path: path}, nil
}

// CreateTempFilePath reserves a unique path under base without creating
// the file. Used where an external process (ffmpeg, libvmaf) will be the
// one to create it.
func CreateTempFilePath(base, prefix, ext string) (string, error) {
	suffix, err := generateRandomString(8)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s_%s.%s", prefix, suffix, strings.TrimPrefix(ext, "."))
	return filepath.Join(base, name), nil
}

// CleanupStaleTempFiles removes files under dir whose name starts with
// prefix+"_" and whose modification time is older than maxAge. Returns
// the count removed. A non-existent dir is not an error.
func CleanupStaleTempFiles(dir, prefix string, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	count := 0
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), prefix+"_") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) || maxAge == 0 {
			if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err == nil {
				count++
			}
		}
	}
	return count, nil
}

// GetAvailableSpace returns the free bytes available on the filesystem
// containing path, or 0 if it cannot be determined.
func GetAvailableSpace(path string) uint64 {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0
	}
	return uint64(stat.Bavail) * uint64(stat.Bsize)
}

// CheckDiskSpace logs (via logFn, if non-nil) the available space at path.
// It never fails the caller; disk space is advisory information only.
func CheckDiskSpace(path string, logFn func(format string, args ...any)) uint64 {
	space := GetAvailableSpace(path)
	if logFn != nil {
		logFn("available space at %s: %s", path, FormatBytes(space))
	}
	return space
}

// generateRandomString returns a random hex string of the given byte length.
func generateRandomString(n int) (string, error) {
	b := make([]byte, n/2+1)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b)[:n], nil
}
