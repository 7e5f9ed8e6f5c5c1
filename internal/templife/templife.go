// Package templife manages a per-file scratch workspace under the
// configured tmp_dir: create-and-wipe at the start of a file, delete at
// the end unless keep_tmp_files is set (spec.md §4.K).
package templife

import (
	"os"

	"github.com/qcodec/qcodec/internal/errors"
)

// Workspace is one file's scratch directory tree.
type Workspace struct {
	Root         string
	PreparedDir  string
	ConvertedDir string
	KeepOnClose  bool
}

// Open creates (wiping any prior contents of) root/prepared and
// root/converted.
func Open(root, preparedDir, convertedDir string, keepOnClose bool) (*Workspace, error) {
	for _, dir := range []string{preparedDir, convertedDir} {
		if err := os.RemoveAll(dir); err != nil {
			return nil, errors.NewIOError("failed to wipe workspace directory "+dir, err)
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.NewIOError("failed to create workspace directory "+dir, err)
		}
	}
	return &Workspace{Root: root, PreparedDir: preparedDir, ConvertedDir: convertedDir, KeepOnClose: keepOnClose}, nil
}

// Close deletes the workspace root unless KeepOnClose is set. Safe to
// call from a signal handler's cleanup path as well as normal exit.
func (w *Workspace) Close() error {
	if w.KeepOnClose {
		return nil
	}
	if err := os.RemoveAll(w.Root); err != nil {
		return errors.NewIOError("failed to remove workspace "+w.Root, err)
	}
	return nil
}

// RemoveSentinel deletes a standalone artefact (concat list, VMAF log,
// ffmpeg 2-pass log) that may live outside Root in some configurations.
func RemoveSentinel(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.NewIOError("failed to remove sentinel file "+path, err)
	}
	return nil
}
