package patch

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
)

// DefaultBackupSuffix is appended to a file's path to name its backup.
const DefaultBackupSuffix = "~"

// robustRename renames oldpath to newpath. When the rename fails, e.g.
// across devices, the file is copied and the original removed.
func robustRename(fs afero.Fs, oldpath, newpath string) error {
	if err := fs.Rename(oldpath, newpath); err == nil {
		return nil
	}

	src, err := fs.Open(oldpath)
	if err != nil {
		return err
	}
	mode := os.FileMode(0o644)
	if info, err := src.Stat(); err == nil {
		mode = info.Mode().Perm()
	}

	dst, err := fs.OpenFile(newpath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		src.Close()
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		src.Close()
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		src.Close()
		return err
	}
	if err := src.Close(); err != nil {
		return err
	}
	return fs.Remove(oldpath)
}

// overwriteWithBackup moves path to path+suffix, replacing any earlier
// backup, and moves replacement into path.
func overwriteWithBackup(fs afero.Fs, path, replacement, suffix string) (string, error) {
	backup := path + suffix
	if err := fs.Remove(backup); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to remove old backup %s: %w", backup, err)
	}
	if err := robustRename(fs, path, backup); err != nil {
		return "", fmt.Errorf("failed to back up %s: %w", path, err)
	}
	if err := robustRename(fs, replacement, path); err != nil {
		return backup, fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return backup, nil
}
