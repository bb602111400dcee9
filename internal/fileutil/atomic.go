package fileutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// AtomicWrite replaces path with data so that readers see either the old or
// the new content, never a partial file. The temporary file lives in the same
// directory because rename is only atomic within one filesystem.
func AtomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".misetui-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}

	success = true
	return nil
}

// AtomicWriteString is AtomicWrite for string content.
func AtomicWriteString(path string, content string, perm os.FileMode) error {
	return AtomicWrite(path, []byte(content), perm)
}

// ReplaceFile atomically rewrites an existing file keeping its permission
// bits. A missing file is created with fallback.
func ReplaceFile(path string, data []byte, fallback os.FileMode) error {
	perm := fallback
	info, err := os.Stat(path)
	switch {
	case err == nil:
		perm = info.Mode().Perm()
	case !errors.Is(err, fs.ErrNotExist):
		return err
	}
	return AtomicWrite(path, data, perm)
}
