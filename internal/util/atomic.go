// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// DefaultDirPerm is used for parent directories AtomicWriteFile creates.
const DefaultDirPerm os.FileMode = 0700

// AtomicWriteFile replaces path with data. The bytes go to a temporary file
// in the same directory, are synced, and the file is renamed over path, so
// readers see either the old content or the new, never a partial write.
// Missing parent directories are created with DefaultDirPerm.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	return AtomicWriteFileWithDir(path, data, perm, DefaultDirPerm)
}

// AtomicWriteFileWithDir is AtomicWriteFile with an explicit mode for
// created parent directories.
func AtomicWriteFileWithDir(path string, data []byte, filePerm, dirPerm os.FileMode) (err error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(err, "resolve path")
	}
	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return errors.Wrap(err, "create parent directory")
	}

	// Same directory so the rename stays on one filesystem.
	f, err := os.CreateTemp(dir, "."+filepath.Base(absPath)+".tmp-")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tempPath := f.Name()
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err = f.Write(data); err != nil {
		return errors.Wrap(err, "write temp file")
	}
	if err = f.Sync(); err != nil {
		return errors.Wrap(err, "sync temp file")
	}
	if err = f.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	if err = os.Chmod(tempPath, filePerm); err != nil {
		return errors.Wrap(err, "set permissions")
	}
	if err = os.Rename(tempPath, absPath); err != nil {
		return errors.Wrap(err, "rename temp file")
	}
	return nil
}
