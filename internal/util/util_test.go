// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicWriteFile(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"text", []byte("[endpoint]\nurl = \"http://localhost:4000/generate\"\n")},
		{"empty", []byte{}},
		{"large", make([]byte, 1<<20)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")

			require.NoError(t, AtomicWriteFile(path, tt.data, 0600))

			got, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, len(tt.data), len(got))
			assert.Equal(t, tt.data, got)
		})
	}
}

func TestAtomicWriteFile_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, AtomicWriteFile(path, []byte("initial"), 0600))
	require.NoError(t, AtomicWriteFile(path, []byte("updated"), 0600))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "updated", string(got))
}

func TestAtomicWriteFile_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, AtomicWriteFile(path, []byte("x"), 0600))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "config.toml", entries[0].Name())
}

func TestAtomicWriteFileWithDir_Permissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	dir := filepath.Join(t.TempDir(), ".chatbot")
	path := filepath.Join(dir, "config.toml")

	require.NoError(t, AtomicWriteFileWithDir(path, []byte("x"), 0600, 0700))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	dirInfo, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), dirInfo.Mode().Perm())
}

func TestAtomicWriteFile_FailsWhenParentIsFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	err := AtomicWriteFile(filepath.Join(blocker, "config.toml"), []byte("x"), 0600)

	assert.Error(t, err)
}
