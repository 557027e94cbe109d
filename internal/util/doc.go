// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small filesystem helpers.
//
//	// Replace the config file without leaving a half-written copy behind
//	err := util.AtomicWriteFile(path, data, 0600)
package util
