//go:build cgo && !purego
// +build cgo,!purego

package store

// This file is compiled when building with CGO enabled. It uses the C SQLite
// implementation for the fastest in-memory store.
//
// Driver used: github.com/mattn/go-sqlite3

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite3"

	// BuildMode describes the current build configuration
	BuildMode = "cgo"
)
