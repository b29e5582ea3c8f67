// Copyright 2026 The Signet Authors
// SPDX-License-Identifier: Apache-2.0

// Package keystore writes Signet's key material to disk. It ensures the
// key directory exists, restricts it to owner-only access where the
// filesystem allows, and writes key files with a requested permission
// mode, falling back to the default mode when the restricted write is
// rejected.
//
// The two failure policies are deliberately asymmetric: permission
// hardening is advisory (a failed chmod is reported, not fatal), while
// data durability is mandatory (a write that fails under both the
// requested and the default mode aborts the provisioning run).
package keystore

import (
	"fmt"
	"os"
)

// DefaultFileMode is the mode used when a write with the requested mode
// fails and the single fallback attempt is made.
const DefaultFileMode os.FileMode = 0644

// directoryMode is the owner-only mode applied to the key directory.
const directoryMode os.FileMode = 0700

// Test seams for simulating filesystems that reject modes or writes.
var (
	mkdirAll  = os.MkdirAll
	chmod     = os.Chmod
	writeFile = os.WriteFile
)

// WriteError reports that a file write failed under both the requested
// mode and the default-mode fallback. The key material did not reach
// disk.
type WriteError struct {
	// Path is the destination that could not be written.
	Path string

	// Mode is the originally requested permission mode.
	Mode os.FileMode

	// Err is the failure of the write with the requested mode.
	Err error

	// FallbackErr is the failure of the retry with DefaultFileMode.
	FallbackErr error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s with mode %04o: %v (retry with mode %04o: %v)", e.Path, e.Mode, e.Err, DefaultFileMode, e.FallbackErr)
}

func (e *WriteError) Unwrap() error { return e.FallbackErr }

// EnsureDirectory creates the directory at path, including parents, with
// owner-only permissions. Existing directories are left in place. A
// failure here is fatal: without the directory nothing can be persisted.
func EnsureDirectory(path string) error {
	if err := mkdirAll(path, directoryMode); err != nil {
		return fmt.Errorf("creating key directory %s: %w", path, err)
	}
	return nil
}

// Harden restricts the directory at path to owner-only access. MkdirAll
// applies the umask and leaves pre-existing directories untouched, so
// this is a separate step. Callers treat a failure as a degradation, not
// an abort: on filesystems without a POSIX permission model the default
// permissions stand and provisioning continues.
func Harden(path string) error {
	if err := chmod(path, directoryMode); err != nil {
		return fmt.Errorf("restricting %s to owner-only access: %w", path, err)
	}
	return nil
}

// WriteProtected writes data to path with the requested mode. If that
// write fails (restricted modes are not supported everywhere), it retries
// once with DefaultFileMode and reports the fallback via fellBack so the
// caller can surface the degradation. If the retry also fails the
// returned error is a *WriteError and the run must abort: unlike
// hardening, the data either reaches disk or the caller knows it didn't.
func WriteProtected(path string, data []byte, mode os.FileMode) (fellBack bool, err error) {
	firstErr := writeFile(path, data, mode)
	if firstErr == nil {
		return false, nil
	}

	if fallbackErr := writeFile(path, data, DefaultFileMode); fallbackErr != nil {
		return false, &WriteError{Path: path, Mode: mode, Err: firstErr, FallbackErr: fallbackErr}
	}
	return true, nil
}
