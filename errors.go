// errors.go: allocator error kinds
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ringalloc

import (
	"errors"

	goerrors "github.com/agilira/go-errors"
)

// Pre-allocated sentinel errors, matching the hot-path-allocation
// avoidance the teacher library applies to its own errNoCurrentFile.
var (
	// ErrOutOfRange is returned when a requested size is zero,
	// negative, or beyond MaxCapacity.
	ErrOutOfRange = errors.New("ringalloc: requested size out of range")

	// ErrRingFull is returned when the scan cannot satisfy a request,
	// whether because a busy segment blocked progress (a jam) or
	// because free space is genuinely exhausted.
	ErrRingFull = errors.New("ringalloc: ring full")

	// ErrMaxExceeded is returned when a streaming write would grow a
	// buffer past MaxCapacity*cellBytes.
	ErrMaxExceeded = errors.New("ringalloc: maximum buffer size exceeded")
)

// wrapWriteError enriches an error surfaced through Writer.Write with
// the stack-aware context agilira/go-errors provides, so that callers
// debugging a RingFull from deep inside a streaming-writer chain get
// more than a bare sentinel while errors.Is(err, ErrRingFull) still
// succeeds.
func wrapWriteError(op string, err error) error {
	if err == nil {
		return nil
	}
	return goerrors.Wrap(err, op)
}
