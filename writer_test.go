// writer_test.go
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ringalloc

import (
	"bytes"
	"errors"
	"testing"
)

func TestWriterRoundTrip(t *testing.T) {
	r, err := New(4096)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	msg := bytes.Repeat([]byte("ringalloc"), 50)
	w, err := r.Writer(16)
	if err != nil {
		t.Fatalf("Writer: %v", err)
	}
	if _, err := w.Write(msg); err != nil {
		t.Fatalf("Write: %v", err)
	}
	buf := w.Finish()
	shared := buf.Freeze()
	defer shared.Release()

	if !bytes.Equal(shared.Bytes(), msg) {
		t.Fatalf("round trip mismatch: got %d bytes, want %d", len(shared.Bytes()), len(msg))
	}
}

// TestWriteAtExactCapacityNoExtend is invariant 9: a write that
// exactly fills the writer's current capacity must not trigger extend.
func TestWriteAtExactCapacityNoExtend(t *testing.T) {
	r, err := New(1024)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	w, err := r.Writer(32) // rounds up to minCapacity*cellBytes = 32
	if err != nil {
		t.Fatalf("Writer: %v", err)
	}
	startCap := w.capacity

	exact := make([]byte, startCap)
	if _, err := w.Write(exact); err != nil {
		t.Fatalf("Write exact-capacity payload: %v", err)
	}
	if w.capacity != startCap {
		t.Fatalf("capacity changed from %d to %d on an exact-fit write, want unchanged", startCap, w.capacity)
	}
}

func TestWriteAfterFinishFails(t *testing.T) {
	r, err := New(1024)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	w, err := r.Writer(16)
	if err != nil {
		t.Fatalf("Writer: %v", err)
	}
	w.Finish()

	if _, err := w.Write([]byte("x")); err == nil {
		t.Fatalf("Write after Finish succeeded, want error")
	}
}

func TestWriteRespectsMaxCapacity(t *testing.T) {
	r, err := New(1024)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	w, err := r.Writer(16)
	if err != nil {
		t.Fatalf("Writer: %v", err)
	}
	w.written = maxCapacityBytes

	_, err = w.Write([]byte("x"))
	if err == nil || !errors.Is(err, ErrMaxExceeded) {
		t.Fatalf("Write at MaxCapacity error = %v, want ErrMaxExceeded", err)
	}
}

// TestExtendRejectsNonAdjacentSegment exercises the adjacency check
// this spec adds to extend: a freshly allocated segment that does not
// start exactly where the current segment ends must be rejected even
// though, taken alone, it would satisfy the byte request.
func TestExtendRejectsNonAdjacentSegment(t *testing.T) {
	r, err := New(1024)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	hdr, off, capCells, err := r.allocate(32)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}

	// Force the next advance() to land somewhere other than
	// immediately after this segment by reserving the adjacent span.
	if _, err := r.Fixed(minCapacity * cellBytes); err != nil {
		t.Fatalf("Fixed adjacent span: %v", err)
	}

	if _, err := r.extend(hdr, off, capCells, 64); err == nil {
		t.Fatalf("extend across a reserved adjacent segment succeeded, want ErrRingFull")
	} else if !errors.Is(err, ErrRingFull) {
		t.Fatalf("extend error = %v, want ErrRingFull", err)
	}
}

// TestExtendRejectsAfterWrap forces the ring to physically wrap between
// creating a segment and extending it, so the scan that backs extend
// lands back at r.start instead of immediately after the segment.
func TestExtendRejectsAfterWrap(t *testing.T) {
	r, err := New(1024)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	hdr, off, capCells, err := r.allocate(32)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}

	// Reserve the rest of the ring (raw allocate, left non-busy) in one
	// call so its end lands exactly at r.end, wrapping head to r.start.
	if _, _, _, err := r.allocate(246 * cellBytes); err != nil {
		t.Fatalf("allocate(tail): %v", err)
	}

	if _, err := r.extend(hdr, off, capCells, 64); err == nil {
		t.Fatalf("extend after a ring wrap succeeded, want ErrRingFull")
	} else if !errors.Is(err, ErrRingFull) {
		t.Fatalf("extend error = %v, want ErrRingFull", err)
	}
}
