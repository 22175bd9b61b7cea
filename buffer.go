// buffer.go: mutable and shared buffer lifecycle stages
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ringalloc

import "sync/atomic"

// MutableBuffer is the owner-exclusive lifecycle stage of a finalized
// segment: produced by Writer.Finish, Ring.Fixed, or Ring.FixedUninit.
// It must be resolved exactly once, either by Freeze (promoting it to
// a SharedBuffer) or by Release (returning the segment to the ring).
// A MutableBuffer left unresolved leaks its segment forever — Go has
// no destructor to fall back on, unlike the Rust source this design
// is ported from.
type MutableBuffer struct {
	ring     *Ring
	hdr      header
	data     []byte
	capBytes int
	resolved bool
}

// Bytes returns the buffer's payload. The returned slice aliases the
// ring's backing storage and is valid until Freeze or Release is
// called.
func (b *MutableBuffer) Bytes() []byte {
	return b.data
}

// Len returns the number of bytes this buffer exposes.
func (b *MutableBuffer) Len() int {
	return len(b.data)
}

// Freeze transitions the buffer to a refcounted SharedBuffer without
// touching the segment's busy bit. The out-of-band refcount starts at
// 1; the MutableBuffer must not be used again after this call.
func (b *MutableBuffer) Freeze() *SharedBuffer {
	rc := new(atomic.Uint32)
	rc.Store(1)
	shared := &SharedBuffer{
		hdr:      b.hdr,
		data:     b.data,
		rc:       rc,
		ring:     b.ring,
		capBytes: b.capBytes,
	}
	b.resolved = true // suppress Release's clearBusy: Shared now owns the segment
	return shared
}

// Release returns the segment to the ring without freezing it,
// clearing the busy bit so a future scan may reuse the storage. It is
// idempotent; calling it after Freeze is a no-op.
func (b *MutableBuffer) Release() {
	if b.resolved {
		return
	}
	b.resolved = true
	b.hdr.clearBusy()
	if b.ring != nil && b.ring.metrics != nil {
		b.ring.metrics.addBytesInUse(-int64(b.capBytes))
	}
}

// SharedBuffer is a refcounted, read-only snapshot of a finalized
// segment. It may be cloned and released from any goroutine; no
// operation it exposes takes a lock.
type SharedBuffer struct {
	hdr      header
	data     []byte
	rc       *atomic.Uint32
	ring     *Ring
	capBytes int
}

// Bytes returns the buffer's payload. By contract it is read-only:
// callers must not mutate the returned slice, since it may be aliased
// by other clones on other goroutines.
func (s *SharedBuffer) Bytes() []byte {
	return s.data
}

// Len returns the number of bytes this buffer exposes.
func (s *SharedBuffer) Len() int {
	return len(s.data)
}

// Clone increments the shared refcount and returns a new handle over
// the same segment. The returned handle must itself be released
// exactly once.
func (s *SharedBuffer) Clone() *SharedBuffer {
	s.rc.Add(1)
	return &SharedBuffer{
		hdr:      s.hdr,
		data:     s.data,
		rc:       s.rc,
		ring:     s.ring,
		capBytes: s.capBytes,
	}
}

// Release drops this handle's reference. If it was the last live
// reference, the segment's busy bit is cleared, making its storage
// eligible for reuse by the owning Ring's next scan. Safe to call
// from any goroutine, including one different from the one that
// cloned or froze this handle.
func (s *SharedBuffer) Release() {
	for {
		count := s.rc.Load()
		if count == 1 {
			break
		}
		if s.rc.CompareAndSwap(count, count-1) {
			return
		}
	}
	s.hdr.clearBusy()
	if s.ring != nil && s.ring.metrics != nil {
		s.ring.metrics.addBytesInUse(-int64(s.capBytes))
	}
}
