// ring.go: single-writer ring allocator
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ringalloc

import (
	"encoding/binary"
	"fmt"
	"math/bits"
	"time"

	timecache "github.com/agilira/go-timecache"
)

// Ring owns a contiguous backing region of 4-byte cells and carves
// variable-sized buffers out of it for a single owning goroutine.
// A Ring is not safe for concurrent allocation: only one goroutine —
// the producer — may call its allocation methods. The buffers it
// hands out may be frozen into SharedBuffers and released from any
// goroutine; see buffer.go and the package doc for the full contract.
//
// The zero value is not usable; construct with New or NewFromSize.
type Ring struct {
	storage []byte // backing region, len == total cells * cellBytes
	start   int    // byte offset of the first cell (always 0)
	end     int    // byte offset one past the last cell
	head    int    // byte offset where the next scan begins

	// OnJam, if set, is invoked on the owning goroutine whenever a
	// scan is blocked by a busy segment rather than by genuine
	// exhaustion. It must not call back into the Ring.
	OnJam func(requestedBytes int)

	metrics   *Metrics
	timeCache *timecache.TimeCache
}

// New constructs a Ring with at least capacityBytes of addressable
// region, rounded up internally to a power-of-two number of cells.
// capacityBytes must be strictly larger than one header cell plus the
// minimum segment payload.
func New(capacityBytes int) (*Ring, error) {
	if capacityBytes <= cellBytes+minCapacity*cellBytes {
		return nil, fmt.Errorf("ringalloc: capacity %d bytes too small: %w", capacityBytes, ErrOutOfRange)
	}

	cellsRequested := uint64(capacityBytes+cellBytes-1) / cellBytes
	cells := nextPow2(cellsRequested)

	storage := make([]byte, int(cells)*cellBytes)
	for i := uint64(0); i < cells; i++ {
		remaining := cells - i - 1
		cap32 := uint32(remaining)
		if remaining > maxCapacity {
			cap32 = maxCapacity
		}
		binary.LittleEndian.PutUint32(storage[int(i)*cellBytes:], cap32<<1)
	}

	return &Ring{
		storage: storage,
		start:   0,
		end:     len(storage),
		head:    0,
	}, nil
}

// NewWithMetrics behaves like New but attaches m to the Ring so that
// allocation outcomes, jams, and extends are recorded on it.
func NewWithMetrics(capacityBytes int, m *Metrics) (*Ring, error) {
	r, err := New(capacityBytes)
	if err != nil {
		return nil, err
	}
	r.metrics = m
	if m != nil {
		r.timeCache = timecache.NewWithResolution(time.Millisecond)
	}
	return r, nil
}

// Close releases background resources owned by the Ring (currently,
// the cached-time ticker used by attached metrics). It does not touch
// any outstanding buffer; calling it while buffers are still live is
// safe, since the backing storage is only ever reclaimed by the
// ordinary free/reuse protocol, never by Close.
func (r *Ring) Close() {
	if r.timeCache != nil {
		r.timeCache.Stop()
	}
}

// nextPow2 returns the smallest power of two >= x, with a floor of 1.
func nextPow2(x uint64) uint64 {
	if x <= 1 {
		return 1
	}
	return 1 << (64 - bits.LeadingZeros64(x-1))
}

// ceilCells returns the number of whole cells needed to hold n bytes.
func ceilCells(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + cellBytes - 1) / cellBytes
}

// allocate runs the scan/coalesce algorithm and reserves a segment of
// at least minBytes. It returns the segment's header, the byte offset
// of that header cell, and the capacity (in cells) ultimately granted
// — which may exceed the request when a small remainder was absorbed.
func (r *Ring) allocate(minBytes int) (header, int, uint32, error) {
	cells := ceilCells(minBytes)
	if cells < minCapacity {
		cells = minCapacity
	}
	if cells >= maxCapacity {
		if r.metrics != nil {
			r.metrics.recordAlloc("out_of_range")
		}
		return header{}, 0, 0, fmt.Errorf("ringalloc: requested %d bytes: %w", minBytes, ErrOutOfRange)
	}

	hdr, off, capCells, err := r.advance(uint32(cells))
	if err != nil {
		return header{}, 0, 0, err
	}
	if r.metrics != nil {
		r.metrics.recordAlloc("ok")
		r.metrics.addBytesInUse(int64(capCells) * cellBytes)
	}
	return hdr, off, capCells, nil
}

// advance performs the head-advancing scan: it accumulates the
// capacity of consecutive free segments starting at r.head until
// either enough space has been found, a busy segment blocks progress,
// the scan wraps past r.end once, or it returns to its starting point
// without success.
func (r *Ring) advance(capacity uint32) (header, int, uint32, error) {
	origHead := r.head
	current := r.head
	var accumulated uint32
	var wrapped bool

	for {
		h := headerAt(r.storage, current)
		if !h.isFree() {
			if r.metrics != nil {
				r.metrics.recordAlloc("ring_full")
				r.metrics.recordJam()
				r.metrics.setLastJam(r.timeCache)
			}
			if r.OnJam != nil {
				r.OnJam(int(capacity) * cellBytes)
			}
			return header{}, 0, 0, fmt.Errorf("ringalloc: scan blocked by busy segment: %w", ErrRingFull)
		}

		size := h.capacity()
		accumulated += size
		if accumulated >= capacity {
			break
		}

		next := current + cellBytes + int(size)*cellBytes
		accumulated++ // the interior header cell joins payload

		if next >= r.end {
			accumulated = 0
			wrapped = true
			current = r.start
		} else {
			current = next
		}

		if current == origHead {
			if r.metrics != nil {
				r.metrics.recordAlloc("ring_full")
			}
			return header{}, 0, 0, fmt.Errorf("ringalloc: exhausted ring scanning for %d cells: %w", capacity, ErrRingFull)
		}
	}

	if wrapped {
		r.head = r.start
	}

	allocOff := r.head
	hdr := headerAt(r.storage, allocOff)

	var granted uint32
	if accumulated-capacity <= minCapacity {
		granted = accumulated
	} else {
		granted = capacity
	}
	hdr.store(granted)

	next := allocOff + cellBytes + int(granted)*cellBytes
	if next >= r.end {
		r.head = r.start
	} else {
		r.head = next
		if remainder := accumulated - granted; remainder > 0 {
			tail := headerAt(r.storage, r.head)
			// The tail's own header cell comes out of the leftover
			// cells, so its payload is one cell less. Clamp so the
			// tail header never claims cells past r.end.
			remainder--
			distance := uint32((r.end-r.head)/cellBytes) - 1
			if remainder > distance {
				remainder = distance
			}
			tail.store(remainder)
		}
	}

	return hdr, allocOff, granted, nil
}

// extend grows the segment described by hdr/off/currentCap by
// allocating a fresh adjacent segment and folding it into hdr. It
// requires the new segment to be physically contiguous with the
// current one; if the scan wrapped and landed elsewhere, extend fails
// with ErrRingFull rather than silently spanning reclaimed storage.
func (r *Ring) extend(hdr header, off int, currentCap uint32, extraBytes int) (uint32, error) {
	expected := off + cellBytes + int(currentCap)*cellBytes

	_, newOff, newCap, err := r.allocate(extraBytes - cellBytes)
	if err != nil {
		if r.metrics != nil {
			r.metrics.recordExtend("full")
		}
		return 0, fmt.Errorf("ringalloc: extend: %w", err)
	}

	if newOff != expected {
		if r.metrics != nil {
			r.metrics.recordExtend("full")
			r.metrics.addBytesInUse(-int64(newCap) * cellBytes)
		}
		return 0, fmt.Errorf("ringalloc: extend: new segment at %d not adjacent to %d: %w", newOff, expected, ErrRingFull)
	}

	combined := newCap + 1 + currentCap
	hdr.store(combined)
	if r.metrics != nil {
		r.metrics.recordExtend("ok")
		r.metrics.addBytesInUse(cellBytes) // the interior header cell is now payload
	}
	return combined, nil
}

// Writer reserves a segment of at least minBytes and returns a
// streaming handle that transparently grows into adjacent free space
// as the caller writes past the segment's current capacity.
func (r *Ring) Writer(minBytes int) (*Writer, error) {
	hdr, off, capCells, err := r.allocate(minBytes)
	if err != nil {
		return nil, err
	}
	return &Writer{
		ring:     r,
		hdr:      hdr,
		off:      off,
		capacity: int(capCells) * cellBytes,
	}, nil
}

// Fixed allocates one segment of at least minBytes, zero-fills it,
// and returns a MutableBuffer whose length is exactly minBytes.
func (r *Ring) Fixed(minBytes int) (*MutableBuffer, error) {
	return r.fixed(minBytes, true)
}

// FixedUninit behaves like Fixed but skips zero-filling the payload.
// The caller must fully overwrite the returned buffer before reading
// any part of it; reading before writing observes arbitrary leftover
// bytes from a previous tenant of this storage.
func (r *Ring) FixedUninit(minBytes int) (*MutableBuffer, error) {
	return r.fixed(minBytes, false)
}

func (r *Ring) fixed(minBytes int, zero bool) (*MutableBuffer, error) {
	if minBytes <= 0 {
		if r.metrics != nil {
			r.metrics.recordAlloc("out_of_range")
		}
		return nil, fmt.Errorf("ringalloc: requested %d bytes: %w", minBytes, ErrOutOfRange)
	}
	hdr, off, capCells, err := r.allocate(minBytes)
	if err != nil {
		return nil, err
	}
	hdr.setBusy()

	payloadStart := payloadOffset(off)
	data := r.storage[payloadStart : payloadStart+minBytes]
	if zero {
		for i := range data {
			data[i] = 0
		}
	}
	return &MutableBuffer{
		ring:     r,
		hdr:      hdr,
		data:     data,
		capBytes: int(capCells) * cellBytes,
	}, nil
}
