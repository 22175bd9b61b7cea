// concurrency_test.go
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ringalloc

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"
)

// TestCrossThreadDrop is scenario S5: 64 consumers clone a frozen
// shared buffer, assert its content, and drop it from their own
// goroutines. While any consumer still holds a reference, an
// allocation sized to consume the rest of the ring must fail; once
// every consumer has released, a smaller allocation succeeds.
func TestCrossThreadDrop(t *testing.T) {
	defer goleak.VerifyNone(t)

	const ringSize = 4096
	const msgSize = 32
	const consumers = 64

	r, err := New(ringSize)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	buf, err := r.Fixed(msgSize)
	if err != nil {
		t.Fatalf("Fixed: %v", err)
	}
	msg := bytes.Repeat([]byte{0x5a}, msgSize)
	copy(buf.Bytes(), msg)
	shared := buf.Freeze()

	var ready sync.WaitGroup
	var release sync.WaitGroup
	ready.Add(consumers)
	release.Add(1)

	var g errgroup.Group
	for i := 0; i < consumers; i++ {
		clone := shared.Clone()
		g.Go(func() error {
			defer clone.Release()
			if !bytes.Equal(clone.Bytes(), msg) {
				return errors.New("consumer observed corrupted content")
			}
			ready.Done()
			release.Wait()
			return nil
		})
	}

	ready.Wait()
	shared.Release() // the producer's own reference

	if _, err := r.Fixed(ringSize - msgSize); err == nil {
		t.Fatalf("allocation succeeded while 64 consumers still held references, want ErrRingFull")
	} else if !errors.Is(err, ErrRingFull) {
		t.Fatalf("allocation error = %v, want ErrRingFull", err)
	}

	release.Done()
	if err := g.Wait(); err != nil {
		t.Fatalf("consumer goroutine failed: %v", err)
	}

	// A modest allocation, not the full remainder, since the original
	// segment's storage and the scan's head position are not
	// contiguous across the ring's wrap point.
	if _, err := r.Fixed(ringSize / msgSize); err != nil {
		t.Fatalf("allocation failed after every consumer released: %v", err)
	}
}
