// Package ringalloc implements a single-writer ring allocator: it
// carves variable-sized byte buffers out of a fixed, contiguous
// backing region, hands each buffer to a producer for filling, and
// optionally freezes it into a reference-counted, shareable snapshot
// that can cross goroutine boundaries.
//
// Ringalloc offers zero-lock allocation on the producer side and a
// lock-free release path on the consumer side: any goroutine holding
// a SharedBuffer may clone or release it without coordinating with
// the Ring's owner. When every holder of a buffer releases it, the
// underlying storage becomes eligible for reuse by the next
// allocation from the same Ring.
//
// # Quick Start
//
// Build a Ring and allocate a fixed-size buffer:
//
//	ring, err := ringalloc.New(64 * 1024)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer ring.Close()
//
//	buf, err := ring.Fixed(128)
//	if err != nil {
//		log.Fatal(err)
//	}
//	copy(buf.Bytes(), []byte("hello"))
//	shared := buf.Freeze()
//	defer shared.Release()
//
// # Streaming Writes
//
// For messages whose size isn't known up front, Writer grows into
// adjacent free space transparently and satisfies io.Writer:
//
//	w, err := ring.Writer(32)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if _, err := w.Write(payload); err != nil {
//		log.Fatal(err)
//	}
//	mutable := w.Finish()
//	shared := mutable.Freeze()
//
// # Cross-Goroutine Sharing
//
// A SharedBuffer may be cloned and released from any goroutine; the
// producer never needs to coordinate with consumers to reclaim
// storage once the last clone is released:
//
//	for i := 0; i < 64; i++ {
//		clone := shared.Clone()
//		go func() {
//			defer clone.Release()
//			process(clone.Bytes())
//		}()
//	}
//
// # Size-String Construction
//
// NewFromSize accepts the same human-friendly size strings as the
// rest of the AGILira ecosystem ("64KB", "2MB", "1GB", single-letter
// suffixes, case-insensitive):
//
//	ring, err := ringalloc.NewFromSize("2MB")
//
// # Metrics
//
// Attaching a *Metrics exposes allocation outcomes, jams, extends,
// and bytes-in-use as Prometheus collectors:
//
//	metrics := ringalloc.NewMetrics(prometheus.DefaultRegisterer, "myapp")
//	ring, err := ringalloc.NewWithMetrics(1<<20, metrics)
//
// # Jam Diagnostics
//
// Ring.OnJam is invoked on the owning goroutine whenever a scan is
// blocked by a busy segment rather than genuine exhaustion — useful
// for surfacing "one long-lived buffer is jamming the ring" as a
// structured log line rather than a silent allocation failure:
//
//	ring.OnJam = func(requestedBytes int) {
//		logger.Warn("ring jammed", zap.Int("requested_bytes", requestedBytes))
//	}
//
// # Concurrency Model
//
// A Ring is owned exclusively by one producer goroutine: allocation,
// the coalescing scan, extend-in-place, and Writer operations must
// all happen on that goroutine. Consumers — any number of other
// goroutines — may hold, clone, and release SharedBuffers freely.
// This asymmetry is deliberate: it is what lets the release path skip
// synchronizing with the producer entirely, at the cost of ruling out
// multi-writer allocation.
//
// # Non-goals
//
// This package does not defragment or compact the ring, does not
// guarantee allocation fairness (a single long-lived buffer that lies
// in the scan's path jams the ring by design), and is not a
// general-purpose heap replacement. See the Ring.OnJam hook and the
// ringalloc_jam_total metric for observing exactly this condition.
package ringalloc
