// ringalloc-demo: producer/consumer demonstration of a Ring
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"os"

	flashflags "github.com/agilira/flash-flags"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agilira/ringalloc"
)

func main() {
	fs := flashflags.New("ringalloc-demo")
	capacity := fs.Int("capacity", 1<<20, "ring capacity in bytes")
	message := fs.String("message", "the quick brown fox jumps over the lazy dog", "message the producer writes")
	consumers := fs.Int("consumers", 8, "number of consumer goroutines")
	chunk := fs.Int("chunk", 64, "minimum bytes requested per producer write")

	if err := fs.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "parse flags:", err)
		os.Exit(2)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, "build logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(*capacity, *message, *consumers, *chunk, logger); err != nil {
		logger.Error("demo failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(capacityBytes int, message string, consumerCount, chunkBytes int, logger *zap.Logger) error {
	metrics := ringalloc.NewMetrics(prometheus.NewRegistry(), "ringalloc_demo")
	ring, err := ringalloc.NewWithMetrics(capacityBytes, metrics)
	if err != nil {
		return fmt.Errorf("new ring: %w", err)
	}
	defer ring.Close()

	ring.OnJam = func(requestedBytes int) {
		logger.Warn("ring jammed", zap.Int("requested_bytes", requestedBytes))
	}

	w, err := ring.Writer(chunkBytes)
	if err != nil {
		return fmt.Errorf("new writer: %w", err)
	}
	if _, err := w.Write([]byte(message)); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	buf := w.Finish()
	shared := buf.Freeze()
	defer shared.Release()

	var g errgroup.Group
	for i := 0; i < consumerCount; i++ {
		id := i
		clone := shared.Clone()
		g.Go(func() error {
			defer clone.Release()
			logger.Info("consumer observed buffer",
				zap.Int("consumer_id", id),
				zap.Int("bytes", clone.Len()),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("consumer: %w", err)
	}

	logger.Info("demo complete", zap.Time("last_jam", metrics.LastJam()))
	return nil
}
