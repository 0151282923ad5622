package finddup

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// Closing the shutdown channel while workers are hashing stops the run with ErrInterrupted
func TestGracefulShutdownDuringHash(t *testing.T) {
	tempDir := t.TempDir()
	content := strings.Repeat("z", 4*hashReadBuffer)
	for i := 0; i < 200; i++ {
		writeFile(t, filepath.Join(tempDir, fmt.Sprintf("d%02d", i%10), fmt.Sprintf("f%03d.bin", i)), content)
	}

	config := NewDefaultConfig()
	if err := config.ApplyOverrides([]string{"strategy:md5", "blocksize:1M", "hash_workers:4"}); err != nil {
		t.Fatalf("ApplyOverrides failed: %v", err)
	}
	finder, err := NewFinder(config)
	if err != nil {
		t.Fatalf("NewFinder failed: %v", err)
	}

	shutdown := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := finder.FindDuplicates([]string{tempDir}, shutdown)
		done <- err
	}()

	close(shutdown)

	select {
	case err := <-done:
		// A run that completed before the signal was seen is also acceptable
		if err != nil && !errors.Is(err, ErrInterrupted) {
			t.Errorf("Expected ErrInterrupted, got %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("FindDuplicates did not return after shutdown")
	}
}

// The first key error stops the worker pool and is returned
func TestParallelStopsOnFirstError(t *testing.T) {
	tempDir := t.TempDir()
	for i := 0; i < 50; i++ {
		writeFile(t, filepath.Join(tempDir, fmt.Sprintf("f%02d.bin", i)), "data")
	}

	config := NewDefaultConfig()
	if err := config.ApplyOverrides([]string{"strategy:md5", "hash_workers:4"}); err != nil {
		t.Fatalf("ApplyOverrides failed: %v", err)
	}
	finder, err := NewFinder(config)
	if err != nil {
		t.Fatalf("NewFinder failed: %v", err)
	}

	// Every key computation fails; the walk itself is not interrupted
	closed := make(chan struct{})
	close(closed)
	strategy := finder.strategy.WithShutdown(closed)
	grouper := NewGrouper(strategy, false)

	err = finder.groupParallel([]string{tempDir}, grouper, strategy, nil)
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("Expected the key error to be returned, got %v", err)
	}
	if !strings.Contains(err.Error(), "failed to compute md5 key") {
		t.Errorf("Expected the grouper error, got %v", err)
	}
	if grouper.Files() != 1 {
		t.Errorf("Expected accumulation to stop after the first error, got %d files", grouper.Files())
	}
}
