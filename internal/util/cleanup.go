package util

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
)

// SetupInterruptHandler cancels the returned context on the first
// SIGINT/SIGTERM so running fetches wind down. A second signal runs cleanup
// and exits at once.
func SetupInterruptHandler(parent context.Context, cleanup func()) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sig := make(chan os.Signal, 2)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sig:
		case <-ctx.Done():
			signal.Stop(sig)
			return
		}
		fmt.Fprintln(os.Stderr, "\nInterrupt received. Finishing current work...")
		cancel()

		<-sig
		fmt.Fprintln(os.Stderr, "\nExiting due to interrupt.")
		if cleanup != nil {
			cleanup()
		}
		os.Exit(1)
	}()

	return ctx, cancel
}

// CleanupTempFiles removes files ending in suffix left behind by writes that
// never reached their rename. It returns the removed paths.
func CleanupTempFiles(suffix string, dirs ...string) []string {
	var removed []string
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}

		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) {
				continue
			}
			full := filepath.Join(dir, e.Name())
			if err := os.Remove(full); err == nil {
				removed = append(removed, full)
			}
		}
	}

	return removed
}

// RemoveIfEmpty deletes dir when nothing was written into it.
func RemoveIfEmpty(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return false
	}
	return os.Remove(dir) == nil
}
