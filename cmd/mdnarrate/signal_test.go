package main

// Notes:
// - notifyContext: we test context creation, cancellation via stop(), and
//   parent propagation. Real signal delivery is covered for SIGHUP on Unix
//   in signal_unix_test.go.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"os"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestNotifyContext - Context creation and cancellation behavior
// ---------------------------------------------------------------------------

func TestNotifyContext(t *testing.T) {
	t.Parallel()

	t.Run("starts not cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, stop := notifyContext(context.Background())
		defer stop()

		select {
		case <-ctx.Done():
			t.Fatal("context should not be cancelled initially")
		default:
		}
	})

	t.Run("stop cancels", func(t *testing.T) {
		t.Parallel()

		ctx, stop := notifyContext(context.Background())
		stop()

		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
			t.Fatal("context should be cancelled after stop()")
		}
	})

	t.Run("parent cancellation propagates", func(t *testing.T) {
		t.Parallel()

		parent, cancel := context.WithCancel(context.Background())
		ctx, stop := notifyContext(parent)
		defer stop()

		cancel()
		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
			t.Fatal("context should be cancelled with its parent")
		}
	})
}

func TestStopSignals_IncludeInterrupt(t *testing.T) {
	t.Parallel()

	for _, s := range stopSignals {
		if s == os.Interrupt {
			return
		}
	}
	t.Errorf("stopSignals = %v, want os.Interrupt", stopSignals)
}
