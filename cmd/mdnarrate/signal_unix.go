//go:build !windows

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// stopSignals end the viewer: interrupt, termination, and a closed terminal.
var stopSignals = []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGHUP}

// notifyContext returns a context canceled on the first stop signal so the
// console, narration, and surfaces shut down in order. Call stop() to
// restore default signal handling.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, stopSignals...)
}
