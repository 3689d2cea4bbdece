//go:build windows

package main

import (
	"context"
	"os"
	"os/signal"
)

// stopSignals end the viewer. Windows only delivers os.Interrupt (Ctrl+C).
var stopSignals = []os.Signal{os.Interrupt}

// notifyContext returns a context canceled on Ctrl+C so the console,
// narration, and surfaces shut down in order. Call stop() to restore
// default signal handling.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, stopSignals...)
}
