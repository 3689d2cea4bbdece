// Package process controls speech and browser child processes as groups:
// start them in their own group, suspend and resume them for paused
// narration, and kill the whole tree on cancel.
package process

import "errors"

// ErrUnsupported indicates the platform cannot suspend a running process.
var ErrUnsupported = errors.New("process suspension not supported on this platform")
