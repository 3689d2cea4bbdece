package main

import (
	"errors"
	"os"

	mdnarrate "github.com/alnah/go-mdnarrate"
	"github.com/alnah/go-mdnarrate/internal/config"
	"github.com/alnah/go-mdnarrate/internal/hints"
)

// Exit codes for the mdnarrate CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Clean exit
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome or web surface errors
	ExitSpeech  = 5 // Speech engine errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Speech errors (exit 5)
	if errors.Is(err, mdnarrate.ErrUnknownEngine) ||
		errors.Is(err, mdnarrate.ErrEngineUnavailable) {
		return ExitSpeech
	}

	// Browser errors (exit 4)
	if errors.Is(err, mdnarrate.ErrBrowserConnect) ||
		errors.Is(err, mdnarrate.ErrPageCreate) ||
		errors.Is(err, mdnarrate.ErrPageLoad) ||
		errors.Is(err, mdnarrate.ErrScript) ||
		errors.Is(err, mdnarrate.ErrSurfaceServe) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, mdnarrate.ErrFileNotFound) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, mdnarrate.ErrStyleNotFound) ||
		errors.Is(err, mdnarrate.ErrTemplateNotFound) ||
		errors.Is(err, mdnarrate.ErrInvalidAssetPath) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, ErrUsage) {
		return ExitUsage
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	var notFound *config.NotFoundError
	var engineErr *engineError
	switch {
	case errors.As(err, &engineErr):
		return hints.ForEngine(engineErr.name)
	case errors.Is(err, mdnarrate.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.As(err, &notFound):
		return hints.ForConfigNotFound(notFound.Tried)
	case errors.Is(err, mdnarrate.ErrStyleNotFound):
		return hints.ForStyleNotFound(mdnarrate.StyleNames())
	}
	return ""
}

// engineError records which engine failed to start, for hints.
type engineError struct {
	name string
	err  error
}

func (e *engineError) Error() string {
	return "speech engine " + e.name + ": " + e.err.Error()
}

func (e *engineError) Unwrap() error { return e.err }
