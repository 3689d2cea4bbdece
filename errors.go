package mdnarrate

import "errors"

// Sentinel errors for library operations.
var (
	// ErrFileNotFound indicates a document path that does not exist.
	// It also matches fs.ErrNotExist.
	ErrFileNotFound = errors.New("file does not exist")

	ErrHTMLConversion = errors.New("HTML conversion failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrScript         = errors.New("browser script failed")

	// Speech engine errors.
	ErrUnknownEngine     = errors.New("unknown speech engine")
	ErrEngineUnavailable = errors.New("speech engine unavailable")

	// Controller errors.
	ErrControllerClosed = errors.New("controller closed")
	ErrUnknownCommand   = errors.New("unknown command")
	ErrInvalidArgument  = errors.New("invalid command argument")

	// ErrSurfaceServe indicates the web surface could not listen.
	ErrSurfaceServe = errors.New("web surface failed to listen")

	// Asset loading errors.
	ErrStyleNotFound    = errors.New("style not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidAssetPath = errors.New("invalid asset path")
)
