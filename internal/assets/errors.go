package assets

import "errors"

// Sentinel errors for theme and template loading.
var (
	ErrStyleNotFound    = errors.New("style not found")
	ErrTemplateNotFound = errors.New("template not found")

	// ErrInvalidAssetName covers names with separators, dots, or nothing at all.
	ErrInvalidAssetName = errors.New("invalid asset name")

	// ErrInvalidBasePath means the custom asset directory is missing or unreadable.
	ErrInvalidBasePath = errors.New("invalid base path")

	ErrAssetRead = errors.New("failed to read asset")

	// ErrPathTraversal reports a resolved file outside the asset directory,
	// for example through a symlink.
	ErrPathTraversal = errors.New("path traversal detected")
)
