// Package fileutil provides file and path helpers shared by the converter,
// the browser surface, and the CLI.
package fileutil

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for file utility operations.
var (
	ErrExtensionEmpty         = errors.New("extension cannot be empty")
	ErrExtensionPathTraversal = errors.New("extension contains path separator or null byte")
)

// MarkdownExtension is the only extension accepted for dropped files.
const MarkdownExtension = ".md"

// utf8BOM is stripped from documents read with ReadText.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteTempFile creates a temporary file with the given content and extension.
// Returns the file path and a cleanup function to remove the file.
func WriteTempFile(content, extension string) (path string, cleanup func(), err error) {
	if err := ValidateExtension(extension); err != nil {
		return "", nil, err
	}

	tmpFile, err := os.CreateTemp("", "mdnarrate-*."+extension)
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}

	path = tmpFile.Name()
	cleanup = func() { _ = os.Remove(path) }

	if _, writeErr := tmpFile.WriteString(content); writeErr != nil {
		_ = tmpFile.Close()
		cleanup()
		return "", nil, fmt.Errorf("writing temp file: %w", writeErr)
	}

	if closeErr := tmpFile.Close(); closeErr != nil {
		cleanup()
		return "", nil, fmt.Errorf("closing temp file: %w", closeErr)
	}

	return path, cleanup, nil
}

// ValidateExtension checks that the extension is safe for use in temp file names.
func ValidateExtension(extension string) error {
	if extension == "" {
		return ErrExtensionEmpty
	}
	if strings.ContainsAny(extension, "/\\\x00") {
		return ErrExtensionPathTraversal
	}
	return nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ReadText reads a whole file as UTF-8 text, dropping a leading byte order mark.
func ReadText(path string) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-selected document
	if err != nil {
		return "", err
	}
	return string(bytes.TrimPrefix(data, utf8BOM)), nil
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// IsMarkdownPath reports whether path ends in ".md", ignoring case.
func IsMarkdownPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), MarkdownExtension)
}

// FirstMarkdownPath applies the drop rule: only the first path is considered,
// and it is accepted only when it is a Markdown file.
func FirstMarkdownPath(paths []string) (string, bool) {
	if len(paths) == 0 || !IsMarkdownPath(paths[0]) {
		return "", false
	}
	return paths[0], true
}

// IsCSS returns true if the string looks like CSS content rather than a name or path.
func IsCSS(s string) bool {
	return strings.Contains(s, "{")
}
