package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemLoader reads user themes and templates from a directory laid out
// like the embedded one (styles/, templates/).
type FilesystemLoader struct {
	root string
}

// NewFilesystemLoader opens root after resolving it to a real absolute path.
// The directory must exist and be listable, otherwise ErrInvalidBasePath.
func NewFilesystemLoader(root string) (*FilesystemLoader, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		abs = real
	}

	if _, err := os.ReadDir(abs); err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("%w: directory does not exist: %s", ErrInvalidBasePath, abs)
		default:
			if info, statErr := os.Stat(abs); statErr == nil && !info.IsDir() {
				return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidBasePath, abs)
			}
			return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
		}
	}
	return &FilesystemLoader{root: abs}, nil
}

func (f *FilesystemLoader) LoadStyle(name string) (string, error) {
	return f.load(styleKind, name)
}

func (f *FilesystemLoader) LoadTemplate(name string) (string, error) {
	return f.load(templateKind, name)
}

func (f *FilesystemLoader) load(k kind, name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	path, err := f.within(filepath.FromSlash(k.file(name)))
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path) // #nosec G304 -- confined to root by within
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", k.missing(name)
	case err != nil:
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	return string(data), nil
}

// within joins rel to the root and rejects results that leave it once
// symlinks are followed. Missing files pass so the caller reports not found.
func (f *FilesystemLoader) within(rel string) (string, error) {
	path := filepath.Join(f.root, rel)
	if real, err := filepath.EvalSymlinks(path); err == nil {
		path = real
	}
	if !strings.HasPrefix(path, f.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s leaves %s", ErrPathTraversal, rel, f.root)
	}
	return path, nil
}

var _ AssetLoader = (*FilesystemLoader)(nil)
