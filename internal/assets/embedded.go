package assets

import (
	"embed"
	"io/fs"
	"slices"
	"strings"
)

//go:embed styles/* templates/*
var builtin embed.FS

// EmbeddedLoader serves the themes and templates compiled into the binary.
type EmbeddedLoader struct {
	fsys fs.FS
}

func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{fsys: builtin}
}

func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	return e.load(styleKind, name)
}

func (e *EmbeddedLoader) LoadTemplate(name string) (string, error) {
	return e.load(templateKind, name)
}

func (e *EmbeddedLoader) load(k kind, name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	data, err := fs.ReadFile(e.fsys, k.file(name))
	if err != nil {
		return "", k.missing(name)
	}
	return string(data), nil
}

// StyleNames lists the built-in themes, sorted, for help text and completion.
func (e *EmbeddedLoader) StyleNames() []string {
	matches, err := fs.Glob(e.fsys, styleKind.file("*"))
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		base := strings.TrimPrefix(m, styleKind.dir+"/")
		names = append(names, strings.TrimSuffix(base, styleKind.ext))
	}
	slices.Sort(names)
	return names
}

var _ AssetLoader = (*EmbeddedLoader)(nil)
