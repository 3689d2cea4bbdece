package assets

import (
	"fmt"
	"strings"
)

// Built-in template names. "page" wraps every rendered document; "remote"
// is the control bar injected by the web surface.
const (
	TemplatePage   = "page"
	TemplateRemote = "remote"
)

// DefaultStyleName is the theme used when none is configured.
const DefaultStyleName = "dark"

// AssetLoader loads themes (styles/<name>.css) and page templates
// (templates/<name>.html) by bare name.
type AssetLoader interface {
	// LoadStyle returns ErrStyleNotFound for an unknown theme.
	LoadStyle(name string) (string, error)

	// LoadTemplate returns ErrTemplateNotFound for an unknown template.
	LoadTemplate(name string) (string, error)
}

// ValidateAssetName rejects names that are empty or could leave the asset
// directory or change the extension.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, `/\.`) {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}

// kind describes where one family of assets lives and how a miss is reported.
type kind struct {
	dir      string
	ext      string
	notFound error
}

var (
	styleKind    = kind{dir: "styles", ext: ".css", notFound: ErrStyleNotFound}
	templateKind = kind{dir: "templates", ext: ".html", notFound: ErrTemplateNotFound}
)

// file returns the slash-separated path of name relative to an asset root.
func (k kind) file(name string) string {
	return k.dir + "/" + name + k.ext
}

func (k kind) missing(name string) error {
	return fmt.Errorf("%w: %q", k.notFound, name)
}
