package mdnarrate

import (
	"errors"

	"github.com/alnah/go-mdnarrate/internal/assets"
)

// Built-in asset names.
const (
	DefaultStyle   = assets.DefaultStyleName // theme used when none is configured
	PageTemplate   = assets.TemplatePage     // wraps every document
	RemoteTemplate = assets.TemplateRemote   // control bar of the web surface
)

// AssetLoader supplies themes and templates by bare name. A user directory
// passed to NewAssetLoader or WithAssetPath may shadow any built-in.
type AssetLoader interface {
	// LoadStyle returns the CSS of a theme, or ErrStyleNotFound.
	LoadStyle(name string) (string, error)

	// LoadTemplate returns an HTML template, or ErrTemplateNotFound.
	LoadTemplate(name string) (string, error)
}

// NewAssetLoader stacks basePath (styles/*.css, templates/*.html) over the
// built-in assets. An empty basePath serves built-ins only. An unusable
// directory yields ErrInvalidAssetPath.
func NewAssetLoader(basePath string) (AssetLoader, error) {
	r, err := assets.NewAssetResolver(basePath)
	if err != nil {
		return nil, convertAssetError(err)
	}
	return publicLoader{r}, nil
}

// StyleNames lists the built-in themes.
func StyleNames() []string {
	return assets.StyleNames()
}

// publicLoader reports internal asset failures with the exported sentinels.
type publicLoader struct {
	inner assets.AssetLoader
}

func (p publicLoader) LoadStyle(name string) (string, error) {
	css, err := p.inner.LoadStyle(name)
	return css, convertAssetError(err)
}

func (p publicLoader) LoadTemplate(name string) (string, error) {
	tmpl, err := p.inner.LoadTemplate(name)
	return tmpl, convertAssetError(err)
}

// assetErrorMap pairs internal causes with the exported sentinel they surface
// as. A rejected name is reported as a missing style.
var assetErrorMap = []struct {
	internal []error
	public   error
}{
	{[]error{assets.ErrStyleNotFound, assets.ErrInvalidAssetName}, ErrStyleNotFound},
	{[]error{assets.ErrTemplateNotFound}, ErrTemplateNotFound},
	{[]error{assets.ErrInvalidBasePath, assets.ErrPathTraversal}, ErrInvalidAssetPath},
}

func convertAssetError(err error) error {
	if err == nil {
		return nil
	}
	for _, m := range assetErrorMap {
		for _, cause := range m.internal {
			if errors.Is(err, cause) {
				return &assetError{public: m.public, msg: err.Error()}
			}
		}
	}
	return err
}

// assetError keeps the detailed message but only unwraps to the exported
// sentinel, since internal errors are not reachable by callers.
type assetError struct {
	public error
	msg    string
}

func (e *assetError) Error() string { return e.msg }
func (e *assetError) Unwrap() error { return e.public }
