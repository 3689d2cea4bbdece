package assets

import "errors"

// AssetResolver looks an asset up in a stack of loaders, user directory
// first and built-ins last. Only a miss moves on to the next layer; invalid
// names and read failures are returned as is.
type AssetResolver struct {
	layers []AssetLoader
	custom bool
}

// NewAssetResolver stacks the directory at customBasePath, when set, over the
// embedded assets.
func NewAssetResolver(customBasePath string) (*AssetResolver, error) {
	r := &AssetResolver{}
	if customBasePath != "" {
		dir, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		r.layers = append(r.layers, dir)
		r.custom = true
	}
	r.layers = append(r.layers, NewEmbeddedLoader())
	return r, nil
}

func (r *AssetResolver) LoadStyle(name string) (string, error) {
	return r.first(func(l AssetLoader) (string, error) { return l.LoadStyle(name) })
}

func (r *AssetResolver) LoadTemplate(name string) (string, error) {
	return r.first(func(l AssetLoader) (string, error) { return l.LoadTemplate(name) })
}

func (r *AssetResolver) first(load func(AssetLoader) (string, error)) (string, error) {
	var err error
	for _, l := range r.layers {
		var content string
		content, err = load(l)
		if err == nil {
			return content, nil
		}
		if !isNotFoundError(err) {
			return "", err
		}
	}
	return "", err
}

// isNotFoundError reports a miss, the only failure that falls through a layer.
func isNotFoundError(err error) bool {
	return errors.Is(err, ErrStyleNotFound) || errors.Is(err, ErrTemplateNotFound)
}

// HasCustomLoader reports whether a user asset directory is stacked in.
func (r *AssetResolver) HasCustomLoader() bool {
	return r.custom
}

var _ AssetLoader = (*AssetResolver)(nil)
