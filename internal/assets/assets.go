package assets

var builtinLoader = NewEmbeddedLoader()

// LoadStyle returns a built-in theme by name ("dark", "light").
func LoadStyle(name string) (string, error) { return builtinLoader.LoadStyle(name) }

// LoadTemplate returns a built-in template ("page", "remote").
func LoadTemplate(name string) (string, error) { return builtinLoader.LoadTemplate(name) }

func StyleNames() []string { return builtinLoader.StyleNames() }
