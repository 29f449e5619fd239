package dictionary

import (
	"embed"
	"io/fs"
	"sync"
)

//go:embed defaults/*.yaml
var embeddedDefaults embed.FS

var (
	defaultOnce sync.Once
	defaultDict Dictionary
)

// EmbeddedFS returns the bundled dictionary documents.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedDefaults, "defaults")
	if err != nil {
		// The embed directive guarantees the subpath exists.
		panic(err)
	}
	return sub
}

// Default returns the dictionary built from the embedded documents. The value
// is built once and shared; callers cannot mutate it.
func Default() Dictionary {
	defaultOnce.Do(func() {
		dict, err := LoadFS(EmbeddedFS())
		if err != nil {
			panic(err)
		}
		defaultDict = dict
	})
	return defaultDict
}
