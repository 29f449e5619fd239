package browser

import (
	"embed"
	"io/fs"
)

//go:embed assets/*.js
var assets embed.FS

var (
	discoverScript = mustAsset("assets/discover.js")
	applyScript    = mustAsset("assets/apply.js")
)

func mustAsset(name string) string {
	data, err := assets.ReadFile(name)
	if err != nil {
		panic("browser: missing embedded asset " + name)
	}
	return string(data)
}

// ScriptsFS exposes the page scripts used by Session.
func ScriptsFS() fs.FS {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		return assets
	}
	return sub
}
