package formfill

import (
	"io/fs"

	"github.com/goliatone/go-formfill/pkg/browser"
)

// PageScriptsFS exposes the scripts the browser session evaluates in the
// page (discover.js snapshots controls, apply.js performs one action) so
// other drivers can inject them without a build step.
//
// Typical use with a custom driver:
//
//	src, _ := fs.ReadFile(formfill.PageScriptsFS(), "discover.js")
//	page.Eval(string(src))
func PageScriptsFS() fs.FS {
	return browser.ScriptsFS()
}
