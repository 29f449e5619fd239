package formfill

import (
	"io"
	"os"

	"github.com/goliatone/go-formfill/pkg/dictionary"
	"github.com/goliatone/go-formfill/pkg/discovery"
	"github.com/goliatone/go-formfill/pkg/discovery/htmldoc"
)

// LoadDictionary returns the embedded dictionary extended with the YAML and
// JSON files found in dir. An empty dir yields the embedded dictionary.
func LoadDictionary(dir string) (dictionary.Dictionary, error) {
	dict := dictionary.Default()
	if dir == "" {
		return dict, nil
	}
	return dict.Extend(os.DirFS(dir))
}

// ParseHTML snapshots the controls of an HTML document. A document without
// controls yields discovery.ErrNoControls alongside the empty page.
func ParseHTML(r io.Reader, url string) (discovery.Page, error) {
	return htmldoc.Parse(r, htmldoc.WithURL(url))
}
