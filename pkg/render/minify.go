package render

import (
	"fmt"
	"sync"

	"github.com/getmockd/htmlgen/pkg/dom"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/xml"
)

var (
	minifier *minify.M
	once     sync.Once
)

// getMinifier returns the shared minifier. Document and end tags are kept so
// a minified page still parses back into the same tree.
func getMinifier() *minify.M {
	once.Do(func() {
		minifier = minify.New()
		minifier.Add("text/html", &html.Minifier{
			KeepDocumentTags: true,
			KeepEndTags:      true,
			KeepQuotes:       true,
		})
		minifier.AddFunc("text/xml", xml.Minify)
	})
	return minifier
}

// Minify compacts serialized markup of the given mode.
func Minify(markup string, mode dom.Mode) (string, error) {
	mediatype := "text/html"
	if mode == dom.ModeXML {
		mediatype = "text/xml"
	}
	out, err := getMinifier().String(mediatype, markup)
	if err != nil {
		return "", fmt.Errorf("failed to minify output: %w", err)
	}
	return out, nil
}
