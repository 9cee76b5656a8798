package assetpack

import (
	"strings"

	"github.com/logicossoftware/go-assetpack/sourcemap"
)

// Minifier shrinks script and style text. Minify must be idempotent. The
// Processor never passes it a file whose name already follows the minified
// naming convention.
type Minifier interface {
	Name() string
	Minify(kind Kind, content, originalPath string) (string, error)
}

// MapMinifier is a Minifier that also reports how its output maps back to
// the input. The map's source must be originalPath.
type MapMinifier interface {
	Minifier
	MinifyWithMap(kind Kind, content, originalPath string) (string, *sourcemap.SourceMap, error)
}

// selectMinifier returns the first minifier called name, or the first one
// registered when name is empty.
func selectMinifier(ms []Minifier, name string) (Minifier, bool) {
	if len(ms) == 0 {
		return nil, false
	}
	if name == "" {
		return ms[0], true
	}
	for _, m := range ms {
		if strings.EqualFold(m.Name(), name) {
			return m, true
		}
	}
	return nil, false
}

func minify(m Minifier, kind Kind, text, originalPath string) (string, *sourcemap.SourceMap, error) {
	if mm, ok := m.(MapMinifier); ok {
		return mm.MinifyWithMap(kind, text, originalPath)
	}
	out, err := m.Minify(kind, text, originalPath)
	return out, nil, err
}
