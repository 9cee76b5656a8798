package assetpack

import (
	"fmt"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/logicossoftware/go-assetpack/sourcemap"
)

// EsbuildMinifier minifies scripts and stylesheets with esbuild's transform
// API and returns esbuild's source map for the result.
type EsbuildMinifier struct {
	// Target is the language level of emitted scripts. Zero keeps esbuild's
	// default (ESNext).
	Target api.Target
}

// NewEsbuildMinifier returns a minifier with esbuild's defaults.
func NewEsbuildMinifier() *EsbuildMinifier {
	return &EsbuildMinifier{}
}

func (*EsbuildMinifier) Name() string { return "esbuild" }

func (m *EsbuildMinifier) Minify(kind Kind, content, originalPath string) (string, error) {
	out, _, err := m.MinifyWithMap(kind, content, originalPath)
	return out, err
}

func (m *EsbuildMinifier) MinifyWithMap(kind Kind, content, originalPath string) (string, *sourcemap.SourceMap, error) {
	var loader api.Loader
	switch kind {
	case KindScript:
		loader = api.LoaderJS
	case KindStyle:
		loader = api.LoaderCSS
	default:
		return "", nil, fmt.Errorf("%w: %s: esbuild cannot minify %s", ErrMinify, originalPath, kind)
	}

	res := api.Transform(content, api.TransformOptions{
		Loader:            loader,
		Target:            m.Target,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
		LegalComments:     api.LegalCommentsNone,
		Sourcemap:         api.SourceMapExternal,
		SourcesContent:    api.SourcesContentExclude,
		Sourcefile:        originalPath,
		LogLevel:          api.LogLevelSilent,
	})
	if len(res.Errors) > 0 {
		msg := res.Errors[0]
		if msg.Location != nil {
			return "", nil, fmt.Errorf("%w: %s:%d:%d: %s", ErrMinify, originalPath, msg.Location.Line, msg.Location.Column, msg.Text)
		}
		return "", nil, fmt.Errorf("%w: %s: %s", ErrMinify, originalPath, msg.Text)
	}

	var sm *sourcemap.SourceMap
	if len(res.Map) > 0 {
		var err error
		sm, err = sourcemap.Unmarshal(res.Map)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %s: esbuild map: %v", ErrMinify, originalPath, err)
		}
	}
	return string(res.Code), sm, nil
}
