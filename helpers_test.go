package assetpack

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/rs/zerolog"

	"github.com/logicossoftware/go-assetpack/sourcemap"
)

type errWriter struct{}

func (errWriter) Write(p []byte) (int, error) { return 0, io.ErrClosedPipe }

// squashMinifier collapses whitespace and records every path it is given.
type squashMinifier struct {
	name  string
	calls []string
	fail  bool
}

func (m *squashMinifier) Name() string { return m.name }

func (m *squashMinifier) Minify(kind Kind, content, originalPath string) (string, error) {
	m.calls = append(m.calls, originalPath)
	if m.fail {
		return "", fmt.Errorf("%w: %s: broken", ErrMinify, originalPath)
	}
	return strings.Join(strings.Fields(content), " "), nil
}

// identityMinifier returns its input and a line-by-line map back to it.
type identityMinifier struct {
	calls int
}

func (m *identityMinifier) Name() string { return "identity" }

func (m *identityMinifier) Minify(kind Kind, content, originalPath string) (string, error) {
	out, _, err := m.MinifyWithMap(kind, content, originalPath)
	return out, err
}

func (m *identityMinifier) MinifyWithMap(kind Kind, content, originalPath string) (string, *sourcemap.SourceMap, error) {
	m.calls++
	sm := sourcemap.New("")
	sm.Sources = []string{originalPath}
	for i := 0; i < strings.Count(content, "\n"); i++ {
		sm.Mappings = append(sm.Mappings, sourcemap.Mapping{
			Generated:   sourcemap.Position{Line: i},
			HasOriginal: true,
			Original:    sourcemap.Position{Line: i},
			Source:      originalPath,
		})
	}
	return content, sm, nil
}

func bufLogger() (zerolog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return zerolog.New(&buf), &buf
}

func siteFS(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, data := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(data)}
	}
	return fsys
}

func mustAdd(t *testing.T, b *Bundle, kind Kind, src Source, url string) {
	t.Helper()
	if err := b.Add(kind, src, url); err != nil {
		t.Fatalf("add %v: %v", src, err)
	}
}

func linkPaths(b *Bundle) []string {
	out := make([]string, len(b.Links))
	for i, l := range b.Links {
		out[i] = l.Path
	}
	return out
}
