package assetpack

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/logicossoftware/go-assetpack/sourcemap"
)

// EmittedFile describes one file written by Emit.
type EmittedFile struct {
	Bundle string
	URL    string
	Path   string // file system path
	Size   int
	Kind   Kind
	// Variant is zero for the asset itself and its map, and the compression
	// for precompressed copies.
	Variant Compression
}

// Function variables for testing injection.
var (
	mkdirAll  = os.MkdirAll
	writeFile = os.WriteFile
)

// Emit writes every link of res under dir at the path of its URL. Generated
// scripts and styles that carry a source map get a .map file next to them
// (or an inline map with WithInlineMaps) and a trailing reference comment.
// A URL shared by several bundles is written once.
func Emit(dir string, res *Result, opts ...EmitOption) ([]EmittedFile, error) {
	cfg := emitConfig{minCompressSize: 256}
	for _, opt := range opts {
		opt(&cfg)
	}
	if res == nil {
		return nil, nil
	}

	var out []EmittedFile
	written := make(map[string]struct{})
	write := func(f EmittedFile, data []byte) error {
		if err := mkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
			return err
		}
		if err := writeFile(f.Path, data, 0o644); err != nil {
			return err
		}
		f.Size = len(data)
		out = append(out, f)
		return nil
	}

	for _, b := range res.Bundles {
		for _, l := range b.Links {
			c := l.Content()
			if c == nil {
				continue
			}
			target, err := urlToFile(dir, l.URL)
			if err != nil {
				return out, err
			}
			if _, ok := written[target]; ok {
				continue
			}
			written[target] = struct{}{}

			data := c.Text()
			if c.Map != nil && l.Kind != KindContent {
				sm := rootedMap(c.Map, l.URL)
				var ref string
				if cfg.inlineMaps {
					ref, err = inlineReference(l.Kind, sm)
				} else {
					ref = mapReference(l.Kind, path.Base(l.URL)+".map")
					var mapData []byte
					mapData, err = sm.MarshalJSON()
					if err == nil {
						err = write(EmittedFile{Bundle: b.Name, URL: l.URL + ".map", Path: target + ".map", Kind: l.Kind}, mapData)
					}
				}
				if err != nil {
					return out, fmt.Errorf("%s: %w", l.URL, err)
				}
				if !strings.HasSuffix(data, "\n") {
					data += "\n"
				}
				data += ref + "\n"
			}

			f := EmittedFile{Bundle: b.Name, URL: l.URL, Path: target, Kind: l.Kind}
			if err := write(f, []byte(data)); err != nil {
				return out, err
			}
			if len(data) < cfg.minCompressSize {
				continue
			}
			for _, comp := range cfg.compressions {
				z, err := compressBytes(comp, []byte(data))
				if err != nil {
					return out, fmt.Errorf("%s: %s: %w", l.URL, comp, err)
				}
				v := EmittedFile{Bundle: b.Name, URL: l.URL + comp.Ext(), Path: target + comp.Ext(), Kind: l.Kind, Variant: comp}
				if err := write(v, z); err != nil {
					return out, err
				}
			}
		}
	}
	return out, nil
}

// urlToFile maps a public URL onto a path under dir.
func urlToFile(dir, url string) (string, error) {
	rel := path.Clean("/" + url)
	if rel == "/" {
		return "", fmt.Errorf("%w: %q has no file name", ErrInvalidURL, url)
	}
	return filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(rel, "/"))), nil
}

func mapReference(kind Kind, url string) string {
	if kind == KindStyle {
		return "/*# sourceMappingURL=" + url + " */"
	}
	return "//# sourceMappingURL=" + url
}

// rootedMap returns m with a source root leading from the directory of url
// back to the site root, where its site-relative sources live.
func rootedMap(m *sourcemap.SourceMap, url string) *sourcemap.SourceMap {
	if m.SourceRoot != "" {
		return m
	}
	dir := strings.Trim(path.Dir(path.Clean("/"+url)), "/")
	if dir == "" {
		return m
	}
	out := m.Clone()
	out.SourceRoot = strings.Repeat("../", strings.Count(dir, "/")+1)
	return out
}

func inlineReference(kind Kind, m *sourcemap.SourceMap) (string, error) {
	comment, err := m.InlineComment()
	if err != nil {
		return "", err
	}
	if kind == KindStyle {
		return "/*# " + strings.TrimPrefix(comment, "//# ") + " */", nil
	}
	return comment, nil
}
