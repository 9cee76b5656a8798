package assetpack

import (
	"fmt"
	"path"
	"strings"

	"github.com/rs/zerolog"

	"github.com/logicossoftware/go-assetpack/sourcemap"
)

// Processor turns declared bundles into resolved, publishable links.
//
// A pass handles each bundle in six ordered stages:
//  1. destination prefixes are validated, invalid ones fall back to defaults
//  2. wildcard links are expanded into one link per matching file
//  3. a minifier is selected when the bundle asks for minification
//  4. every link is resolved against the ContentStore, then minified and
//     stripped of source map references as needed
//  5. scripts and styles are concatenated when the bundle asks for it
//  6. every link's URL is refreshed from its resolved content
//
// A link that fails to resolve is logged and dropped; it never stops the
// rest of the bundle or other bundles. A pass is sequential and a Processor
// must not run two passes at once.
type Processor struct {
	store ContentStore
	cfg   config
	log   zerolog.Logger
}

// Result holds the processed bundles of one pass.
type Result struct {
	Bundles []*Bundle
}

// Bundle returns the processed bundle called name.
func (r *Result) Bundle(name string) (*Bundle, bool) {
	for _, b := range r.Bundles {
		if b.Name == name {
			return b, true
		}
	}
	return nil, false
}

// NewProcessor returns a Processor reading through store.
func NewProcessor(store ContentStore, opts ...Option) *Processor {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.limits = cfg.limits.withDefaults()
	return &Processor{store: store, cfg: cfg, log: cfg.logger}
}

// Process runs one pass over the bundles named in referenced, or over every
// bundle in reg when referenced is empty. Names that reg does not hold are
// logged and skipped. The declarations in reg are not modified.
func (p *Processor) Process(reg *Registry, referenced ...string) (*Result, error) {
	if reg == nil {
		return nil, fmt.Errorf("%w: registry is nil", ErrNotFound)
	}
	if len(referenced) == 0 {
		referenced = reg.Names()
	}
	res := &Result{}
	seen := make(map[string]struct{}, len(referenced))
	for _, name := range referenced {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		decl, ok := reg.Lookup(name)
		if !ok {
			p.log.Warn().Str("bundle", name).Msg("Referenced bundle is not declared")
			continue
		}
		b, err := p.processBundle(decl)
		if err != nil {
			p.log.Error().Err(err).Str("bundle", name).Msg("Bundle skipped")
			continue
		}
		res.Bundles = append(res.Bundles, b)
	}
	return res, nil
}

func (p *Processor) processBundle(decl *Bundle) (*Bundle, error) {
	b := decl.clone()

	p.normalizeDestinations(b)

	if err := p.expandWildcards(b); err != nil {
		return nil, err
	}

	var minifier Minifier
	if b.Minify {
		m, ok := selectMinifier(p.cfg.minifiers, b.Minifier)
		if ok {
			minifier = m
		} else {
			p.log.Warn().Str("bundle", b.Name).Str("minifier", b.Minifier).Msg("No minifier available, output stays unminified")
		}
	}

	resolved := b.Links[:0]
	for _, l := range b.Links {
		if err := p.resolveLink(b, l, minifier); err != nil {
			p.log.Warn().Err(err).Str("bundle", b.Name).Str("path", l.Path).Msg("Link skipped")
			continue
		}
		resolved = append(resolved, l)
	}
	b.Links = resolved

	if b.Concat {
		p.concatenate(b)
	}

	for _, l := range b.Links {
		l.URL = l.content.URL()
	}
	p.log.Debug().Str("bundle", b.Name).Int("links", len(b.Links)).Msg("Bundle processed")
	return b, nil
}

// resolveLink attaches the backing content of l, minifying and stripping
// script and style text when the bundle concatenates or minifies.
func (p *Processor) resolveLink(b *Bundle, l *Link, minifier Minifier) error {
	src, err := p.store.Load(l.Path)
	if err != nil {
		return err
	}
	if l.URL == "" || strings.HasSuffix(l.URL, "/") {
		prefix := l.prefix
		if l.URL != "" {
			prefix = l.URL
		}
		l.URL = prefix + path.Base(l.Path)
	}

	out := src.derive()
	out.Path = outputKey(l.URL)
	out.SetURL(l.URL)
	if p.cfg.preprocess != nil {
		if err := p.cfg.preprocess(l, out); err != nil {
			return err
		}
	}
	l.content = out

	if l.Kind == KindContent || !(b.Concat || b.Minify) {
		return nil
	}

	text := out.Text()
	var upstream *sourcemap.SourceMap
	if p.cfg.upstreamMaps {
		var mapKey string
		upstream, mapKey = p.upstreamMap(l.Path, text)
		if mapKey != "" {
			out.AddDependency(mapKey)
		}
	}
	stripped := StripSourceMapReferences(text)
	if stripped != text {
		out.SetText(stripped)
	}
	out.Map = upstream

	if minifier == nil || isMinifiedName(l.Path, b.minifiedSuffix()) {
		return nil
	}
	minURL := minifiedName(l.URL, b.minifiedSuffix())
	key := outputKey(minURL)
	recipe := p.recipe(minifier)
	if cached, ok := p.store.Lookup(key); ok && cached.generated &&
		cached.sourceDigest == out.Digest && cached.recipe == recipe {
		l.content = cached
		return nil
	}

	minified, m, err := minify(minifier, l.Kind, out.Text(), l.Path)
	if err != nil {
		p.log.Warn().Err(err).
			Str("bundle", b.Name).
			Str("path", l.Path).
			Str("minifier", minifier.Name()).
			Msg("Minification failed, using unminified text")
		return nil
	}
	if m != nil && upstream != nil {
		m = m.ApplySourceMap(upstream, l.Path)
	}
	if m != nil {
		m.File = path.Base(minURL)
		if p.cfg.flattenMaps {
			m = m.Flatten()
		}
	}

	result := &Content{Path: key, url: minURL, sourceDigest: out.Digest, recipe: recipe}
	for _, d := range out.deps {
		result.AddDependency(d)
	}
	result.SetText(minified)
	result.Map = m
	p.store.Put(result)
	l.content = result
	return nil
}

// upstreamMap loads the source map that text refers to, inline or as a
// sibling file, with its sources rewritten relative to the site root. The
// store key of a sibling map is returned whenever it was read, so the caller
// can depend on it. A missing or broken map is logged and ignored.
func (p *Processor) upstreamMap(assetPath, text string) (*sourcemap.SourceMap, string) {
	ref, ok := sourcemap.Reference(text)
	if !ok {
		return nil, ""
	}
	var mapKey string
	base := path.Dir(assetPath)
	m, inline, err := sourcemap.DecodeInline(ref)
	if !inline {
		if strings.Contains(ref, "://") || strings.HasPrefix(ref, "/") {
			p.log.Debug().Str("path", assetPath).Str("ref", ref).Msg("Ignoring non-relative source map reference")
			return nil, ""
		}
		var c *Content
		c, err = p.store.Load(path.Join(base, ref))
		if err == nil {
			mapKey = c.Path
			base = path.Dir(c.Path)
			m, err = sourcemap.Unmarshal([]byte(c.Text()))
		}
	}
	if err != nil {
		p.log.Warn().Err(err).Str("path", assetPath).Str("ref", ref).Msg("Ignoring unreadable source map")
		return nil, mapKey
	}
	return rebaseSources(m, base), mapKey
}

// rebaseSources rewrites the relative sources of m, which are relative to
// dir, into site paths. Maps with an absolute source root are left alone.
func rebaseSources(m *sourcemap.SourceMap, dir string) *sourcemap.SourceMap {
	if isAbsoluteRef(m.SourceRoot) {
		return m
	}
	rebase := func(s string) string {
		if isAbsoluteRef(s) {
			return s
		}
		return path.Join(dir, m.SourceRoot, s)
	}
	out := m.Clone()
	out.SourceRoot = ""
	for i, s := range out.Sources {
		out.Sources[i] = rebase(s)
	}
	for i := range out.Mappings {
		if out.Mappings[i].HasOriginal {
			out.Mappings[i].Source = rebase(out.Mappings[i].Source)
		}
	}
	return out
}

func isAbsoluteRef(s string) bool {
	return strings.HasPrefix(s, "/") || strings.Contains(s, "://")
}

// recipe identifies how a minified artifact was produced. A cached artifact
// is reused only when the recipe matches.
func (p *Processor) recipe(m Minifier) string {
	return fmt.Sprintf("%s;flatten=%t;upstream=%t", strings.ToLower(m.Name()), p.cfg.flattenMaps, p.cfg.upstreamMaps)
}

// outputKey is the store key of a generated artifact published at url. The
// @ prefix keeps output keys apart from source paths.
func outputKey(url string) string {
	return "@" + strings.TrimPrefix(url, "/")
}
