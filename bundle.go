package assetpack

import (
	"fmt"
	"path"
	"strings"
)

// Link is one asset declared in a bundle.
//
// Before processing, Path may hold a wildcard and URL is empty unless it was
// given explicitly. After processing, Path is concrete and URL is the public
// address of the emitted file.
type Link struct {
	Kind Kind
	Path string
	URL  string

	explicitURL bool
	prefix      string
	content     *Content
}

// Content is the resolved artifact behind the link, or nil before
// processing and for links that failed to resolve.
func (l *Link) Content() *Content { return l.content }

// Text returns the resolved text of the link.
func (l *Link) Text() string {
	if l.content == nil {
		return ""
	}
	return l.content.Text()
}

// HasWildcard reports whether Path still needs expansion.
func (l *Link) HasWildcard() bool { return hasWildcard(l.Path) }

func (l *Link) clone() *Link {
	c := *l
	c.content = nil
	return &c
}

// Bundle is a named group of asset declarations emitted together.
//
// Declarations are validated as they are made. A Bundle is only read by the
// Processor, which works on a copy, so the same declarations can be
// processed again on the next build.
type Bundle struct {
	Name  string
	Links []*Link

	// Destinations holds the URL prefix per kind. Missing or invalid entries
	// fall back to /js/, /css/ and / during processing.
	Destinations map[Kind]string

	Concat         bool
	Minify         bool
	Minifier       string
	MinifiedSuffix string
}

// NewBundle returns an empty bundle called name.
func NewBundle(name string) *Bundle {
	return &Bundle{Name: name, Destinations: make(map[Kind]string)}
}

// AddScript declares a script. url may be empty; for a wildcard src it must
// end with a slash and becomes the prefix of every expanded file.
func (b *Bundle) AddScript(src Source, url string) error {
	return b.Add(KindScript, src, url)
}

// AddStyle declares a stylesheet.
func (b *Bundle) AddStyle(src Source, url string) error {
	return b.Add(KindStyle, src, url)
}

// AddContent declares a generic file that is copied without transformation.
func (b *Bundle) AddContent(src Source, url string) error {
	return b.Add(KindContent, src, url)
}

// Add declares a link of the given kind.
func (b *Bundle) Add(kind Kind, src Source, url string) error {
	switch kind {
	case KindScript, KindStyle, KindContent:
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidPath, kind)
	}
	if src == nil {
		return fmt.Errorf("%w: no source", ErrInvalidPath)
	}
	p, err := src.resolve()
	if err != nil {
		return err
	}
	if err := validatePath(p); err != nil {
		return err
	}
	if url != "" {
		if err := validateURL(url); err != nil {
			return err
		}
		if hasWildcard(p) && !strings.HasSuffix(url, "/") {
			return fmt.Errorf("%w: %q for %q", ErrWildcardURL, url, p)
		}
	}
	b.Links = append(b.Links, &Link{
		Kind:        kind,
		Path:        cleanPath(p),
		URL:         url,
		explicitURL: url != "",
	})
	return nil
}

// SetDestination sets the URL prefix for kind. It is checked during
// processing, not here.
func (b *Bundle) SetDestination(kind Kind, prefix string) {
	if b.Destinations == nil {
		b.Destinations = make(map[Kind]string)
	}
	b.Destinations[kind] = prefix
}

// URLs returns the public URLs of the bundle's links of one kind, in order.
func (b *Bundle) URLs(kind Kind) []string {
	var out []string
	for _, l := range b.Links {
		if l.Kind == kind {
			out = append(out, l.URL)
		}
	}
	return out
}

func (b *Bundle) minifiedSuffix() string {
	if b.MinifiedSuffix == "" {
		return DefaultMinifiedSuffix
	}
	return b.MinifiedSuffix
}

func (b *Bundle) clone() *Bundle {
	c := *b
	c.Links = make([]*Link, len(b.Links))
	for i, l := range b.Links {
		c.Links[i] = l.clone()
	}
	c.Destinations = make(map[Kind]string, len(b.Destinations))
	for k, v := range b.Destinations {
		c.Destinations[k] = v
	}
	return &c
}

// isMinifiedName reports whether p already follows the minified naming
// convention, such as app.min.js for suffix ".min".
func isMinifiedName(p, suffix string) bool {
	base := path.Base(p)
	return strings.HasSuffix(strings.TrimSuffix(base, path.Ext(base)), suffix)
}

// minifiedName inserts suffix before the extension of p.
func minifiedName(p, suffix string) string {
	ext := path.Ext(p)
	return strings.TrimSuffix(p, ext) + suffix + ext
}

// Registry holds bundles by name.
type Registry struct {
	bundles map[string]*Bundle
	order   []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{bundles: make(map[string]*Bundle)}
}

// Bundle returns the bundle called name, creating it on first use. An empty
// name selects DefaultBundleName.
func (r *Registry) Bundle(name string) *Bundle {
	if name == "" {
		name = DefaultBundleName
	}
	if b, ok := r.bundles[name]; ok {
		return b
	}
	b, _ := r.Create(name)
	return b
}

// Create adds a new bundle and fails if the name is taken.
func (r *Registry) Create(name string) (*Bundle, error) {
	if name == "" {
		name = DefaultBundleName
	}
	if _, ok := r.bundles[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateBundle, name)
	}
	b := NewBundle(name)
	r.bundles[name] = b
	r.order = append(r.order, name)
	return b, nil
}

// Lookup returns the bundle called name without creating it.
func (r *Registry) Lookup(name string) (*Bundle, bool) {
	b, ok := r.bundles[name]
	return b, ok
}

// Names lists bundle names in creation order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}
