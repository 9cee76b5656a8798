package assetpack

import (
	"path"
	"strings"

	"github.com/logicossoftware/go-assetpack/sourcemap"
)

var concatKinds = []Kind{KindScript, KindStyle}

// concatenate joins the script links and the style links of b into one
// artifact per kind. Each artifact takes the list position of the first
// link it absorbs.
func (p *Processor) concatenate(b *Bundle) {
	combined := make(map[Kind]*Link, len(concatKinds))
	for _, kind := range concatKinds {
		if l := p.concatKind(b, kind); l != nil {
			combined[kind] = l
		}
	}
	if len(combined) == 0 {
		return
	}

	out := make([]*Link, 0, len(b.Links))
	for _, l := range b.Links {
		c, ok := combined[l.Kind]
		if !ok {
			out = append(out, l)
			continue
		}
		if c != nil {
			out = append(out, c)
			combined[l.Kind] = nil
		}
	}
	b.Links = out
}

func (p *Processor) concatKind(b *Bundle, kind Kind) *Link {
	var parts []*Link
	for _, l := range b.Links {
		if l.Kind == kind {
			parts = append(parts, l)
		}
	}
	if len(parts) == 0 {
		return nil
	}

	url := b.Destinations[kind] + b.Name + "." + kind.Ext()
	content := &Content{Path: outputKey(url), url: url}
	maps := sourcemap.NewConcat(path.Base(url))

	var buf strings.Builder
	line := 0
	for _, l := range parts {
		text := l.content.Text()
		if text != "" && !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		buf.WriteString(text)
		lines := strings.Count(text, "\n")
		if m := l.content.Map; m != nil {
			maps.Add(line, m)
		} else {
			maps.AddIdentity(line, lines, l.Path)
		}
		line += lines
		content.AddDependency(l.Path)
		for _, d := range l.content.deps {
			content.AddDependency(d)
		}
	}
	content.SetText(buf.String())
	m := maps.Map()
	if p.cfg.flattenMaps {
		m = m.Flatten()
	}
	content.Map = m
	p.store.Put(content)

	p.log.Debug().
		Str("bundle", b.Name).
		Stringer("kind", kind).
		Int("parts", len(parts)).
		Int("bytes", buf.Len()).
		Msg("Concatenated")
	return &Link{
		Kind:    kind,
		Path:    content.Path,
		URL:     url,
		prefix:  b.Destinations[kind],
		content: content,
	}
}
