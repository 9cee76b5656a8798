package assetpack

import (
	"fmt"
	"strings"
)

// normalizeDestinations replaces invalid or missing destination prefixes with
// the defaults.
func (p *Processor) normalizeDestinations(b *Bundle) {
	for _, kind := range Kinds {
		d, ok := b.Destinations[kind]
		if !ok || d == "" {
			b.Destinations[kind] = defaultDestinations[kind]
			continue
		}
		if err := validateDestination(d); err != nil {
			p.log.Warn().Err(err).
				Str("bundle", b.Name).
				Stringer("kind", kind).
				Str("fallback", defaultDestinations[kind]).
				Msg("Invalid destination, using default")
			b.Destinations[kind] = defaultDestinations[kind]
		}
	}
}

// expandWildcards replaces every wildcard link by one link per matching file,
// at the same position and in match order.
func (p *Processor) expandWildcards(b *Bundle) error {
	out := make([]*Link, 0, len(b.Links))
	for _, l := range b.Links {
		prefix := b.Destinations[l.Kind]
		if l.explicitURL && strings.HasSuffix(l.URL, "/") {
			prefix = l.URL
		}
		if !l.HasWildcard() {
			l.prefix = prefix
			out = append(out, l)
			continue
		}
		matches, err := p.store.Glob(l.Path)
		if err != nil {
			return err
		}
		if len(matches) > p.cfg.limits.MaxExpandedLinks {
			return fmt.Errorf("%w: %q matches %d files", ErrLimitExceeded, l.Path, len(matches))
		}
		if len(matches) == 0 {
			p.log.Warn().Str("bundle", b.Name).Str("path", l.Path).Msg("Wildcard matched no files")
			continue
		}
		for _, m := range matches {
			out = append(out, &Link{
				Kind:   l.Kind,
				Path:   m,
				prefix: prefix,
			})
		}
	}
	b.Links = out
	return nil
}
