package sourcemap

import (
	"slices"
	"sort"
)

// Version3 is the only source map revision this package reads or writes.
const Version3 = 3

// SourceMap is a parsed V3 source map.
//
// Mappings must stay sorted by generated position; Find relies on it. The
// packed mappings string is never stored and is derived by EncodedMappings
// whenever it is needed. Clone, Flatten and ApplySourceMap return new maps
// and leave the receiver untouched. A SourceMap is not safe for concurrent
// mutation.
type SourceMap struct {
	Version    int
	File       string
	SourceRoot string
	Sources    []string
	Names      []string
	Mappings   []Mapping
}

// New returns an empty V3 map for file.
func New(file string) *SourceMap {
	return &SourceMap{Version: Version3, File: file}
}

// Clone returns a deep copy of m.
func (m *SourceMap) Clone() *SourceMap {
	return &SourceMap{
		Version:    m.Version,
		File:       m.File,
		SourceRoot: m.SourceRoot,
		Sources:    slices.Clone(m.Sources),
		Names:      slices.Clone(m.Names),
		Mappings:   slices.Clone(m.Mappings),
	}
}

// EncodedMappings packs m.Mappings against m.Sources and m.Names.
func (m *SourceMap) EncodedMappings() (string, error) {
	return EncodeMappings(m.Mappings, m.Sources, m.Names)
}

// Sort restores the generated-position ordering after callers have appended
// mappings out of order. Equal positions keep their relative order.
func (m *SourceMap) Sort() {
	sort.SliceStable(m.Mappings, func(i, j int) bool {
		return m.Mappings[i].Generated.Less(m.Mappings[j].Generated)
	})
}

// Find returns the mapping at generated position pos.
//
// Without an exact match only the immediately preceding mapping is
// considered, and only when it is approximately equal to pos. A following
// mapping is never returned: when maps are chained left to right, matching
// forward attributes code to a location it did not come from.
func (m *SourceMap) Find(pos Position) (Mapping, bool) {
	i := sort.Search(len(m.Mappings), func(i int) bool {
		return m.Mappings[i].Generated.Compare(pos) >= 0
	})
	if i < len(m.Mappings) && m.Mappings[i].Generated == pos {
		return m.Mappings[i], true
	}
	if i > 0 {
		prev := m.Mappings[i-1]
		if prev.Generated.ApproxEqual(pos) {
			return prev, true
		}
	}
	return Mapping{}, false
}

// ApplySourceMap composes m with sub, a map for the file named source.
//
// m describes B→C and sub describes A→B where B is source. Every mapping of
// m that points into source is looked up in sub and, when found, redirected
// to sub's original location, so the result describes A→C. The symbol name
// and source name fall back to m's own when sub's mapping lacks them.
// Mappings that miss in sub or point at other files are kept as they are.
func (m *SourceMap) ApplySourceMap(sub *SourceMap, source string) *SourceMap {
	out := &SourceMap{
		Version:    m.Version,
		File:       m.File,
		SourceRoot: m.SourceRoot,
		Mappings:   make([]Mapping, 0, len(m.Mappings)),
	}
	tables := newTableBuilder()
	for _, e := range m.Mappings {
		if e.HasOriginal && e.Source == source {
			if hit, ok := sub.Find(e.Original); ok && hit.HasOriginal {
				e.Original = hit.Original
				if hit.Name != "" {
					e.Name = hit.Name
				}
				if hit.Source != "" {
					e.Source = hit.Source
				}
			}
		}
		tables.add(e)
		out.Mappings = append(out.Mappings, e)
	}
	out.Sources, out.Names = tables.sources, tables.names
	return out
}

// Flatten drops column precision: the first mapping of each generated line
// is kept with both columns set to zero and the rest of the line is dropped.
func (m *SourceMap) Flatten() *SourceMap {
	out := &SourceMap{
		Version:    m.Version,
		File:       m.File,
		SourceRoot: m.SourceRoot,
	}
	tables := newTableBuilder()
	seen := make(map[int]struct{})
	for _, e := range m.Mappings {
		if _, ok := seen[e.Generated.Line]; ok {
			continue
		}
		seen[e.Generated.Line] = struct{}{}
		e.Generated.Column = 0
		if e.HasOriginal {
			e.Original.Column = 0
		}
		tables.add(e)
		out.Mappings = append(out.Mappings, e)
	}
	out.Sources, out.Names = tables.sources, tables.names
	return out
}

// tableBuilder collects sources and names in first-seen order.
type tableBuilder struct {
	sources   []string
	names     []string
	seenSrc   map[string]struct{}
	seenNames map[string]struct{}
}

func newTableBuilder() *tableBuilder {
	return &tableBuilder{
		seenSrc:   make(map[string]struct{}),
		seenNames: make(map[string]struct{}),
	}
}

func (t *tableBuilder) add(e Mapping) {
	if !e.HasOriginal {
		return
	}
	if _, ok := t.seenSrc[e.Source]; !ok {
		t.seenSrc[e.Source] = struct{}{}
		t.sources = append(t.sources, e.Source)
	}
	if e.Name == "" {
		return
	}
	if _, ok := t.seenNames[e.Name]; !ok {
		t.seenNames[e.Name] = struct{}{}
		t.names = append(t.names, e.Name)
	}
}
