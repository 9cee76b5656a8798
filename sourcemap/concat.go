package sourcemap

// Concat assembles the map of a file built by joining several parts one
// after another. Parts must be added in output order.
type Concat struct {
	file     string
	mappings []Mapping
	tables   *tableBuilder
}

// NewConcat starts a concatenated map for the output file.
func NewConcat(file string) *Concat {
	return &Concat{file: file, tables: newTableBuilder()}
}

// Add places part's mappings at generated line offset.
func (c *Concat) Add(offset int, part *SourceMap) {
	for _, e := range part.Mappings {
		e.Generated.Line += offset
		c.tables.add(e)
		c.mappings = append(c.mappings, e)
	}
}

// AddIdentity maps lines [offset, offset+lines) to the first column of the
// same lines of source. It stands in for parts that carry no map of their own.
func (c *Concat) AddIdentity(offset, lines int, source string) {
	for i := 0; i < lines; i++ {
		e := Mapping{
			Generated:   Position{Line: offset + i},
			HasOriginal: true,
			Original:    Position{Line: i},
			Source:      source,
		}
		c.tables.add(e)
		c.mappings = append(c.mappings, e)
	}
}

// Map returns the assembled source map.
func (c *Concat) Map() *SourceMap {
	m := &SourceMap{
		Version:  Version3,
		File:     c.file,
		Sources:  append([]string(nil), c.tables.sources...),
		Names:    append([]string(nil), c.tables.names...),
		Mappings: append([]Mapping(nil), c.mappings...),
	}
	m.Sort()
	return m
}
