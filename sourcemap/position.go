package sourcemap

import "fmt"

// Position is a zero-based line and column.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Compare orders positions by line, then column.
func (p Position) Compare(o Position) int {
	switch {
	case p.Line < o.Line:
		return -1
	case p.Line > o.Line:
		return 1
	case p.Column < o.Column:
		return -1
	case p.Column > o.Column:
		return 1
	}
	return 0
}

func (p Position) Less(o Position) bool { return p.Compare(o) < 0 }

// ApproxEqual reports whether p and o are close enough to be treated as the
// same location: the same line with columns at most one apart, or adjacent
// lines where the later position sits at column 0. Minifiers round positions
// at map boundaries in exactly these ways.
func (p Position) ApproxEqual(o Position) bool {
	switch p.Line - o.Line {
	case 0:
		d := p.Column - o.Column
		return d >= -1 && d <= 1
	case 1:
		return p.Column == 0
	case -1:
		return o.Column == 0
	}
	return false
}

// Mapping ties a generated position to an optional original location.
// Source and Name are meaningful only when HasOriginal is set; an empty Name
// means the segment carries no symbol.
type Mapping struct {
	Generated   Position
	HasOriginal bool
	Original    Position
	Source      string
	Name        string
}

func (m Mapping) String() string {
	if !m.HasOriginal {
		return m.Generated.String()
	}
	s := fmt.Sprintf("%s -> %s:%s", m.Generated, m.Source, m.Original)
	if m.Name != "" {
		s += " (" + m.Name + ")"
	}
	return s
}
