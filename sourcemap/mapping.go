package sourcemap

import (
	"fmt"
	"io"
	"strings"
)

// DecodeMappings parses a packed V3 mappings string.
//
// Generated lines are separated by ';' and segments by ','. The generated
// column restarts at zero on every line; the source index, original line,
// original column and name index are running values across the whole string.
// Source and name indexes are resolved against sources and names, and an
// index outside either table is an error.
func DecodeMappings(mappings string, sources, names []string) ([]Mapping, error) {
	var (
		out    []Mapping
		src    int
		oLine  int
		oCol   int
		name   int
		fields [5]int
	)
	for line, text := range strings.Split(mappings, ";") {
		if text == "" {
			continue
		}
		col := 0
		for segIdx, seg := range strings.Split(text, ",") {
			n, err := readSegment(seg, &fields)
			if err != nil {
				return nil, fmt.Errorf("line %d segment %d: %w", line, segIdx, err)
			}
			if n != 1 && n != 4 && n != 5 {
				return nil, fmt.Errorf("%w: line %d segment %d has %d fields", ErrSegment, line, segIdx, n)
			}
			col += fields[0]
			m := Mapping{Generated: Position{Line: line, Column: col}}
			if n >= 4 {
				src += fields[1]
				oLine += fields[2]
				oCol += fields[3]
				if src < 0 || src >= len(sources) {
					return nil, fmt.Errorf("%w: source %d at line %d segment %d", ErrIndexOutOfRange, src, line, segIdx)
				}
				m.HasOriginal = true
				m.Source = sources[src]
				m.Original = Position{Line: oLine, Column: oCol}
			}
			if n == 5 {
				name += fields[4]
				if name < 0 || name >= len(names) {
					return nil, fmt.Errorf("%w: name %d at line %d segment %d", ErrIndexOutOfRange, name, line, segIdx)
				}
				m.Name = names[name]
			}
			out = append(out, m)
		}
	}
	return out, nil
}

// readSegment decodes up to five quantities into fields and returns how many
// the segment holds. More than five is reported as six.
func readSegment(seg string, fields *[5]int) (int, error) {
	r := &stringReader{s: seg}
	n := 0
	for {
		v, err := ReadVLQ(r)
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return 0, err
		}
		if n == len(fields) {
			return n + 1, nil
		}
		fields[n] = v
		n++
	}
}

// EncodeMappings packs mappings into a V3 mappings string.
//
// The entries must already be sorted by generated position. Every source and
// name an entry refers to must be present in the given tables. The result
// always ends with ';'.
func EncodeMappings(mappings []Mapping, sources, names []string) (string, error) {
	srcIdx := indexOf(sources)
	nameIdx := indexOf(names)

	var (
		buf      []byte
		line     int
		col      int
		src      int
		oLine    int
		oCol     int
		name     int
		firstSeg = true
	)
	for _, m := range mappings {
		for line < m.Generated.Line {
			buf = append(buf, ';')
			line++
			col = 0
			firstSeg = true
		}
		if !firstSeg {
			buf = append(buf, ',')
		}
		firstSeg = false

		buf = AppendVLQ(buf, m.Generated.Column-col)
		col = m.Generated.Column
		if !m.HasOriginal {
			continue
		}
		si, ok := srcIdx[m.Source]
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownSource, m.Source)
		}
		buf = AppendVLQ(buf, si-src)
		buf = AppendVLQ(buf, m.Original.Line-oLine)
		buf = AppendVLQ(buf, m.Original.Column-oCol)
		src, oLine, oCol = si, m.Original.Line, m.Original.Column
		if m.Name == "" {
			continue
		}
		ni, ok := nameIdx[m.Name]
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownName, m.Name)
		}
		buf = AppendVLQ(buf, ni-name)
		name = ni
	}
	buf = append(buf, ';')
	return string(buf), nil
}

// indexOf maps each string to its first position in table.
func indexOf(table []string) map[string]int {
	idx := make(map[string]int, len(table))
	for i, s := range table {
		if _, ok := idx[s]; !ok {
			idx[s] = i
		}
	}
	return idx
}
