package sourcemap

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// InlinePrefix starts the data URL of an inline source map reference.
const InlinePrefix = "data:application/json;base64,"

// fileV3 is the JSON shape of a source map file.
type fileV3 struct {
	Version    int      `json:"version"`
	File       string   `json:"file"`
	SourceRoot string   `json:"sourceRoot,omitempty"`
	Sources    []string `json:"sources"`
	Names      []string `json:"names"`
	Mappings   string   `json:"mappings"`
}

// MarshalJSON encodes m as a V3 source map file.
func (m *SourceMap) MarshalJSON() ([]byte, error) {
	mappings, err := m.EncodedMappings()
	if err != nil {
		return nil, err
	}
	f := fileV3{
		Version:    m.Version,
		File:       m.File,
		SourceRoot: m.SourceRoot,
		Sources:    m.Sources,
		Names:      m.Names,
		Mappings:   mappings,
	}
	if f.Version == 0 {
		f.Version = Version3
	}
	if f.Sources == nil {
		f.Sources = []string{}
	}
	if f.Names == nil {
		f.Names = []string{}
	}
	return json.Marshal(f)
}

// UnmarshalJSON decodes a V3 source map file into m.
func (m *SourceMap) UnmarshalJSON(data []byte) error {
	var f fileV3
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if f.Version != Version3 {
		return fmt.Errorf("%w: %d", ErrUnsupported, f.Version)
	}
	mappings, err := DecodeMappings(f.Mappings, f.Sources, f.Names)
	if err != nil {
		return err
	}
	if len(f.Sources) == 0 {
		f.Sources = nil
	}
	if len(f.Names) == 0 {
		f.Names = nil
	}
	*m = SourceMap{
		Version:    f.Version,
		File:       f.File,
		SourceRoot: f.SourceRoot,
		Sources:    f.Sources,
		Names:      f.Names,
		Mappings:   mappings,
	}
	return nil
}

// Unmarshal parses a V3 source map file.
func Unmarshal(data []byte) (*SourceMap, error) {
	m := new(SourceMap)
	if err := m.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return m, nil
}

// Decode reads a V3 source map file from r.
func Decode(r io.Reader) (*SourceMap, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}

// Encode writes m to w as a V3 source map file.
func Encode(w io.Writer, m *SourceMap) error {
	b, err := m.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// InlineComment returns the trailing line comment that embeds m as a base64
// data URL.
func (m *SourceMap) InlineComment() (string, error) {
	b, err := m.MarshalJSON()
	if err != nil {
		return "", err
	}
	return "//# sourceMappingURL=" + InlinePrefix + base64.StdEncoding.EncodeToString(b), nil
}

var referencePattern = regexp.MustCompile(`(?m)^(?://#|/\*#)\s*sourceMappingURL=(\S+?)\s*(?:\*/)?\s*$`)

// Reference returns the last sourceMappingURL found in text, in either line
// or block comment form.
func Reference(text string) (string, bool) {
	all := referencePattern.FindAllStringSubmatch(text, -1)
	if len(all) == 0 {
		return "", false
	}
	return strings.TrimSuffix(all[len(all)-1][1], "*/"), true
}

// DecodeInline decodes a data URL produced by InlineComment. It reports
// ok=false when url is not an inline JSON data URL.
func DecodeInline(url string) (m *SourceMap, ok bool, err error) {
	if !strings.HasPrefix(url, InlinePrefix) {
		return nil, false, nil
	}
	raw, err := base64.StdEncoding.DecodeString(url[len(InlinePrefix):])
	if err != nil {
		return nil, true, fmt.Errorf("%w: inline map: %v", ErrFormat, err)
	}
	m, err = Decode(bytes.NewReader(raw))
	return m, true, err
}
