package sourcemap

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalJSON(t *testing.T) {
	m := &SourceMap{
		Version: Version3,
		File:    "out.js",
		Sources: []string{"a.js", "b.js"},
		Names:   []string{"x", "y"},
	}
	var err error
	m.Mappings, err = DecodeMappings("AAAA,CAACC;;AACA", m.Sources, m.Names)
	require.NoError(t, err)

	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":3,"file":"out.js","sources":["a.js","b.js"],"names":["x","y"],"mappings":"AAAA,CAACC;;AACA;"}`, string(b))

	got, err := Unmarshal(b)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestMarshalJSONEmptyTables(t *testing.T) {
	b, err := New("empty.js").MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":3,"file":"empty.js","sources":[],"names":[],"mappings":";"}`, string(b))
}

func TestUnmarshalErrors(t *testing.T) {
	_, err := Unmarshal([]byte(`{"version":2,"sources":[],"names":[],"mappings":""}`))
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = Unmarshal([]byte(`{not json`))
	assert.ErrorIs(t, err, ErrFormat)

	_, err = Unmarshal([]byte(`{"version":3,"sources":["a.js"],"names":[],"mappings":"AA"}`))
	assert.ErrorIs(t, err, ErrSegment)
}

func TestEncodeDecode(t *testing.T) {
	m := lookupMap()
	m.File = "a.min.js"
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, m))

	got, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestInlineComment(t *testing.T) {
	m := lookupMap()
	comment, err := m.InlineComment()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(comment, "//# sourceMappingURL="+InlinePrefix))

	ref, ok := Reference("var a=1;\n" + comment + "\n")
	require.True(t, ok)

	got, inline, err := DecodeInline(ref)
	require.NoError(t, err)
	require.True(t, inline)
	assert.Equal(t, m.Mappings, got.Mappings)
}

func TestDecodeInlineNotInline(t *testing.T) {
	_, inline, err := DecodeInline("app.js.map")
	require.NoError(t, err)
	assert.False(t, inline)

	_, inline, err = DecodeInline(InlinePrefix + "!!!")
	assert.True(t, inline)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestReference(t *testing.T) {
	tests := []struct {
		text string
		want string
		ok   bool
	}{
		{"a();\n//# sourceMappingURL=a.js.map\n", "a.js.map", true},
		{"a();\n//#sourceMappingURL=a.js.map", "a.js.map", true},
		{"body{}\n/*# sourceMappingURL=site.css.map */\n", "site.css.map", true},
		{"body{}\n/*# sourceMappingURL=site.css.map*/", "site.css.map", true},
		{"x = '//# sourceMappingURL=nope.map';\n", "", false},
		{"plain();\n", "", false},
	}
	for _, tt := range tests {
		got, ok := Reference(tt.text)
		assert.Equal(t, tt.ok, ok, tt.text)
		assert.Equal(t, tt.want, got, tt.text)
	}
}
