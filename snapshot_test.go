package assetpack

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"io"
	"testing"

	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logicossoftware/go-assetpack/sourcemap"
)

func warmStore(t *testing.T, files map[string]string) *Store {
	t.Helper()
	store := NewStore(siteFS(files))
	src, err := store.Load("js/a.js")
	require.NoError(t, err)

	out := src.derive()
	out.Path = "@js/a.min.js"
	out.SetURL("/js/a.min.js")
	out.SetText("a()")
	out.recipe = "squash;flatten=false;upstream=true"
	out.Map = &sourcemap.SourceMap{
		Version: sourcemap.Version3,
		File:    "a.min.js",
		Sources: []string{"js/a.js"},
		Mappings: []sourcemap.Mapping{{
			Generated:   sourcemap.Position{Column: 0},
			HasOriginal: true,
			Source:      "js/a.js",
			Original:    sourcemap.Position{Line: 0, Column: 0},
		}},
	}
	store.Put(out)
	return store
}

func snapshotBytes(t *testing.T, s *Store) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, s.WriteSnapshot(&buf))
	return buf.Bytes()
}

func TestSnapshotRoundTrip(t *testing.T) {
	files := map[string]string{"js/a.js": "a();\n"}
	store := warmStore(t, files)
	data := snapshotBytes(t, store)
	assert.Equal(t, SnapshotMagic[:], data[:8])
	assert.Equal(t, SnapshotVersion, binary.LittleEndian.Uint16(data[8:10]))

	restored := NewStore(siteFS(files))
	require.NoError(t, restored.ReadSnapshot(bytes.NewReader(data)))
	assert.Equal(t, store.Keys(), restored.Keys())

	want, _ := store.Lookup("@js/a.min.js")
	got, ok := restored.Lookup("@js/a.min.js")
	require.True(t, ok)
	assert.Equal(t, want.Text(), got.Text())
	assert.Equal(t, want.Digest, got.Digest)
	assert.Equal(t, want.URL(), got.URL())
	assert.Equal(t, want.Dependencies(), got.Dependencies())
	assert.Equal(t, want.Map, got.Map)
	assert.True(t, got.Generated())
	assert.Equal(t, want.sourceDigest, got.sourceDigest)
	assert.Equal(t, "squash;flatten=false;upstream=true", got.recipe)

	// unchanged source: the restored entry and its dependents survive
	src, err := restored.Load("js/a.js")
	require.NoError(t, err)
	assert.Equal(t, "a();\n", src.Text())
	_, ok = restored.Lookup("@js/a.min.js")
	assert.True(t, ok)
}

func TestSnapshotStaleSourceIsReplaced(t *testing.T) {
	data := snapshotBytes(t, warmStore(t, map[string]string{"js/a.js": "a();\n"}))

	restored := NewStore(siteFS(map[string]string{"js/a.js": "a(2);\n"}))
	require.NoError(t, restored.ReadSnapshot(bytes.NewReader(data)))

	src, err := restored.Load("js/a.js")
	require.NoError(t, err)
	assert.Equal(t, "a(2);\n", src.Text())
	_, ok := restored.Lookup("@js/a.min.js")
	assert.False(t, ok)
}

func TestSnapshotDeletedSourceIsDropped(t *testing.T) {
	data := snapshotBytes(t, warmStore(t, map[string]string{"js/a.js": "a();\n"}))

	restored := NewStore(siteFS(map[string]string{}))
	require.NoError(t, restored.ReadSnapshot(bytes.NewReader(data)))
	_, err := restored.Load("js/a.js")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, restored.Keys())
}

func rawSnapshot(flags uint16, payload []byte, size uint64) []byte {
	var buf bytes.Buffer
	_ = writeSnapshotHeader(&buf, snapshotHeader{Magic: SnapshotMagic, Version: SnapshotVersion, Flags: flags})
	var prefix [8]byte
	binary.LittleEndian.PutUint64(prefix[:], size)
	buf.Write(prefix[:])
	buf.Write(payload)
	return buf.Bytes()
}

func TestReadSnapshot_Uncompressed(t *testing.T) {
	var raw bytes.Buffer
	require.NoError(t, gob.NewEncoder(&raw).Encode([]snapshotEntry{{Path: "@x.js", Text: "x", Generated: true}}))

	store := NewStore(nil)
	require.NoError(t, store.ReadSnapshot(bytes.NewReader(rawSnapshot(0, raw.Bytes(), uint64(raw.Len())))))
	c, ok := store.Lookup("@x.js")
	require.True(t, ok)
	assert.Equal(t, "x", c.Text())
}

func TestReadSnapshot_Errors(t *testing.T) {
	good := snapshotBytes(t, warmStore(t, map[string]string{"js/a.js": "a();\n"}))
	mutate := func(f func(b []byte)) []byte {
		b := bytes.Clone(good)
		f(b)
		return b
	}

	var entries bytes.Buffer
	require.NoError(t, gob.NewEncoder(&entries).Encode([]snapshotEntry{{Path: "a"}, {Path: "b"}}))

	cases := []struct {
		name   string
		data   []byte
		limits Limits
		want   error
	}{
		{"empty", nil, Limits{}, ErrInvalidSnapshot},
		{"short header", good[:10], Limits{}, ErrInvalidSnapshot},
		{"bad magic", mutate(func(b []byte) { b[0] = 'X' }), Limits{}, ErrInvalidSnapshot},
		{"bad version", mutate(func(b []byte) { b[8] = 9 }), Limits{}, ErrInvalidSnapshot},
		{"unknown flag", mutate(func(b []byte) { b[10] |= 0x2 }), Limits{}, ErrInvalidSnapshot},
		{"reserved", mutate(func(b []byte) { b[12] = 1 }), Limits{}, ErrInvalidSnapshot},
		{"no length", good[:snapshotHeaderSize+4], Limits{}, ErrInvalidSnapshot},
		{"truncated payload", good[:snapshotHeaderSize+8+10], Limits{}, ErrInvalidSnapshot},
		{"length mismatch", mutate(func(b []byte) { b[snapshotHeaderSize] ^= 0x01 }), Limits{}, ErrInvalidSnapshot},
		{"size limit", good, Limits{MaxSnapshotSize: 8}, ErrLimitExceeded},
		{"bad gob", rawSnapshot(0, []byte("not gob"), 7), Limits{}, ErrInvalidSnapshot},
		{"entry limit", rawSnapshot(0, entries.Bytes(), uint64(entries.Len())), Limits{MaxSnapshotEntries: 1}, ErrLimitExceeded},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := NewStore(nil, WithStoreLimits(tc.limits))
			err := store.ReadSnapshot(bytes.NewReader(tc.data))
			assert.ErrorIs(t, err, tc.want)
			assert.Empty(t, store.Keys())
		})
	}
}

func TestWriteSnapshot_ErrorPaths(t *testing.T) {
	store := warmStore(t, map[string]string{"js/a.js": "a();\n"})

	assert.Error(t, store.WriteSnapshot(errWriter{}))

	origGob := gobEncoder
	gobEncoder = func(io.Writer, any) error { return io.ErrClosedPipe }
	assert.ErrorIs(t, store.WriteSnapshot(io.Discard), io.ErrClosedPipe)
	gobEncoder = origGob

	origClose := lz4Close
	lz4Close = func(*lz4.Writer) error { return io.ErrClosedPipe }
	assert.ErrorIs(t, store.WriteSnapshot(io.Discard), io.ErrClosedPipe)
	lz4Close = origClose

	small := NewStore(nil, WithStoreLimits(Limits{MaxSnapshotSize: 8}))
	small.Put(NewContent("@big.js", "0123456789abcdef"))
	assert.ErrorIs(t, small.WriteSnapshot(io.Discard), ErrLimitExceeded)
}
