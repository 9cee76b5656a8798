package assetpack

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
	"sort"

	"github.com/pierrec/lz4/v4"

	"github.com/logicossoftware/go-assetpack/sourcemap"
)

// SnapshotVersion is the only snapshot layout this package reads or writes.
const SnapshotVersion uint16 = 1

// SnapshotMagic is the 8-byte signature of a store snapshot.
var SnapshotMagic = [8]byte{'A', 'P', 'S', 'N', 'A', 'P', '\n', 0x1A}

const (
	snapshotHeaderSize     = 16
	snapshotFlagCompressed = 0x0001
)

// Function variables for testing injection.
var (
	lz4Close   = func(w *lz4.Writer) error { return w.Close() }
	gobEncoder = func(w io.Writer, v any) error { return gob.NewEncoder(w).Encode(v) }
)

type snapshotHeader struct {
	Magic    [8]byte
	Version  uint16
	Flags    uint16
	Reserved uint32
}

type snapshotEntry struct {
	Path         string
	Text         string
	URL          string
	Deps         []string
	Map          *sourcemap.SourceMap
	Generated    bool
	SourceDigest [32]byte
	Recipe       string
}

func writeSnapshotHeader(w io.Writer, h snapshotHeader) error {
	var buf [snapshotHeaderSize]byte
	copy(buf[0:8], h.Magic[:])
	binary.LittleEndian.PutUint16(buf[8:10], h.Version)
	binary.LittleEndian.PutUint16(buf[10:12], h.Flags)
	binary.LittleEndian.PutUint32(buf[12:16], h.Reserved)
	_, err := w.Write(buf[:])
	return err
}

func readSnapshotHeader(r io.Reader) (snapshotHeader, error) {
	var buf [snapshotHeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return snapshotHeader{}, fmt.Errorf("%w: header: %v", ErrInvalidSnapshot, err)
	}
	var h snapshotHeader
	copy(h.Magic[:], buf[0:8])
	h.Version = binary.LittleEndian.Uint16(buf[8:10])
	h.Flags = binary.LittleEndian.Uint16(buf[10:12])
	h.Reserved = binary.LittleEndian.Uint32(buf[12:16])
	return h, nil
}

// WriteSnapshot writes every cached artifact to w so a later build can start
// warm. The payload is gob-encoded and LZ4-compressed behind an 8-byte
// uncompressed length.
func (s *Store) WriteSnapshot(w io.Writer) error {
	s.mu.RLock()
	entries := make([]snapshotEntry, 0, len(s.entries))
	for _, c := range s.entries {
		entries = append(entries, snapshotEntry{
			Path:         c.Path,
			Text:         c.text,
			URL:          c.url,
			Deps:         c.deps,
			Map:          c.Map,
			Generated:    c.generated,
			SourceDigest: c.sourceDigest,
			Recipe:       c.recipe,
		})
	}
	s.mu.RUnlock()
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

	var raw bytes.Buffer
	if err := gobEncoder(&raw, entries); err != nil {
		return err
	}
	if uint64(raw.Len()) > s.limits.MaxSnapshotSize {
		return fmt.Errorf("%w: snapshot is %d bytes", ErrLimitExceeded, raw.Len())
	}

	var payload bytes.Buffer
	var prefix [8]byte
	binary.LittleEndian.PutUint64(prefix[:], uint64(raw.Len()))
	payload.Write(prefix[:])
	zw := lz4.NewWriter(&payload)
	if _, err := zw.Write(raw.Bytes()); err != nil {
		_ = lz4Close(zw)
		return err
	}
	if err := lz4Close(zw); err != nil {
		return err
	}

	h := snapshotHeader{Magic: SnapshotMagic, Version: SnapshotVersion, Flags: snapshotFlagCompressed}
	if err := writeSnapshotHeader(w, h); err != nil {
		return err
	}
	_, err := w.Write(payload.Bytes())
	return err
}

// ReadSnapshot loads artifacts written by WriteSnapshot into the cache,
// replacing entries with the same key. Restored source files are re-read and
// compared by digest the first time they are loaded.
func (s *Store) ReadSnapshot(r io.Reader) error {
	h, err := readSnapshotHeader(r)
	if err != nil {
		return err
	}
	if h.Magic != SnapshotMagic {
		return fmt.Errorf("%w: bad magic", ErrInvalidSnapshot)
	}
	if h.Version != SnapshotVersion {
		return fmt.Errorf("%w: version %d", ErrInvalidSnapshot, h.Version)
	}
	if h.Reserved != 0 || h.Flags&^snapshotFlagCompressed != 0 {
		return fmt.Errorf("%w: reserved bits set", ErrInvalidSnapshot)
	}

	var prefix [8]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return fmt.Errorf("%w: length: %v", ErrInvalidSnapshot, err)
	}
	size := binary.LittleEndian.Uint64(prefix[:])
	if size > s.limits.MaxSnapshotSize {
		return fmt.Errorf("%w: snapshot is %d bytes", ErrLimitExceeded, size)
	}
	body := r
	if h.Flags&snapshotFlagCompressed != 0 {
		body = lz4.NewReader(r)
	}
	raw, err := io.ReadAll(io.LimitReader(body, int64(size)+1))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if uint64(len(raw)) != size {
		return fmt.Errorf("%w: payload is %d bytes, header says %d", ErrInvalidSnapshot, len(raw), size)
	}

	var entries []snapshotEntry
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&entries); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if len(entries) > s.limits.MaxSnapshotEntries {
		return fmt.Errorf("%w: %d snapshot entries", ErrLimitExceeded, len(entries))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		c := NewContent(e.Path, e.Text)
		c.url = e.URL
		c.deps = e.Deps
		c.Map = e.Map
		c.generated = e.Generated
		c.sourceDigest = e.SourceDigest
		c.recipe = e.Recipe
		s.entries[e.Path] = c
		if !e.Generated {
			s.stale[e.Path] = struct{}{}
		}
	}
	return nil
}
