package assetpack

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"sort"
	"sync"

	"github.com/zeebo/blake3"

	"github.com/logicossoftware/go-assetpack/sourcemap"
)

// Content is a resolved artifact: either a file read from the site or an
// output produced by minification or concatenation.
type Content struct {
	// Path is the store key. Source files use their normalized site path.
	Path string
	// Map describes how Text relates to the files it was built from. It is
	// nil for files passed through unchanged.
	Map *sourcemap.SourceMap
	// Digest is the BLAKE3 hash of Text.
	Digest [32]byte

	text         string
	url          string
	deps         []string
	generated    bool
	sourceDigest [32]byte
	recipe       string
}

// NewContent returns a content artifact holding text.
func NewContent(path, text string) *Content {
	return &Content{Path: path, text: text, Digest: blake3.Sum256([]byte(text))}
}

func (c *Content) Text() string { return c.text }

// SetText replaces the text and marks the artifact as generated.
func (c *Content) SetText(text string) {
	c.text = text
	c.Digest = blake3.Sum256([]byte(text))
	c.generated = true
}

// Generated reports whether the text differs from what was read from disk.
func (c *Content) Generated() bool { return c.generated }

func (c *Content) URL() string { return c.url }

func (c *Content) SetURL(u string) { c.url = u }

// Dependencies returns the store keys this artifact was built from.
func (c *Content) Dependencies() []string { return slices.Clone(c.deps) }

// AddDependency records that this artifact was built from key. The list only
// grows.
func (c *Content) AddDependency(key string) {
	if !slices.Contains(c.deps, key) {
		c.deps = append(c.deps, key)
	}
}

// derive returns an output artifact for the same text that depends on c.
func (c *Content) derive() *Content {
	d := &Content{
		Path:         c.Path,
		Digest:       c.Digest,
		text:         c.text,
		url:          c.url,
		sourceDigest: c.Digest,
	}
	d.AddDependency(c.Path)
	return d
}

// ContentStore provides the backing content of links, keyed by normalized
// path.
type ContentStore interface {
	// Load returns the content for key, reading it on a cache miss.
	Load(key string) (*Content, error)
	// Lookup returns cached content without reading anything.
	Lookup(key string) (*Content, bool)
	// Put caches an artifact under its Path.
	Put(c *Content)
	// Invalidate drops key and every artifact that depends on it, directly
	// or transitively, and returns the dropped keys.
	Invalidate(key string) []string
	// Glob returns the files matching pattern in lexical order.
	Glob(pattern string) ([]string, error)
}

// Store is a ContentStore over a file system. It is safe for concurrent use.
type Store struct {
	fsys   fs.FS
	limits Limits

	mu      sync.RWMutex
	entries map[string]*Content
	stale   map[string]struct{}
}

var _ ContentStore = (*Store)(nil)

// NewStore returns a store reading from fsys.
func NewStore(fsys fs.FS, opts ...StoreOption) *Store {
	cfg := storeConfig{limits: DefaultLimits()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Store{
		fsys:    fsys,
		limits:  cfg.limits.withDefaults(),
		entries: make(map[string]*Content),
		stale:   make(map[string]struct{}),
	}
}

// Load returns the cached content for key or reads the file. Entries
// restored from a snapshot are checked against the file once; when the file
// changed, the entry and its dependents are replaced.
func (s *Store) Load(key string) (*Content, error) {
	key = cleanPath(key)
	s.mu.RLock()
	c, ok := s.entries[key]
	_, stale := s.stale[key]
	s.mu.RUnlock()
	if ok && !stale {
		return c, nil
	}

	fresh, err := s.read(key)
	if err != nil {
		if stale {
			s.Invalidate(key)
		}
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stale, key)
	if cur, ok := s.entries[key]; ok {
		if cur.Digest == fresh.Digest {
			return cur, nil
		}
		s.invalidateLocked(key)
	}
	s.entries[key] = fresh
	return fresh, nil
}

func (s *Store) read(key string) (*Content, error) {
	if s.fsys == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	info, err := fs.Stat(s.fsys, key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrInvalidPath, key)
	}
	if info.Size() > s.limits.MaxAssetSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrLimitExceeded, key, info.Size())
	}
	b, err := fs.ReadFile(s.fsys, key)
	if err != nil {
		return nil, err
	}
	return NewContent(key, string(b)), nil
}

func (s *Store) Lookup(key string) (*Content, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.entries[key]
	return c, ok
}

func (s *Store) Put(c *Content) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[c.Path] = c
	delete(s.stale, c.Path)
}

func (s *Store) Invalidate(key string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invalidateLocked(key)
}

func (s *Store) invalidateLocked(key string) []string {
	var dropped []string
	queue := []string{key}
	seen := map[string]struct{}{key: {}}
	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]
		if _, ok := s.entries[k]; ok {
			delete(s.entries, k)
			delete(s.stale, k)
			dropped = append(dropped, k)
		}
		for other, c := range s.entries {
			if _, ok := seen[other]; ok {
				continue
			}
			if slices.Contains(c.deps, k) {
				seen[other] = struct{}{}
				queue = append(queue, other)
			}
		}
	}
	sort.Strings(dropped)
	return dropped
}

// Keys lists the cached keys in lexical order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *Store) Glob(pattern string) ([]string, error) {
	if s.fsys == nil {
		return nil, nil
	}
	matches, err := fs.Glob(s.fsys, cleanPath(pattern))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPath, pattern, err)
	}
	files := matches[:0]
	for _, m := range matches {
		info, err := fs.Stat(s.fsys, m)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, m)
	}
	return files, nil
}
