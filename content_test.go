package assetpack

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"
)

func TestStoreLoad(t *testing.T) {
	store := NewStore(siteFS(map[string]string{"js/app.js": "app();\n"}))

	c, err := store.Load("/js/app.js")
	require.NoError(t, err)
	assert.Equal(t, "js/app.js", c.Path)
	assert.Equal(t, "app();\n", c.Text())
	assert.Equal(t, blake3.Sum256([]byte("app();\n")), c.Digest)
	assert.False(t, c.Generated())

	again, err := store.Load("js/app.js")
	require.NoError(t, err)
	assert.Same(t, c, again)

	_, err = store.Load("js/missing.js")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Load("js")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestStoreLoad_SizeLimit(t *testing.T) {
	store := NewStore(siteFS(map[string]string{"big.js": "0123456789"}), WithStoreLimits(Limits{MaxAssetSize: 4}))
	_, err := store.Load("big.js")
	assert.ErrorIs(t, err, ErrLimitExceeded)
}

func TestStoreNilFS(t *testing.T) {
	store := NewStore(nil)
	_, err := store.Load("a.js")
	assert.ErrorIs(t, err, ErrNotFound)
	matches, err := store.Glob("*.js")
	assert.NoError(t, err)
	assert.Empty(t, matches)
}

func TestStoreGlob(t *testing.T) {
	fsys := siteFS(map[string]string{
		"js/b.js":        "",
		"js/a.js":        "",
		"js/sub/c.js":    "",
		"css/site.css":   "",
		"js/dir.js/x.js": "",
	})
	store := NewStore(fsys)

	got, err := store.Glob("/js/*.js")
	require.NoError(t, err)
	assert.Equal(t, []string{"js/a.js", "js/b.js"}, got)

	_, err = store.Glob("js/[")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestStoreInvalidate_Transitive(t *testing.T) {
	store := NewStore(fstest.MapFS{})
	a := NewContent("a.js", "a")
	minified := NewContent("@a.min.js", "a")
	minified.AddDependency("a.js")
	all := NewContent("@all.js", "a b")
	all.AddDependency("@a.min.js")
	all.AddDependency("b.js")
	other := NewContent("@other.js", "c")
	other.AddDependency("c.js")
	for _, c := range []*Content{a, minified, all, other} {
		store.Put(c)
	}

	assert.Equal(t, []string{"@a.min.js", "@all.js", "a.js"}, store.Invalidate("a.js"))
	assert.Equal(t, []string{"@other.js"}, store.Keys())

	// dependents go even when the key itself was never cached
	assert.Equal(t, []string{"@other.js"}, store.Invalidate("c.js"))
	assert.Empty(t, store.Invalidate("c.js"))
}

func TestContentDependencies(t *testing.T) {
	c := NewContent("@x.js", "")
	c.AddDependency("a.js")
	c.AddDependency("b.js")
	c.AddDependency("a.js")
	deps := c.Dependencies()
	assert.Equal(t, []string{"a.js", "b.js"}, deps)

	deps[0] = "changed"
	assert.Equal(t, []string{"a.js", "b.js"}, c.Dependencies())

	d := c.derive()
	assert.Equal(t, []string{"@x.js"}, d.Dependencies())
	assert.Equal(t, c.Digest, d.sourceDigest)

	c.SetText("new")
	assert.True(t, c.Generated())
	assert.Equal(t, blake3.Sum256([]byte("new")), c.Digest)
}
