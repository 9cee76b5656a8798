package assetpack

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsoncConfig = `{
	// site bundles
	"bundles": [
		{
			"name": "app",
			"concat": true,
			"minify": true,
			"minifiedSuffix": "-min",
			"destinations": {"js": "/static/js/", "style": "/static/css/"},
			"scripts": [
				"js/vendor/*.js",
				{"path": "js/app.js", "url": "/static/js/main.js"},
			],
			"styles": [
				{"resource": {"root": "theme", "path": "css/theme.css"}},
			],
			"content": ["img/logo.png"],
		},
		{"name": "admin", "scripts": ["js/admin.js"]},
	],
}`

const yamlConfig = `
bundles:
  - name: app
    concat: true
    minify: true
    minifiedSuffix: -min
    destinations:
      js: /static/js/
      style: /static/css/
    scripts:
      - js/vendor/*.js
      - path: js/app.js
        url: /static/js/main.js
    styles:
      - resource:
          root: theme
          path: css/theme.css
    content:
      - img/logo.png
  - name: admin
    scripts:
      - js/admin.js
`

func applyConfig(t *testing.T, data, format string) *Registry {
	t.Helper()
	cfg, err := ParseConfig([]byte(data), format)
	require.NoError(t, err)
	reg := NewRegistry()
	require.NoError(t, cfg.Apply(reg))
	return reg
}

func TestConfig_JSONCAndYAMLAgree(t *testing.T) {
	fromJSON := applyConfig(t, jsoncConfig, "json")
	fromYAML := applyConfig(t, yamlConfig, "yaml")
	assert.Equal(t, fromJSON.Names(), fromYAML.Names())
	for _, name := range fromJSON.Names() {
		a, _ := fromJSON.Lookup(name)
		b, _ := fromYAML.Lookup(name)
		assert.Equal(t, a, b, name)
	}

	app, ok := fromJSON.Lookup("app")
	require.True(t, ok)
	assert.True(t, app.Concat)
	assert.True(t, app.Minify)
	assert.Equal(t, "-min", app.MinifiedSuffix)
	assert.Equal(t, map[Kind]string{KindScript: "/static/js/", KindStyle: "/static/css/"}, app.Destinations)
	assert.Equal(t, []string{"js/vendor/*.js", "js/app.js", "theme/css/theme.css", "img/logo.png"}, linkPaths(app))
	assert.Equal(t, "/static/js/main.js", app.Links[1].URL)
	assert.Equal(t, KindStyle, app.Links[2].Kind)
}

func TestParseConfig_Errors(t *testing.T) {
	cases := []struct {
		name, data, format string
	}{
		{"bad json", `{"bundles": [`, "json"},
		{"unknown json field", `{"bundle": []}`, "json"},
		{"bad yaml", "bundles: [", "yaml"},
		{"unknown yaml field", "bundle: []", "yaml"},
		{"unknown format", "{}", "toml"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tc.data), tc.format)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestConfigApply_Errors(t *testing.T) {
	cases := []struct {
		name string
		data string
		want error
	}{
		{"duplicate", `{"bundles": [{"name": "a"}, {"name": "a"}]}`, ErrDuplicateBundle},
		{"bad kind", `{"bundles": [{"name": "a", "destinations": {"img": "/i/"}}]}`, ErrInvalidConfig},
		{"empty link", `{"bundles": [{"name": "a", "scripts": [{}]}]}`, ErrInvalidConfig},
		{"path and resource", `{"bundles": [{"name": "a", "scripts": [{"path": "a.js", "resource": {"root": "r", "path": "b.js"}}]}]}`, ErrInvalidConfig},
		{"escaping path", `{"bundles": [{"name": "a", "scripts": ["../a.js"]}]}`, ErrInvalidPath},
		{"wildcard url", `{"bundles": [{"name": "a", "scripts": [{"path": "*.js", "url": "/all.js"}]}]}`, ErrWildcardURL},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tc.data), "json")
			require.NoError(t, err)
			assert.ErrorIs(t, cfg.Apply(NewRegistry()), tc.want)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	yml := filepath.Join(dir, "assetpack.yml")
	require.NoError(t, os.WriteFile(yml, []byte(yamlConfig), 0o644))
	jsonc := filepath.Join(dir, "assetpack.jsonc")
	require.NoError(t, os.WriteFile(jsonc, []byte(jsoncConfig), 0o644))

	a, err := LoadConfig(yml)
	require.NoError(t, err)
	b, err := LoadConfig(jsonc)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
