package assetpack

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk form of a set of bundle declarations. It is read
// from JSONC (JSON with comments and trailing commas) or YAML.
type Config struct {
	Bundles []BundleConfig `json:"bundles" yaml:"bundles"`
}

// BundleConfig declares one bundle. Destinations is keyed by kind name
// ("script", "style", "content") or extension ("js", "css").
type BundleConfig struct {
	Name           string            `json:"name" yaml:"name"`
	Concat         bool              `json:"concat" yaml:"concat"`
	Minify         bool              `json:"minify" yaml:"minify"`
	Minifier       string            `json:"minifier" yaml:"minifier"`
	MinifiedSuffix string            `json:"minifiedSuffix" yaml:"minifiedSuffix"`
	Destinations   map[string]string `json:"destinations" yaml:"destinations"`
	Scripts        []LinkConfig      `json:"scripts" yaml:"scripts"`
	Styles         []LinkConfig      `json:"styles" yaml:"styles"`
	Content        []LinkConfig      `json:"content" yaml:"content"`
}

// LinkConfig is either a bare path string or an object with a path or a
// resource reference and an optional URL.
type LinkConfig struct {
	Path     string          `json:"path" yaml:"path"`
	URL      string          `json:"url" yaml:"url"`
	Resource *ResourceConfig `json:"resource" yaml:"resource"`
}

type ResourceConfig struct {
	Root string `json:"root" yaml:"root"`
	Path string `json:"path" yaml:"path"`
}

type linkConfigFields LinkConfig

func (l *LinkConfig) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		*l = LinkConfig{}
		return json.Unmarshal(data, &l.Path)
	}
	var f linkConfigFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*l = LinkConfig(f)
	return nil
}

func (l *LinkConfig) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		*l = LinkConfig{}
		return n.Decode(&l.Path)
	}
	var f linkConfigFields
	if err := n.Decode(&f); err != nil {
		return err
	}
	*l = LinkConfig(f)
	return nil
}

func (l LinkConfig) source() (Source, error) {
	switch {
	case l.Resource != nil && l.Path != "":
		return nil, fmt.Errorf("%w: link has both path and resource", ErrInvalidConfig)
	case l.Resource != nil:
		return Resource{Root: l.Resource.Root, Path: l.Resource.Path}, nil
	case l.Path != "":
		return Path(l.Path), nil
	}
	return nil, fmt.Errorf("%w: link has neither path nor resource", ErrInvalidConfig)
}

// ParseConfig decodes data. format is "yaml" or "json"; JSON input may carry
// comments and trailing commas.
func ParseConfig(data []byte, format string) (*Config, error) {
	var cfg Config
	switch strings.ToLower(format) {
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	case "json", "jsonc", "":
		dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrInvalidConfig, format)
	}
	return &cfg, nil
}

// LoadConfig reads a config file, choosing the format by extension: .yaml
// and .yml are YAML, anything else is JSONC.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	format := "json"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = "yaml"
	}
	cfg, err := ParseConfig(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Apply declares every configured bundle in reg. It stops at the first
// invalid declaration.
func (c *Config) Apply(reg *Registry) error {
	for i, bc := range c.Bundles {
		b, err := reg.Create(bc.Name)
		if err != nil {
			return fmt.Errorf("bundle %d: %w", i, err)
		}
		b.Concat = bc.Concat
		b.Minify = bc.Minify
		b.Minifier = bc.Minifier
		b.MinifiedSuffix = bc.MinifiedSuffix
		for k, prefix := range bc.Destinations {
			kind, err := ParseKind(k)
			if err != nil {
				return fmt.Errorf("bundle %q: %w", b.Name, err)
			}
			b.SetDestination(kind, prefix)
		}
		groups := []struct {
			kind  Kind
			links []LinkConfig
		}{
			{KindScript, bc.Scripts},
			{KindStyle, bc.Styles},
			{KindContent, bc.Content},
		}
		for _, g := range groups {
			for j, lc := range g.links {
				src, err := lc.source()
				if err != nil {
					return fmt.Errorf("bundle %q %s %d: %w", b.Name, g.kind, j, err)
				}
				if err := b.Add(g.kind, src, lc.URL); err != nil {
					return fmt.Errorf("bundle %q %s %d: %w", b.Name, g.kind, j, err)
				}
			}
		}
	}
	return nil
}
