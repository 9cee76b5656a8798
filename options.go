package assetpack

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Preprocessor runs on every resolved link before minification. It may
// replace the text of c.
type Preprocessor func(l *Link, c *Content) error

type config struct {
	logger       zerolog.Logger
	minifiers    []Minifier
	limits       Limits
	preprocess   Preprocessor
	upstreamMaps bool
	flattenMaps  bool
}

func defaultConfig() config {
	return config{
		logger:       log.Logger,
		minifiers:    []Minifier{NewEsbuildMinifier()},
		limits:       DefaultLimits(),
		upstreamMaps: true,
	}
}

// Option configures a Processor.
type Option func(*config)

func WithLogger(l zerolog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithMinifiers replaces the registered minifiers. Order matters: an unnamed
// request picks the first one. Passing none disables minification.
func WithMinifiers(ms ...Minifier) Option {
	return func(c *config) { c.minifiers = ms }
}

func WithLimits(l Limits) Option {
	return func(c *config) { c.limits = l }
}

func WithPreprocessor(p Preprocessor) Option {
	return func(c *config) { c.preprocess = p }
}

// WithUpstreamMaps controls whether source maps referenced by input files are
// folded into the maps of minified and concatenated output.
func WithUpstreamMaps(v bool) Option {
	return func(c *config) { c.upstreamMaps = v }
}

// WithFlattenMaps drops column information from every generated map.
func WithFlattenMaps(v bool) Option {
	return func(c *config) { c.flattenMaps = v }
}

type storeConfig struct {
	limits Limits
}

// StoreOption configures a Store.
type StoreOption func(*storeConfig)

func WithStoreLimits(l Limits) StoreOption {
	return func(c *storeConfig) { c.limits = l }
}

type emitConfig struct {
	compressions    []Compression
	inlineMaps      bool
	minCompressSize int
}

// EmitOption configures Emit.
type EmitOption func(*emitConfig)

// WithCompression writes a precompressed variant of every emitted file for
// each algorithm.
func WithCompression(comps ...Compression) EmitOption {
	return func(c *emitConfig) { c.compressions = comps }
}

// WithInlineMaps embeds source maps as data URLs instead of writing .map
// files.
func WithInlineMaps(v bool) EmitOption {
	return func(c *emitConfig) { c.inlineMaps = v }
}

// WithMinCompressSize skips precompression for files smaller than n bytes.
func WithMinCompressSize(n int) EmitOption {
	return func(c *emitConfig) { c.minCompressSize = n }
}
