// Package assetpack groups web assets into named bundles and turns them into
// publishable files: wildcard links are expanded, scripts and styles are
// minified and concatenated, and every generated file carries a source map
// back to the files it was built from.
//
// # Declaring Bundles
//
// Bundles live in a [Registry]. Links are validated as they are declared:
//
//	reg := assetpack.NewRegistry()
//	b := reg.Bundle("app")
//	b.Concat, b.Minify = true, true
//	_ = b.AddScript(assetpack.Path("js/*.js"), "")
//	_ = b.AddStyle(assetpack.Path("css/site.css"), "")
//
// Declarations can also be loaded from a JSONC or YAML file with
// [LoadConfig] and [Config.Apply].
//
// # Processing
//
// A [Processor] reads files through a [ContentStore] and runs each bundle
// through six stages: destination validation, wildcard expansion, minifier
// selection, link resolution with minification, concatenation, and URL
// refresh. Failures of single links are logged through zerolog and skipped.
//
//	store := assetpack.NewStore(os.DirFS("site"))
//	res, err := assetpack.NewProcessor(store).Process(reg)
//	files, err := assetpack.Emit("public", res, assetpack.WithCompression(assetpack.CompGzip))
//
// # Caching
//
// [Store] keeps every artifact keyed by path and tracks what each generated
// artifact was built from, so [Store.Invalidate] drops dependents along with
// the changed file. [Store.WriteSnapshot] and [Store.ReadSnapshot] persist the
// cache between runs as an LZ4-compressed gob payload behind a 16-byte header.
//
// # Security Considerations
//
// Paths and URLs are rejected when they escape the site root, and reads,
// wildcard expansion and snapshot decoding are bounded by [Limits].
//
// Source map handling lives in the sourcemap subpackage.
package assetpack
