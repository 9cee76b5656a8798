// Package sourcemap reads, writes and composes revision 3 source maps.
//
// A source map ties positions in a generated file (a minified script, a
// concatenated stylesheet) back to positions in the files it was built from.
// The file format is a JSON object whose "mappings" field packs every
// correspondence into Base64 variable-length quantities.
//
// # Mappings
//
// Parsed mappings are the single source of truth in a [SourceMap]; the packed
// string is produced on demand by [SourceMap.EncodedMappings] and parsed by
// [DecodeMappings]:
//
//	m, err := sourcemap.Unmarshal(data)
//	if err != nil {
//		return err
//	}
//	hit, ok := m.Find(sourcemap.Position{Line: 0, Column: 120})
//
// Mappings stay sorted by generated position. [SourceMap.Find] depends on
// that ordering and resolves a position to an exact mapping or to its
// immediate predecessor when the two are approximately equal.
//
// # Composition
//
// Build steps chain: a transpiler maps A to B, a minifier maps B to C.
// [SourceMap.ApplySourceMap] folds the two maps into one that maps A to C.
// [SourceMap.Flatten] trades column precision for size, and [Concat]
// assembles the map of several files joined end to end.
//
// # Errors
//
// Malformed input is reported as [ErrFormat] and unserializable maps as
// [ErrSerialize]; more specific errors wrap one of the two. A corrupted map
// is worse than none, so no operation recovers from either silently.
package sourcemap
