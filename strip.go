package assetpack

import "regexp"

var (
	lineMapReference  = regexp.MustCompile(`(?m)^//#[ \t]*sourceMappingURL=.*(?:\r?\n|$)`)
	blockMapReference = regexp.MustCompile(`(?ms)^/\*#[ \t]*sourceMappingURL=.*?\*/[ \t]*(?:\r?\n|$)`)
)

// StripSourceMapReferences deletes every sourceMappingURL comment from text,
// in both the //# line form and the /*# */ block form.
func StripSourceMapReferences(text string) string {
	text = lineMapReference.ReplaceAllString(text, "")
	return blockMapReference.ReplaceAllString(text, "")
}
