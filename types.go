package assetpack

import (
	"fmt"
	"strings"
)

// Kind classifies a link. Scripts and styles can be concatenated and
// minified; generic content is always passed through.
type Kind uint8

const (
	KindScript Kind = iota + 1
	KindStyle
	KindContent
)

// Kinds lists every kind in processing order.
var Kinds = []Kind{KindScript, KindStyle, KindContent}

// DefaultBundleName is used when a bundle is requested without a name.
const DefaultBundleName = "default"

// DefaultMinifiedSuffix marks files that are already minified, as in app.min.js.
const DefaultMinifiedSuffix = ".min"

var defaultDestinations = map[Kind]string{
	KindScript:  "/js/",
	KindStyle:   "/css/",
	KindContent: "/",
}

func (k Kind) String() string {
	switch k {
	case KindScript:
		return "script"
	case KindStyle:
		return "style"
	case KindContent:
		return "content"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Ext is the file extension of a concatenated artifact of this kind.
func (k Kind) Ext() string {
	switch k {
	case KindScript:
		return "js"
	case KindStyle:
		return "css"
	}
	return ""
}

// ParseKind accepts the names returned by String and the extensions
// returned by Ext.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "script", "js":
		return KindScript, nil
	case "style", "css":
		return KindStyle, nil
	case "content":
		return KindContent, nil
	}
	return 0, fmt.Errorf("%w: unknown kind %q", ErrInvalidConfig, s)
}
