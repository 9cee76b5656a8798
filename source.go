package assetpack

import (
	"fmt"
	"path"
)

// Source names the file a link is declared from. It is either a Path or a
// Resource and is resolved once, when the link is declared.
type Source interface {
	resolve() (string, error)
}

// Path is a site-relative file path, optionally containing a wildcard.
type Path string

func (p Path) resolve() (string, error) {
	return string(p), nil
}

// Resource refers to a file shipped inside a packaged resource tree. Path is
// relative to Root.
type Resource struct {
	Root string
	Path string
}

func (r Resource) resolve() (string, error) {
	if err := validatePath(r.Root); err != nil {
		return "", fmt.Errorf("resource root: %w", err)
	}
	if err := validatePath(r.Path); err != nil {
		return "", fmt.Errorf("resource path: %w", err)
	}
	return path.Join(r.Root, r.Path), nil
}
