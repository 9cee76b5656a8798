package assetpack

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"unicode"
)

const wildcardChars = "*?["

func hasWildcard(p string) bool {
	return strings.ContainsAny(p, wildcardChars)
}

// validatePath checks a site-relative asset path. A leading slash is
// tolerated and dropped by cleanPath.
func validatePath(p string) error {
	if strings.TrimSpace(p) == "" {
		return fmt.Errorf("%w: path is empty", ErrInvalidPath)
	}
	if err := checkChars(p); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidPath, p, err)
	}
	clean := path.Clean(strings.TrimPrefix(p, "/"))
	if clean == "." {
		return fmt.Errorf("%w: %q names the site root", ErrInvalidPath, p)
	}
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("%w: %q escapes the site root", ErrInvalidPath, p)
	}
	if hasWildcard(clean) {
		if _, err := path.Match(clean, ""); err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidPath, p, err)
		}
	}
	return nil
}

// validateURL checks an output URL. Only the path component of a URL is
// accepted.
func validateURL(u string) error {
	if strings.TrimSpace(u) == "" {
		return fmt.Errorf("%w: url is empty", ErrInvalidURL)
	}
	if err := checkChars(u); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidURL, u, err)
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if parsed.Scheme != "" || parsed.Host != "" || parsed.User != nil {
		return fmt.Errorf("%w: %q must be a path", ErrInvalidURL, u)
	}
	if parsed.RawQuery != "" || parsed.Fragment != "" || strings.ContainsAny(u, "?#") {
		return fmt.Errorf("%w: %q must not carry a query or fragment", ErrInvalidURL, u)
	}
	for _, seg := range strings.Split(u, "/") {
		if seg == ".." {
			return fmt.Errorf("%w: %q must not contain ..", ErrInvalidURL, u)
		}
	}
	return nil
}

// validateDestination checks a per-kind URL prefix.
func validateDestination(d string) error {
	if err := validateURL(d); err != nil {
		return err
	}
	if !strings.HasSuffix(d, "/") {
		return fmt.Errorf("%w: destination %q must end with /", ErrInvalidURL, d)
	}
	return nil
}

func checkChars(s string) error {
	if strings.Contains(s, "\\") {
		return fmt.Errorf("must use forward slashes")
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return fmt.Errorf("contains control character %U", r)
		}
	}
	return nil
}

// cleanPath normalizes a validated path into a store key.
func cleanPath(p string) string {
	return path.Clean(strings.TrimPrefix(p, "/"))
}
