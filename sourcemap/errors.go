package sourcemap

import (
	"errors"
	"fmt"
)

var (
	ErrFormat    = errors.New("sourcemap: invalid format")
	ErrSerialize = errors.New("sourcemap: cannot serialize")

	ErrInvalidBase64   = fmt.Errorf("%w: invalid base64 digit", ErrFormat)
	ErrTruncated       = fmt.Errorf("%w: truncated vlq", ErrFormat)
	ErrOverflow        = fmt.Errorf("%w: vlq overflow", ErrFormat)
	ErrSegment         = fmt.Errorf("%w: segment must have 1, 4 or 5 fields", ErrFormat)
	ErrIndexOutOfRange = fmt.Errorf("%w: index out of range", ErrFormat)
	ErrUnknownSource   = fmt.Errorf("%w: source not in table", ErrSerialize)
	ErrUnknownName     = fmt.Errorf("%w: name not in table", ErrSerialize)
	ErrUnsupported     = fmt.Errorf("%w: unsupported version", ErrFormat)
)
