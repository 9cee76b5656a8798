package sourcemap

import (
	"fmt"
	"io"
	"math"
)

const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

const (
	vlqBaseShift       = 5
	vlqBase            = 1 << vlqBaseShift
	vlqBaseMask        = vlqBase - 1
	vlqContinuationBit = vlqBase
)

// base64Digits maps an ASCII byte to its 6-bit value, or -1.
var base64Digits = func() [256]int8 {
	var t [256]int8
	for i := range t {
		t[i] = -1
	}
	for i := 0; i < len(base64Alphabet); i++ {
		t[base64Alphabet[i]] = int8(i)
	}
	return t
}()

// EncodeDigit returns the Base64 character for a 6-bit value.
// It panics if d is outside [0, 63].
func EncodeDigit(d int) byte {
	return base64Alphabet[d]
}

// DecodeDigit returns the 6-bit value of a Base64 character.
func DecodeDigit(c byte) (int, error) {
	d := base64Digits[c]
	if d < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidBase64, c)
	}
	return int(d), nil
}

// ReadVLQ reads one signed variable-length quantity from r.
//
// Digits are consumed until one without the continuation bit is read. The
// low bit of the accumulated value carries the sign. Running out of input
// mid-value returns ErrTruncated; io.EOF is returned only when r is empty
// before the first digit.
func ReadVLQ(r io.ByteReader) (int, error) {
	var (
		value uint64
		shift uint
		first = true
	)
	for {
		c, err := r.ReadByte()
		if err != nil {
			if err == io.EOF && !first {
				return 0, ErrTruncated
			}
			return 0, err
		}
		first = false
		d, err := DecodeDigit(c)
		if err != nil {
			return 0, err
		}
		value |= uint64(d&vlqBaseMask) << shift
		if value>>1 > math.MaxInt32 {
			return 0, ErrOverflow
		}
		if d&vlqContinuationBit == 0 {
			break
		}
		shift += vlqBaseShift
		if shift > 32 {
			return 0, ErrOverflow
		}
	}
	n := int(value >> 1)
	if value&1 == 1 {
		n = -n
	}
	return n, nil
}

// AppendVLQ appends the VLQ encoding of n to dst. Magnitudes beyond
// math.MaxInt32 encode but are rejected by ReadVLQ. math.MinInt has no
// positive counterpart and is encoded as math.MinInt+1.
func AppendVLQ(dst []byte, n int) []byte {
	if n == math.MinInt {
		n++
	}
	var v uint64
	if n < 0 {
		v = uint64(-int64(n))<<1 | 1
	} else {
		v = uint64(n) << 1
	}
	for {
		d := int(v & vlqBaseMask)
		v >>= vlqBaseShift
		if v > 0 {
			d |= vlqContinuationBit
		}
		dst = append(dst, EncodeDigit(d))
		if v == 0 {
			return dst
		}
	}
}

// EncodeVLQ returns the VLQ encoding of n.
func EncodeVLQ(n int) string {
	return string(AppendVLQ(nil, n))
}

// DecodeVLQ decodes every quantity packed into s.
func DecodeVLQ(s string) ([]int, error) {
	r := &stringReader{s: s}
	var out []int
	for r.pos < len(s) {
		n, err := ReadVLQ(r)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// stringReader is a minimal io.ByteReader over a string segment.
type stringReader struct {
	s   string
	pos int
}

func (r *stringReader) ReadByte() (byte, error) {
	if r.pos >= len(r.s) {
		return 0, io.EOF
	}
	c := r.s[r.pos]
	r.pos++
	return c, nil
}
