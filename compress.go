package assetpack

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression selects a precompressed variant written next to each emitted
// file, for servers that hand out .gz, .br or .zst files directly.
type Compression uint8

const (
	CompGzip Compression = iota + 1
	CompBrotli
	CompZstd
)

// Function variables for testing injection.
var (
	newZstdWriter = func() (*zstd.Encoder, error) {
		return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	}
	gzipClose   = func(w *gzip.Writer) error { return w.Close() }
	brotliClose = func(w *brotli.Writer) error { return w.Close() }
)

// Ext is the file suffix of the variant, including the dot.
func (c Compression) Ext() string {
	switch c {
	case CompGzip:
		return ".gz"
	case CompBrotli:
		return ".br"
	case CompZstd:
		return ".zst"
	}
	return ""
}

func (c Compression) String() string {
	switch c {
	case CompGzip:
		return "gzip"
	case CompBrotli:
		return "br"
	case CompZstd:
		return "zstd"
	}
	return fmt.Sprintf("Compression(%d)", uint8(c))
}

// ParseCompression accepts the names returned by String and the suffixes
// returned by Ext.
func ParseCompression(s string) (Compression, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "gzip", "gz":
		return CompGzip, nil
	case "br", "brotli":
		return CompBrotli, nil
	case "zstd", "zst":
		return CompZstd, nil
	}
	return 0, fmt.Errorf("%w: unknown compression %q", ErrInvalidConfig, s)
}

// compressBytes returns in compressed with comp at its best ratio.
func compressBytes(comp Compression, in []byte) ([]byte, error) {
	switch comp {
	case CompGzip:
		return gzipCompress(in)
	case CompBrotli:
		return brotliCompress(in)
	case CompZstd:
		return zstdCompress(in)
	}
	return nil, fmt.Errorf("%w: unknown compression %d", ErrInvalidConfig, comp)
}

func gzipCompress(in []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := gzipCompressTo(&buf, in); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gzipCompressTo(w io.Writer, in []byte) error {
	zw, err := gzip.NewWriterLevel(w, gzip.BestCompression)
	if err != nil {
		return err
	}
	if _, err := zw.Write(in); err != nil {
		_ = gzipClose(zw)
		return err
	}
	return gzipClose(zw)
}

func brotliCompress(in []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := brotliCompressTo(&buf, in); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func brotliCompressTo(w io.Writer, in []byte) error {
	bw := brotli.NewWriterLevel(w, brotli.BestCompression)
	if _, err := bw.Write(in); err != nil {
		_ = brotliClose(bw)
		return err
	}
	return brotliClose(bw)
}

func zstdCompress(in []byte) ([]byte, error) {
	enc, err := newZstdWriter()
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(in, nil), nil
}
