// Package codecs wraps the compression codecs used for row-key files.
package codecs

import (
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// Codec names a supported compression codec of key files.
type Codec string

const (
	None      Codec = "none"
	Gzip      Codec = "gzip"
	Snappy    Codec = "snappy"
	Zstandard Codec = "zstandard"
)

// Validate returns an error if the Codec is not a recognized value.
func (c Codec) Validate() error {
	switch c {
	case None, Gzip, Snappy, Zstandard:
		return nil
	default:
		return errors.Errorf("unsupported codec (%s)", string(c))
	}
}

// Suffix returns the file suffix conventionally denoting the Codec.
func (c Codec) Suffix() string {
	switch c {
	case Gzip:
		return ".gz"
	case Snappy:
		return ".sz"
	case Zstandard:
		return ".zst"
	default:
		return ""
	}
}

// FromSuffix maps a file path to the Codec denoted by its suffix,
// defaulting to None.
func FromSuffix(path string) Codec {
	for _, c := range []Codec{Gzip, Snappy, Zstandard} {
		var s = c.Suffix()
		if l := len(path); l >= len(s) && path[l-len(s):] == s {
			return c
		}
	}
	return None
}

// Decompressor is a ReadCloser where Close closes and releases Decompressor
// state, but does not Close or affect the underlying Reader.
type Decompressor io.ReadCloser

// Compressor is a WriteCloser where Close closes and releases Compressor
// state, potentially flushing final content to the underlying Writer,
// but does not Close or otherwise affect the underlying Writer.
type Compressor io.WriteCloser

// NewReader returns a Decompressor of the Reader encoded with Codec.
func NewReader(r io.Reader, codec Codec) (Decompressor, error) {
	switch codec {
	case None:
		return io.NopCloser(r), nil
	case Gzip:
		return gzip.NewReader(r)
	case Snappy:
		return io.NopCloser(snappy.NewReader(r)), nil
	case Zstandard:
		return zstdNewReader(r)
	default:
		return nil, errors.Errorf("unsupported codec (%s)", string(codec))
	}
}

// NewWriter returns a Compressor wrapping the Writer encoding with Codec.
func NewWriter(w io.Writer, codec Codec) (Compressor, error) {
	switch codec {
	case None:
		return nopWriteCloser{w}, nil
	case Gzip:
		return gzip.NewWriter(w), nil
	case Snappy:
		return snappy.NewBufferedWriter(w), nil
	case Zstandard:
		return zstdNewWriter(w)
	default:
		return nil, errors.Errorf("unsupported codec (%s)", string(codec))
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

var (
	zstdNewReader = func(io.Reader) (io.ReadCloser, error) {
		return nil, errors.New("zstandard support was not enabled at compile time")
	}
	zstdNewWriter = func(io.Writer) (io.WriteCloser, error) {
		return nil, errors.New("zstandard support was not enabled at compile time")
	}
)
