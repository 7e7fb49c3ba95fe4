//go:build !nozstd

package codecs

import (
	"io"

	"github.com/DataDog/zstd"
)

// Zstandard key files require cgo. Building with the nozstd tag omits
// this file, and Zstandard readers and writers then fail at runtime
// with a not-enabled error.
func init() {
	zstdNewReader = func(r io.Reader) (io.ReadCloser, error) {
		return zstd.NewReader(r), nil
	}
	zstdNewWriter = func(w io.Writer) (io.WriteCloser, error) {
		return zstd.NewWriter(w), nil
	}
}
