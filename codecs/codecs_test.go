package codecs

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecRoundTrips(t *testing.T) {
	var fixture = strings.Repeat("row-key-fixture\n", 100)

	for _, codec := range []Codec{None, Gzip, Snappy, Zstandard} {
		var buf bytes.Buffer

		var cw, err = NewWriter(&buf, codec)
		require.NoError(t, err)

		_, err = cw.Write([]byte(fixture))
		require.NoError(t, err)
		require.NoError(t, cw.Close())

		cr, err := NewReader(&buf, codec)
		require.NoError(t, err)

		b, err := io.ReadAll(cr)
		require.NoError(t, err)
		require.NoError(t, cr.Close())

		assert.Equal(t, fixture, string(b), string(codec))

		if codec != None {
			assert.NotEqual(t, len(fixture), buf.Len(), string(codec))
		}
	}
}

func TestCodecValidationCases(t *testing.T) {
	for _, codec := range []Codec{None, Gzip, Snappy, Zstandard} {
		assert.NoError(t, codec.Validate())
	}
	assert.EqualError(t, Codec("lzma").Validate(), "unsupported codec (lzma)")

	var _, err = NewReader(nil, Codec("lzma"))
	assert.Error(t, err)
	_, err = NewWriter(nil, Codec("lzma"))
	assert.Error(t, err)
}

func TestCodecSuffixMapping(t *testing.T) {
	assert.Equal(t, Gzip, FromSuffix("keys/part-00.gz"))
	assert.Equal(t, Snappy, FromSuffix("part-01.sz"))
	assert.Equal(t, Zstandard, FromSuffix("part-02.zst"))
	assert.Equal(t, None, FromSuffix("part-03"))
	assert.Equal(t, None, FromSuffix("part-04.txt"))

	assert.Equal(t, ".gz", Gzip.Suffix())
	assert.Equal(t, "", None.Suffix())
}
