package keyset

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"go.splitkit.dev/core/codecs"
	"go.splitkit.dev/core/keys"
)

// NewFileSet returns a KeySet of newline-delimited key files, one Source
// per file. Each file's compression codec is determined by its suffix
// (see codecs.FromSuffix). Files are read through the provided afero
// filesystem, which lets tests substitute an in-memory one.
func NewFileSet(fs afero.Fs, paths ...string) KeySet {
	return &fileKeySet{fs: fs, paths: paths}
}

type fileKeySet struct {
	fs    afero.Fs
	paths []string
}

func (f *fileKeySet) Sources() ([]Source, error) {
	var out = make([]Source, 0, len(f.paths))

	for _, path := range f.paths {
		var src, err = openFileSource(f.fs, path)
		if err != nil {
			for _, s := range out {
				_ = s.Close()
			}
			return nil, errors.WithMessagef(err, "opening key file %s", path)
		}
		out = append(out, src)
	}
	return out, nil
}

func openFileSource(fs afero.Fs, path string) (Source, error) {
	var file, err = fs.Open(path)
	if err != nil {
		return nil, err
	}
	dec, err := codecs.NewReader(file, codecs.FromSuffix(path))
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	return &fileSource{
		path: path,
		file: file,
		dec:  dec,
		br:   bufio.NewReader(dec),
	}, nil
}

type fileSource struct {
	path string
	file afero.File
	dec  codecs.Decompressor
	br   *bufio.Reader
}

func (f *fileSource) Next() (keys.Key, error) {
	for {
		var line, err = unpackLine(f.br)

		if err == io.EOF && len(line) != 0 {
			// Accept a final key without a trailing newline.
			err = nil
		} else if err == io.EOF {
			return nil, io.EOF
		} else if err != nil {
			return nil, errors.WithMessagef(err, "reading %s", f.path)
		} else {
			line = line[:len(line)-1] // Strip delimiter.
		}

		if len(line) == 0 {
			continue // Skip blank lines.
		}
		return keys.Key(line), nil
	}
}

func (f *fileSource) Close() error {
	if err := f.dec.Close(); err != nil {
		_ = f.file.Close()
		return err
	}
	return f.file.Close()
}

// unpackLine returns bytes through to the first encountered newline. If
// the complete line is in the Reader buffer, no alloc or copy is needed.
func unpackLine(r *bufio.Reader) ([]byte, error) {
	// Fast path: the line is fully contained in the buffer.
	var line, err = r.ReadSlice('\n')

	if err == bufio.ErrBufferFull {
		// Slow path: the line spills across multiple buffer fills.
		err = nil

		line = append([]byte(nil), line...) // Copy, as |line| references an internal buffer.
		var rest []byte

		rest, err = r.ReadBytes('\n')
		line = append(line, rest...)
	}
	if err == io.EOF && len(line) != 0 {
		return line, io.EOF
	}
	return line, err
}

// WriteFile writes keys to a newline-delimited file at path, compressed
// per the codec of the path suffix. It's a convenience for building
// key-file fixtures and small extracts.
func WriteFile(fs afero.Fs, path string, ks []keys.Key) error {
	var file, err = fs.Create(path)
	if err != nil {
		return err
	}
	cw, err := codecs.NewWriter(file, codecs.FromSuffix(path))
	if err != nil {
		_ = file.Close()
		return err
	}
	var bw = bufio.NewWriter(cw)

	for _, k := range ks {
		if _, err = bw.Write(k); err == nil {
			err = bw.WriteByte('\n')
		}
		if err != nil {
			break
		}
	}
	if err == nil {
		err = bw.Flush()
	}
	if err == nil {
		err = cw.Close()
	} else {
		_ = cw.Close()
	}
	if err != nil {
		_ = file.Close()
		return errors.WithMessagef(err, "writing key file %s", path)
	}
	return file.Close()
}
