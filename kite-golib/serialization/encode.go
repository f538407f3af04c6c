package serialization

import (
	"compress/gzip"
	"encoding/gob"
	"encoding/json"
	"io"
	"strings"

	"github.com/golang/snappy"
	"github.com/kiteco/activeself/kite-golib/errors"
	"github.com/kiteco/activeself/kite-golib/fileutil"
	"github.com/spf13/afero"
)

// Encode writes the object to the path, using the format specified by the file
// extension, which can be .json or .gob. The path may additionally have a .gz
// or .sz (snappy) suffix, in which case the stream will be compressed.
// If encoding fails, an existing file at path is left as it was.
func Encode(fs afero.Fs, path string, obj interface{}) error {
	enc, err := NewEncoder(fs, path)
	if err != nil {
		return err
	}
	if err := enc.Encode(obj); err != nil {
		enc.Abort()
		return err
	}
	return enc.Close()
}

// Encoder is an interface that matches gob.Encoder and json.Encoder
type Encoder interface {
	// Encoder adds an item to the stream
	Encode(interface{}) error
}

// EncodeCloser is an encoder that can also close its underlying stream
type EncodeCloser struct {
	encoder Encoder
	closers []io.Closer
}

// Encode writes an object to the underlying stream
func (e *EncodeCloser) Encode(x interface{}) error {
	return e.encoder.Encode(x)
}

// Close closes the underlying streams, innermost first.
func (e *EncodeCloser) Close() error {
	var closeErr error
	for i := len(e.closers) - 1; i >= 0; i-- {
		closeErr = errors.Combine(closeErr, e.closers[i].Close())
	}
	return closeErr
}

// Abort closes the compression layers and discards the output of the
// underlying stream, if it supports that.
func (e *EncodeCloser) Abort() error {
	for i := len(e.closers) - 1; i > 0; i-- {
		e.closers[i].Close()
	}
	return fileutil.Abort(e.closers[0])
}

// NewEncoder opens the specified path and returns an encoder that writes in the
// format specified by the file extension.
func NewEncoder(fs afero.Fs, path string) (*EncodeCloser, error) {
	if _, err := Format(path); err != nil {
		return nil, err
	}
	f, err := fileutil.NewBufferedWriter(fs, path)
	if err != nil {
		return nil, err
	}
	return WrapWriter(f, path)
}

// WrapWriter layers compression and encoding, chosen from path, over w.
// Closing the returned EncodeCloser closes w.
func WrapWriter(w io.WriteCloser, path string) (*EncodeCloser, error) {
	format, err := Format(path)
	if err != nil {
		return nil, err
	}

	closers := []io.Closer{w}
	var out io.Writer = w
	switch Compression(path) {
	case ".gz":
		gz := gzip.NewWriter(w)
		closers = append(closers, gz)
		out = gz
	case ".sz":
		sz := snappy.NewBufferedWriter(w)
		closers = append(closers, sz)
		out = sz
	}

	var e Encoder
	switch format {
	case ".json":
		e = json.NewEncoder(out)
	case ".gob":
		e = gob.NewEncoder(out)
	}

	return &EncodeCloser{
		encoder: e,
		closers: closers,
	}, nil
}

// Compression returns ".gz", ".sz", or "" for the given path.
func Compression(path string) string {
	switch {
	case strings.HasSuffix(path, ".gz"):
		return ".gz"
	case strings.HasSuffix(path, ".sz"):
		return ".sz"
	}
	return ""
}

// Format returns the encoding extension of path, after any compression suffix.
func Format(path string) (string, error) {
	trimmed := strings.TrimSuffix(path, Compression(path))
	switch {
	case strings.HasSuffix(trimmed, ".json"):
		return ".json", nil
	case strings.HasSuffix(trimmed, ".gob"):
		return ".gob", nil
	}
	return "", errors.Errorf("could not find encoding for %s", path)
}
