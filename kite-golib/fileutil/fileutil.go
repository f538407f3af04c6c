package fileutil

import (
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/kiteco/activeself/kite-golib/awsutil"
	"github.com/kiteco/activeself/kite-golib/errors"
	"github.com/spf13/afero"
)

// NamedWriteCloser is a file-like object extending io.WriteCloser with a string Name() similar to os.File.Name()
type NamedWriteCloser = awsutil.NamedWriteCloser

// NewReader opens a path for reading. "s3://bucket/key" reads an object from
// S3, "http(s)://..." issues a GET, and anything else is opened on fs.
func NewReader(fs afero.Fs, path string) (io.ReadCloser, error) {
	if awsutil.IsS3URI(path) {
		return awsutil.NewS3Reader(path)
	}

	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		resp, err := http.Get(path)
		if err != nil {
			return nil, fmt.Errorf("error getting %s: %s", path, err)
		}
		if resp.StatusCode != http.StatusOK {
			defer resp.Body.Close()
			io.Copy(ioutil.Discard, resp.Body)
			return nil, errors.Errorf("error getting %s: status code %d", path, resp.StatusCode)
		}
		return resp.Body, nil
	}

	return fs.Open(path)
}

// ReadFile reads the contents of a local or remote path.
func ReadFile(fs afero.Fs, path string) ([]byte, error) {
	r, err := NewReader(fs, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return ioutil.ReadAll(r)
}

// NewBufferedWriter opens a path for writing. s3 paths are buffered locally
// and uploaded on Close. Local paths are written to a sibling temp file that
// replaces the destination on Close, so readers never see a partial file.
// Once a Write has failed, Close discards the temp file and leaves the
// destination untouched. Use Abort to discard the output for other reasons.
func NewBufferedWriter(fs afero.Fs, path string) (NamedWriteCloser, error) {
	if awsutil.IsS3URI(path) {
		return awsutil.NewBufferedS3Writer(path)
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	tmp := path + ".tmp"
	f, err := fs.Create(tmp)
	if err != nil {
		return nil, err
	}
	return &replacingWriter{fs: fs, f: f, tmp: tmp, path: path}, nil
}

// Aborter is implemented by writers that can discard their output instead of
// committing it.
type Aborter interface {
	Abort() error
}

// Abort discards what was written to w if w supports it, and closes w
// otherwise.
func Abort(w io.Closer) error {
	if a, ok := w.(Aborter); ok {
		return a.Abort()
	}
	return w.Close()
}

type replacingWriter struct {
	fs   afero.Fs
	f    afero.File
	tmp  string
	path string

	err  error
	done bool
}

func (w *replacingWriter) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	n, err := w.f.Write(p)
	if err != nil {
		w.err = err
	}
	return n, err
}

func (w *replacingWriter) Close() error {
	if w.done {
		return nil
	}
	w.done = true

	if err := w.f.Close(); err != nil && w.err == nil {
		w.err = err
	}
	if w.err != nil {
		w.fs.Remove(w.tmp)
		return errors.Wrapf(w.err, "not replacing %s", w.path)
	}
	return errors.WrapfOrNil(w.fs.Rename(w.tmp, w.path), "error replacing %s", w.path)
}

// Abort removes the temp file and leaves the destination untouched.
func (w *replacingWriter) Abort() error {
	if w.done {
		return nil
	}
	w.done = true
	w.f.Close()
	return w.fs.Remove(w.tmp)
}

func (w *replacingWriter) Name() string {
	return w.path
}

// Exists reports whether a local path exists on fs. Remote paths are assumed to exist.
func Exists(fs afero.Fs, path string) bool {
	if awsutil.IsS3URI(path) || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return true
	}
	ok, err := afero.Exists(fs, path)
	return err == nil && ok
}
