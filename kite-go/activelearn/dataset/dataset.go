// Package dataset reads and writes labeled sentences.
//
// Paths ending in .json or .gob (optionally followed by .gz or .sz) hold a
// single encoded list of sentences. Any other path is CoNLL-style text: one
// token per line with its label in the last column, and a blank line between
// sentences. A line holding only a token is labeled O. Text files may also be
// compressed with a .gz or .sz suffix.
package dataset

import (
	"bufio"
	"compress/gzip"
	"io"

	"github.com/golang/snappy"
	"github.com/kiteco/activeself/kite-go/activelearn"
	"github.com/kiteco/activeself/kite-golib/errors"
	"github.com/kiteco/activeself/kite-golib/fileutil"
	"github.com/kiteco/activeself/kite-golib/serialization"
	"github.com/kiteco/activeself/kite-golib/text"
	"github.com/spf13/afero"
)

const docStart = "-DOCSTART-"

// Store implements activelearn.Store on an afero filesystem. s3:// paths are
// read from and written to S3.
type Store struct {
	Fs afero.Fs
}

// NewStore returns a Store on fs, or on the OS filesystem if fs is nil.
func NewStore(fs afero.Fs) Store {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return Store{Fs: fs}
}

// Read implements activelearn.Store.
func (s Store) Read(path string) ([]activelearn.Sentence, error) {
	if _, err := serialization.Format(path); err == nil {
		var sentences []activelearn.Sentence
		if err := serialization.Decode(s.Fs, path, &sentences); err != nil {
			return nil, errors.Wrapf(err, "error reading sentences")
		}
		return sentences, nil
	}

	r, err := fileutil.NewReader(s.Fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening %s", path)
	}
	defer r.Close()

	dr, err := decompress(r, path)
	if err != nil {
		return nil, errors.Wrapf(err, "error decompressing %s", path)
	}
	sentences, err := ReadCoNLL(dr)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading %s", path)
	}
	return sentences, nil
}

// Write implements activelearn.Store. The destination is replaced in full,
// and is left as it was if writing fails.
func (s Store) Write(path string, sentences []activelearn.Sentence) error {
	if _, ferr := serialization.Format(path); ferr == nil {
		if sentences == nil {
			sentences = []activelearn.Sentence{}
		}
		return errors.WrapfOrNil(serialization.Encode(s.Fs, path, sentences), "error writing %s", path)
	}

	w, err := fileutil.NewBufferedWriter(s.Fs, path)
	if err != nil {
		return errors.Wrapf(err, "error creating %s", path)
	}

	cw, closers := compress(w, path)
	err = WriteCoNLL(cw, sentences)
	for _, c := range closers {
		err = errors.Combine(err, c.Close())
	}
	if err != nil {
		fileutil.Abort(w)
		return errors.Wrapf(err, "error writing %s", path)
	}
	return errors.WrapfOrNil(w.Close(), "error writing %s", path)
}

// ReadCoNLL parses CoNLL-style text.
func ReadCoNLL(r io.Reader) ([]activelearn.Sentence, error) {
	var sentences []activelearn.Sentence
	var cur activelearn.Sentence

	var tokenizer text.SpaceTokenizer
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	var lineno int
	for scanner.Scan() {
		lineno++
		fields := tokenizer.Tokenize(scanner.Text())
		if len(fields) == 0 {
			if len(cur) > 0 {
				sentences = append(sentences, cur)
				cur = nil
			}
			continue
		}
		if fields[0] == docStart {
			continue
		}

		tok := activelearn.Token{Word: fields[0], Label: activelearn.Outside}
		if len(fields) > 1 {
			tok.Label = fields[len(fields)-1]
		}
		cur = append(cur, tok)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "error scanning line %d", lineno+1)
	}
	if len(cur) > 0 {
		sentences = append(sentences, cur)
	}
	return sentences, nil
}

// WriteCoNLL writes sentences as tab-separated token and label lines.
func WriteCoNLL(w io.Writer, sentences []activelearn.Sentence) error {
	bw := bufio.NewWriter(w)
	for _, s := range sentences {
		for _, t := range s {
			label := t.Label
			if label == "" {
				label = activelearn.Outside
			}
			if _, err := bw.WriteString(t.Word + "\t" + label + "\n"); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func decompress(r io.Reader, path string) (io.Reader, error) {
	switch serialization.Compression(path) {
	case ".gz":
		return gzip.NewReader(r)
	case ".sz":
		return snappy.NewReader(r), nil
	}
	return r, nil
}

// compress returns the writer to use for path and the closers to run, in
// order, before the underlying writer is closed.
func compress(w io.Writer, path string) (io.Writer, []io.Closer) {
	switch serialization.Compression(path) {
	case ".gz":
		gz := gzip.NewWriter(w)
		return gz, []io.Closer{gz}
	case ".sz":
		sz := snappy.NewBufferedWriter(w)
		return sz, []io.Closer{sz}
	}
	return w, nil
}
