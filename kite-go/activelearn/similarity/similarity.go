// Package similarity scores how close a sentence is to a training corpus.
package similarity

import (
	"strings"

	"github.com/kiteco/activeself/kite-golib/errors"
	"github.com/spf13/afero"
)

// Method selects a scorer.
type Method string

const (
	// TFIDF scores by cosine similarity in tf-idf space.
	TFIDF Method = "tfidf"
	// Word2Vec scores by cosine similarity of averaged word embeddings.
	Word2Vec Method = "word2vec"
)

// ParseMethod validates a method name.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case TFIDF, Word2Vec:
		return m, nil
	}
	return "", errors.ConfigErrorf("unknown similarity method %q, expected tfidf or word2vec", s)
}

// Stem reports whether corpus and queries should be stemmed for the method.
// Embeddings are keyed by surface form.
func (m Method) Stem() bool {
	return m != Word2Vec
}

// Options configure New.
type Options struct {
	Fs          afero.Fs
	VectorsPath string
	// CacheSize bounds the number of memoized query scores for word2vec.
	CacheSize int
}

// Scorer is a trainable similarity scorer. Score is safe for concurrent use
// but not concurrently with Train.
type Scorer interface {
	Score(normalized []string) (float64, error)
	Train(corpus [][]string) error
}

// New returns an untrained scorer for the method.
func New(method Method, opts Options) (Scorer, error) {
	switch method {
	case TFIDF:
		return NewTFIDF(), nil
	case Word2Vec:
		if opts.VectorsPath == "" {
			return nil, errors.ConfigErrorf("word2vec requires a vectors path")
		}
		fs := opts.Fs
		if fs == nil {
			fs = afero.NewOsFs()
		}
		vectors, err := LoadVectors(fs, opts.VectorsPath)
		if err != nil {
			return nil, err
		}
		return NewSentenceVectors(vectors, opts.CacheSize)
	}
	return nil, errors.ConfigErrorf("unknown similarity method %q", method)
}
