package similarity

import (
	"sync"

	"github.com/kiteco/activeself/kite-golib/errors"
	"github.com/kiteco/activeself/kite-golib/tfidf"
)

// TFIDFScorer treats every training sentence as a document and scores a
// query by its best cosine similarity with any of them.
type TFIDFScorer struct {
	m      sync.RWMutex
	scorer *tfidf.Scorer
}

// NewTFIDF returns an untrained TFIDFScorer.
func NewTFIDF() *TFIDFScorer {
	return &TFIDFScorer{}
}

// Train rebuilds the tf-idf model from corpus.
func (t *TFIDFScorer) Train(corpus [][]string) error {
	scorer := tfidf.TrainScorer(corpus, false)

	t.m.Lock()
	defer t.m.Unlock()
	t.scorer = scorer
	return nil
}

// Score returns a value in [0, 1]; 0 when the query shares no weighted term
// with the corpus. Terms found in every training sentence have idf
// log10(N/N) = 0 and carry no weight, so a query made only of such terms
// scores 0 even if it repeats a training sentence. With a single training
// sentence every query scores 0.
func (t *TFIDFScorer) Score(normalized []string) (float64, error) {
	t.m.RLock()
	defer t.m.RUnlock()
	if t.scorer == nil {
		return 0, errors.Errorf("tfidf scorer is not trained")
	}
	score, _ := t.scorer.MaxTFIDFScore(normalized)
	return clamp(score), nil
}

// NumDocs returns the size of the corpus the scorer was trained on.
func (t *TFIDFScorer) NumDocs() int {
	t.m.RLock()
	defer t.m.RUnlock()
	if t.scorer == nil {
		return 0
	}
	return t.scorer.NumDocs()
}

// floating point error can push a cosine just past 1
func clamp(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}
