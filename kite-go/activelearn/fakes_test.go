package activelearn

import (
	"context"
	"strings"
	"sync"

	"github.com/kiteco/activeself/kite-golib/errors"
)

// sent builds a sentence whose first word identifies it in fakes; every
// token is labeled O unless labels are given.
func sent(words string, labels ...string) Sentence {
	ws := strings.Fields(words)
	if len(labels) == 0 {
		labels = make([]string, len(ws))
		for i := range labels {
			labels[i] = Outside
		}
	}
	s, err := NewSentence(ws, labels)
	if err != nil {
		panic(err)
	}
	return s
}

func sents(ids ...string) []Sentence {
	var out []Sentence
	for _, id := range ids {
		out = append(out, sent(id+" is here"))
	}
	return out
}

type fakePre struct{}

func (fakePre) Tokens(s Sentence) []string { return s.Words() }

func (fakePre) Normalize(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = strings.ToLower(w)
	}
	return out
}

// fakeSimilarity scores a sentence by its first normalized word.
type fakeSimilarity struct {
	m       sync.Mutex
	scores  map[string]float64
	trained [][][]string
	calls   int
}

func (f *fakeSimilarity) Score(normalized []string) (float64, error) {
	f.m.Lock()
	defer f.m.Unlock()
	f.calls++
	if len(normalized) == 0 {
		return 0, nil
	}
	score, ok := f.scores[normalized[0]]
	if !ok {
		return 1, nil
	}
	return score, nil
}

func (f *fakeSimilarity) Train(corpus [][]string) error {
	f.m.Lock()
	defer f.m.Unlock()
	f.trained = append(f.trained, corpus)
	return nil
}

// fakeTagger reports a confidence per first word and predicts PER for
// capitalized words.
type fakeTagger struct {
	confidence map[string]float64
	fits       []int
	probCalls  int
	predCalls  int
	fitErr     error

	// shortProbs drops the last confidence to simulate a broken tagger.
	shortProbs bool
}

func (f *fakeTagger) Fit(ctx context.Context, train []Sentence) error {
	if f.fitErr != nil {
		return f.fitErr
	}
	f.fits = append(f.fits, len(train))
	return nil
}

func (f *fakeTagger) Predict(words [][]string) ([][]string, error) {
	f.predCalls++
	out := make([][]string, len(words))
	for i, ws := range words {
		out[i] = make([]string, len(ws))
		for j, w := range ws {
			out[i][j] = Outside
			if w != "" && strings.ToUpper(w[:1]) == w[:1] && strings.ToLower(w[:1]) != w[:1] {
				out[i][j] = "B-PER"
			}
		}
	}
	return out, nil
}

func (f *fakeTagger) ProbabilityPerSentence(words [][]string) ([]float64, error) {
	f.probCalls++
	out := make([]float64, len(words))
	for i, ws := range words {
		out[i] = f.confidence[ws[0]]
	}
	if f.shortProbs {
		out = out[:len(out)-1]
	}
	return out, nil
}

type memStore struct {
	writes  map[string][][]Sentence
	err     error
	onWrite func()
}

func newMemStore() *memStore {
	return &memStore{writes: make(map[string][][]Sentence)}
}

func (m *memStore) Read(path string) ([]Sentence, error) {
	w := m.writes[path]
	if len(w) == 0 {
		return nil, errors.Errorf("no such file %s", path)
	}
	return w[len(w)-1], nil
}

func (m *memStore) Write(path string, sentences []Sentence) error {
	if m.err != nil {
		return m.err
	}
	m.writes[path] = append(m.writes[path], append([]Sentence(nil), sentences...))
	if m.onWrite != nil {
		m.onWrite()
	}
	return nil
}

// badAnnotator drops a token from every sentence.
type badAnnotator struct{}

func (badAnnotator) Annotate(ctx context.Context, sentences []Sentence) ([]Sentence, error) {
	out := make([]Sentence, len(sentences))
	for i, s := range sentences {
		out[i] = s[:len(s)-1]
	}
	return out, nil
}
