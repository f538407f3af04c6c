package activelearn

import (
	"context"

	"github.com/kiteco/activeself/kite-golib/errors"
	"github.com/kiteco/activeself/kite-golib/kitelog"
	"github.com/kiteco/activeself/kite-golib/workerpool"
	"github.com/montanaflynn/stats"
)

// Selector routes each sentence of a batch to one of three outcomes: added as
// informative (similarity below LimInformative), added with the tagger's own
// labels (confidence above LimConfidence), or discarded.
type Selector struct {
	Pre        Preprocessor
	Similarity Similarity
	Tagger     Tagger
	Annotator  Annotator

	LimInformative float64
	LimConfidence  float64

	// Workers bounds the goroutines used to score a batch; 1 scores inline.
	Workers int
	Log     *kitelog.Logger
}

// Selection is the outcome of one batch.
type Selection struct {
	// Informative sentences, labeled by the Annotator.
	Informative []Sentence
	// Accepted candidates, relabeled with the tagger's predictions.
	Accepted []Sentence
	// Candidates is the number of sentences that were not informative.
	Candidates int
	// Rejected is the number of candidates whose confidence was too low.
	Rejected int

	// Similarities holds one score per batch sentence, in batch order.
	Similarities []float64
	// Confidences holds one score per candidate, in batch order.
	Confidences []float64
}

// Added returns the number of sentences the batch adds to the training set.
func (s Selection) Added() int {
	return len(s.Informative) + len(s.Accepted)
}

// Select runs the policy on one batch. It does not modify the batch.
func (s *Selector) Select(ctx context.Context, batch []Sentence) (Selection, error) {
	var sel Selection

	scores, err := s.similarities(batch)
	if err != nil {
		return sel, err
	}
	sel.Similarities = scores
	s.logDistribution("similarity", scores)

	var informative, candidates []Sentence
	for i, score := range scores {
		if score < s.LimInformative {
			informative = append(informative, batch[i])
		} else {
			candidates = append(candidates, batch[i])
		}
	}
	sel.Candidates = len(candidates)

	if len(informative) > 0 {
		annotated, err := s.annotator().Annotate(ctx, informative)
		if err != nil {
			return sel, errors.Wrapf(err, "error annotating %d informative sentences", len(informative))
		}
		if err := checkAnnotated(informative, annotated); err != nil {
			return sel, err
		}
		sel.Informative = annotated
	}

	if len(candidates) == 0 {
		return sel, nil
	}

	words := make([][]string, len(candidates))
	for i, c := range candidates {
		words[i] = s.Pre.Tokens(c)
	}
	probs, err := s.Tagger.ProbabilityPerSentence(words)
	if err != nil {
		return sel, errors.Wrapf(err, "error scoring confidence of %d candidates", len(candidates))
	}
	if len(probs) != len(candidates) {
		return sel, errors.ShapeErrorf("tagger returned %d confidences for %d candidates", len(probs), len(candidates))
	}
	sel.Confidences = probs
	s.logDistribution("confidence", probs)

	var accepted []Sentence
	var acceptedWords [][]string
	for i, p := range probs {
		if p > s.LimConfidence {
			accepted = append(accepted, candidates[i])
			acceptedWords = append(acceptedWords, words[i])
		}
	}
	sel.Rejected = len(candidates) - len(accepted)
	if len(accepted) == 0 {
		return sel, nil
	}

	preds, err := s.Tagger.Predict(acceptedWords)
	if err != nil {
		return sel, errors.Wrapf(err, "error predicting %d confident candidates", len(accepted))
	}
	if len(preds) != len(accepted) {
		return sel, errors.ShapeErrorf("tagger returned %d predictions for %d sentences", len(preds), len(accepted))
	}
	for i, labels := range preds {
		pseudo, err := NewSentence(acceptedWords[i], labels)
		if err != nil {
			return sel, errors.Wrapf(err, "error pseudo-labeling candidate %d", i)
		}
		sel.Accepted = append(sel.Accepted, pseudo)
	}
	return sel, nil
}

func (s *Selector) similarities(batch []Sentence) ([]float64, error) {
	scores := make([]float64, len(batch))
	score := func(i int) error {
		v, err := s.Similarity.Score(s.Pre.Normalize(s.Pre.Tokens(batch[i])))
		if err != nil {
			return errors.Wrapf(err, "error scoring similarity of sentence %d", i)
		}
		scores[i] = v
		return nil
	}

	if s.Workers <= 1 || len(batch) < 2 {
		for i := range batch {
			if err := score(i); err != nil {
				return nil, err
			}
		}
		return scores, nil
	}

	pool := workerpool.New(s.Workers)
	defer pool.Stop()

	jobs := make([]workerpool.Job, len(batch))
	for i := range batch {
		i := i
		jobs[i] = func() error { return score(i) }
	}
	pool.Add(jobs)
	if err := pool.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}

func (s *Selector) annotator() Annotator {
	if s.Annotator == nil {
		return Oracle{}
	}
	return s.Annotator
}

func (s *Selector) logDistribution(name string, values []float64) {
	if s.Log == nil || len(values) == 0 {
		return
	}
	mean, _ := stats.Mean(values)
	median, _ := stats.Median(values)
	min, _ := stats.Min(values)
	max, _ := stats.Max(values)
	s.Log.Debugf("%s over %d sentences: mean %.4f median %.4f min %.4f max %.4f", name, len(values), mean, median, min, max)
}

func checkAnnotated(in, out []Sentence) error {
	if len(in) != len(out) {
		return errors.ShapeErrorf("annotator returned %d sentences for %d", len(out), len(in))
	}
	for i := range in {
		if len(in[i]) != len(out[i]) {
			return errors.ShapeErrorf("annotated sentence %d has %d tokens, expected %d", i, len(out[i]), len(in[i]))
		}
	}
	return nil
}
