// Package tagger implements a linear-chain sequence tagger trained with the
// averaged structured perceptron.
package tagger

import (
	"context"
	"math/rand"
	"sort"
	"sync"

	"github.com/kiteco/activeself/kite-go/activelearn"
	"github.com/kiteco/activeself/kite-golib/errors"
	"github.com/kiteco/activeself/kite-golib/serialization"
	"github.com/spf13/afero"
)

// DefaultEpochs is the number of training passes when none is configured.
const DefaultEpochs = 5

// Tagger implements activelearn.Tagger.
type Tagger struct {
	Epochs int
	// Seed fixes the order training sentences are visited in.
	Seed int64

	m     sync.RWMutex
	model *Model
}

// New returns an untrained Tagger.
func New(epochs int) *Tagger {
	if epochs <= 0 {
		epochs = DefaultEpochs
	}
	return &Tagger{Epochs: epochs, Seed: 1}
}

type instance struct {
	feats [][]int
	gold  []int
}

// Fit trains a new model on train and replaces the current one. The current
// model is kept if training fails.
func (t *Tagger) Fit(ctx context.Context, train []activelearn.Sentence) error {
	if len(train) == 0 {
		return errors.Errorf("cannot fit tagger on an empty training set")
	}

	model := &Model{Features: make(map[string]int)}
	labelSet := make(map[string]struct{})
	for _, s := range train {
		for _, tok := range s {
			labelSet[tok.Label] = struct{}{}
		}
	}
	for label := range labelSet {
		model.Labels = append(model.Labels, label)
	}
	sort.Strings(model.Labels)
	labelIDs := make(map[string]int, len(model.Labels))
	for i, label := range model.Labels {
		labelIDs[label] = i
	}

	instances := make([]instance, 0, len(train))
	for _, s := range train {
		if len(s) == 0 {
			continue
		}
		words := s.Words()
		inst := instance{feats: make([][]int, len(s)), gold: make([]int, len(s))}
		for i, tok := range s {
			inst.gold[i] = labelIDs[tok.Label]
			for _, f := range tokenFeatures(words, i) {
				id, ok := model.Features[f]
				if !ok {
					id = len(model.Features)
					model.Features[f] = id
				}
				inst.feats[i] = append(inst.feats[i], id)
			}
		}
		instances = append(instances, inst)
	}
	if len(instances) == 0 {
		return errors.Errorf("cannot fit tagger: all %d training sentences are empty", len(train))
	}

	L := model.numLabels()
	n := model.transOffset() + (L+1)*L
	w := make([]float64, n)
	// u accumulates c*delta so that the averaged weights are w - u/c
	u := make([]float64, n)
	c := 1.0
	update := func(i int, d float64) {
		w[i] += d
		u[i] += c * d
	}

	rng := rand.New(rand.NewSource(t.Seed))
	order := make([]int, len(instances))
	for i := range order {
		order[i] = i
	}

	epochs := t.Epochs
	if epochs <= 0 {
		epochs = DefaultEpochs
	}
	for epoch := 0; epoch < epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "tagger training interrupted at epoch %d", epoch)
		}
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		for _, idx := range order {
			inst := instances[idx]
			pred, _ := model.viterbi(w, inst.feats)
			if !equal(pred, inst.gold) {
				prevGold, prevPred := L, L
				for pos, fs := range inst.feats {
					g, p := inst.gold[pos], pred[pos]
					if g != p {
						for _, f := range fs {
							update(model.stateIndex(f, g), 1)
							update(model.stateIndex(f, p), -1)
						}
					}
					if g != p || prevGold != prevPred {
						update(model.transIndex(prevGold, g), 1)
						update(model.transIndex(prevPred, p), -1)
					}
					prevGold, prevPred = g, p
				}
			}
			c++
		}
	}

	model.Weights = make([]float64, n)
	for i := range w {
		model.Weights[i] = w[i] - u[i]/c
	}

	t.m.Lock()
	defer t.m.Unlock()
	t.model = model
	return nil
}

func (t *Tagger) current() (*Model, error) {
	t.m.RLock()
	defer t.m.RUnlock()
	if t.model == nil {
		return nil, errors.Errorf("tagger is not trained")
	}
	return t.model, nil
}

// Predict implements activelearn.Tagger.
func (t *Tagger) Predict(words [][]string) ([][]string, error) {
	model, err := t.current()
	if err != nil {
		return nil, err
	}
	out := make([][]string, len(words))
	for i, ws := range words {
		path, _ := model.viterbi(model.Weights, model.featureIDs(ws))
		labels := make([]string, len(path))
		for j, y := range path {
			labels[j] = model.Labels[y]
		}
		out[i] = labels
	}
	return out, nil
}

// ProbabilityPerSentence implements activelearn.Tagger. Each value is the
// probability of the sequence Predict returns, in [0, 1].
func (t *Tagger) ProbabilityPerSentence(words [][]string) ([]float64, error) {
	model, err := t.current()
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(words))
	for i, ws := range words {
		out[i] = model.confidence(model.Weights, model.featureIDs(ws))
	}
	return out, nil
}

// Labels returns the tag set of the trained model.
func (t *Tagger) Labels() []string {
	model, err := t.current()
	if err != nil {
		return nil
	}
	return append([]string(nil), model.Labels...)
}

// Save writes the model to path; the extension selects the encoding as in
// serialization.Encode.
func (t *Tagger) Save(fs afero.Fs, path string) error {
	model, err := t.current()
	if err != nil {
		return err
	}
	return errors.WrapfOrNil(serialization.Encode(fs, path, model), "error saving tagger to %s", path)
}

// Load reads a model written by Save.
func Load(fs afero.Fs, path string, epochs int) (*Tagger, error) {
	var model Model
	if err := serialization.Decode(fs, path, &model); err != nil {
		return nil, errors.Wrapf(err, "error loading tagger")
	}
	L := model.numLabels()
	if want := model.transOffset() + (L+1)*L; len(model.Weights) != want {
		return nil, errors.ShapeErrorf("model %s has %d weights, expected %d", path, len(model.Weights), want)
	}
	t := New(epochs)
	t.model = &model
	return t, nil
}

func equal(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
