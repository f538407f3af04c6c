package activelearn

import (
	"context"
	"testing"

	"github.com/kiteco/activeself/kite-golib/errors"
	"github.com/kiteco/activeself/kite-golib/kitelog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSelector(workers int) (*Selector, *fakeSimilarity, *fakeTagger) {
	sim := &fakeSimilarity{scores: map[string]float64{
		"alpha": 0.1,
		"beta":  0.3,
		"gamma": 0.8,
		"delta": 0.5,
		"eps":   0.29,
	}}
	tagger := &fakeTagger{confidence: map[string]float64{
		"Beta":  0.95,
		"gamma": 0.9,
		"delta": 0.2,
	}}
	return &Selector{
		Pre:            fakePre{},
		Similarity:     sim,
		Tagger:         tagger,
		LimInformative: 0.3,
		LimConfidence:  0.9,
		Workers:        workers,
		Log:            kitelog.Discard,
	}, sim, tagger
}

func selectionBatch() []Sentence {
	return []Sentence{
		sent("alpha is here", "B-ORG", "O", "O"),
		sent("Beta is here", "O", "O", "O"),
		sent("gamma is here"),
		sent("delta is here"),
	}
}

func TestSelect(t *testing.T) {
	for _, workers := range []int{1, 4} {
		s, sim, tagger := newSelector(workers)
		batch := selectionBatch()

		sel, err := s.Select(context.Background(), batch)
		require.NoError(t, err)

		assert.Equal(t, []float64{0.1, 0.3, 0.8, 0.5}, sel.Similarities, "workers=%d", workers)
		assert.Equal(t, 4, sim.calls)

		require.Len(t, sel.Informative, 1)
		assert.Equal(t, batch[0], sel.Informative[0], "informative sentences keep their labels")

		// similarity equal to the threshold is not informative; confidence
		// equal to the threshold is not accepted
		assert.Equal(t, 3, sel.Candidates)
		assert.Equal(t, []float64{0.95, 0.9, 0.2}, sel.Confidences)
		assert.Equal(t, 2, sel.Rejected)

		require.Len(t, sel.Accepted, 1)
		assert.Equal(t, []string{"Beta", "is", "here"}, sel.Accepted[0].Words())
		assert.Equal(t, []string{"B-PER", "O", "O"}, sel.Accepted[0].Labels(), "accepted sentences carry predicted labels")
		assert.Equal(t, 2, sel.Added())

		assert.Equal(t, 1, tagger.probCalls)
		assert.Equal(t, 1, tagger.predCalls)
		assert.Equal(t, "O", batch[1][0].Label, "batch is not modified")
	}
}

func TestSelectNoCandidates(t *testing.T) {
	s, _, tagger := newSelector(1)
	batch := []Sentence{sent("alpha one"), sent("eps two")}

	sel, err := s.Select(context.Background(), batch)
	require.NoError(t, err)
	assert.Len(t, sel.Informative, 2)
	assert.Empty(t, sel.Accepted)
	assert.Equal(t, 0, sel.Candidates)
	assert.Equal(t, 0, tagger.probCalls, "no confidence scoring without candidates")
	assert.Equal(t, 0, tagger.predCalls)
}

func TestSelectNoneAccepted(t *testing.T) {
	s, _, tagger := newSelector(1)
	batch := []Sentence{sent("gamma one"), sent("delta two")}

	sel, err := s.Select(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 0, sel.Added())
	assert.Equal(t, 2, sel.Rejected)
	assert.Equal(t, 0, tagger.predCalls)
}

func TestSelectCounts(t *testing.T) {
	s, _, _ := newSelector(2)
	batch := append(selectionBatch(), sents("alpha", "gamma", "Beta", "eps")...)

	sel, err := s.Select(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, len(batch), len(sel.Informative)+sel.Candidates)
	assert.Equal(t, sel.Candidates, len(sel.Accepted)+sel.Rejected)
	assert.Len(t, sel.Confidences, sel.Candidates)
}

func TestSelectShapeErrors(t *testing.T) {
	s, _, _ := newSelector(1)
	s.Annotator = badAnnotator{}
	_, err := s.Select(context.Background(), selectionBatch())
	require.Error(t, err)
	assert.True(t, errors.IsShape(err))

	s, _, tagger := newSelector(1)
	tagger.shortProbs = true
	_, err = s.Select(context.Background(), selectionBatch())
	require.Error(t, err)
	assert.True(t, errors.IsShape(err))
}
