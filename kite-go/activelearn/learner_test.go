package activelearn

import (
	"context"
	"testing"

	"github.com/kiteco/activeself/kite-go/activelearn/history"
	"github.com/kiteco/activeself/kite-go/activelearn/status"
	"github.com/kiteco/activeself/kite-golib/errors"
	"github.com/kiteco/activeself/kite-golib/kitelog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	records []history.Record
	closed  bool
}

func (r *recordingSink) Write(rec history.Record) error {
	r.records = append(r.records, rec)
	return nil
}

func (r *recordingSink) Close() error {
	r.closed = true
	return nil
}

type fixture struct {
	learner *Learner
	sim     *fakeSimilarity
	tagger  *fakeTagger
	store   *memStore
	sink    *recordingSink
	board   *status.Board
}

func newFixture(t *testing.T, dataAdd int) *fixture {
	f := &fixture{
		sim: &fakeSimilarity{scores: map[string]float64{
			"inf1": 0.1, "inf2": 0.1, "inf3": 0.1,
			"conf1": 0.9, "conf2": 0.9,
		}},
		tagger: &fakeTagger{confidence: map[string]float64{
			"Conf1": 0.99, "Conf2": 0.99,
		}},
		store: newMemStore(),
		sink:  &recordingSink{},
		board: &status.Board{},
	}

	seed := []Sentence{sent("Ann runs", "B-PER", "O"), sent("Bob sits", "B-PER", "O")}
	validation := []Sentence{sent("Cid runs", "B-PER", "O")}

	l, err := New(Options{
		DataAdd:           dataAdd,
		LimInformative:    0.3,
		LimConfidence:     0.95,
		CheckpointPath:    "ckpt",
		Workers:           2,
		RunID:             "run-1",
		Method:            "fake",
		RetrainSimilarity: true,
	}, Deps{
		Pre:        fakePre{},
		Similarity: f.sim,
		Tagger:     f.tagger,
		Store:      f.store,
		History:    f.sink,
		Board:      f.board,
		Log:        kitelog.Discard,
	}, seed, validation)
	require.NoError(t, err)
	f.learner = l
	return f
}

// scenarioStream has 10 sentences: the first five yield 3 informative and 2
// confident sentences, the last five are all rejected.
func scenarioStream() []Sentence {
	return []Sentence{
		sent("inf1 a"), sent("Conf1 b"), sent("inf2 c"), sent("Conf2 d"), sent("inf3 e"),
		sent("low1 f"), sent("low2 g"), sent("low3 h"), sent("low4 i"), sent("low5 j"),
	}
}

func TestLearnerRun(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()

	report, err := f.learner.Init(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.0, report.Micro.F1)
	assert.Equal(t, []int{2}, f.tagger.fits)
	require.Len(t, f.sim.trained, 1)
	assert.Equal(t, [][]string{{"ann", "runs"}, {"bob", "sits"}}, f.sim.trained[0])

	var batches []BatchResult
	rounds, err := f.learner.Run(ctx, scenarioStream(), func(b BatchResult) {
		batches = append(batches, b)
	})
	require.NoError(t, err)

	require.Len(t, batches, 2)
	assert.Equal(t, 3, len(batches[0].Selection.Informative))
	assert.Equal(t, 2, len(batches[0].Selection.Accepted))
	require.NotNil(t, batches[0].Round, "count_data reached data_add")
	require.NotNil(t, batches[1].Round, "last batch always retrains")
	assert.Equal(t, 0, batches[1].Selection.Added())

	require.Len(t, rounds, 2)
	assert.Equal(t, RoundResult{Round: 1, Added: 5, TrainSize: 7, Informative: 3, Confident: 2, Report: rounds[0].Report}, rounds[0])
	assert.Equal(t, RoundResult{Round: 2, Added: 0, TrainSize: 7, Informative: 3, Confident: 2, Report: rounds[1].Report}, rounds[1])
	assert.NotNil(t, rounds[1].Report)

	assert.Equal(t, RoundState{CountData: 0, CountSim: 3, CountProb: 2, Round: 2}, f.learner.State())
	assert.Equal(t, 7, f.learner.TrainingSet().Len())

	// informative first, then accepted, in batch order
	words := f.learner.TrainingSet().Words()
	assert.Equal(t, []string{"inf1", "inf2", "inf3", "Conf1", "Conf2"}, []string{words[2][0], words[3][0], words[4][0], words[5][0], words[6][0]})

	ckpts := f.store.writes["ckpt"]
	require.Len(t, ckpts, 2)
	assert.Len(t, ckpts[0], 7)
	assert.Equal(t, ckpts[0], ckpts[1], "unchanged training set persists identically")

	assert.Equal(t, []int{2, 7, 7}, f.tagger.fits)
	assert.Len(t, f.sim.trained, 3)

	require.Len(t, f.sink.records, 2)
	assert.Equal(t, "run-1", f.sink.records[0].RunID)
	assert.Equal(t, 1, f.sink.records[0].Round)
	assert.Equal(t, 5, f.sink.records[0].Added)
	assert.Equal(t, 1.0, f.sink.records[1].MicroF1)

	snap := f.board.Snapshot()
	assert.True(t, snap.Done)
	assert.Equal(t, 2, snap.Round)
	assert.Equal(t, 2, snap.Batches)
	assert.Equal(t, 7, snap.TrainSize)
	assert.Equal(t, "fake", snap.Method)
}

func TestLearnerPersistsBeforeFit(t *testing.T) {
	f := newFixture(t, 5)
	var fitsAtWrite []int
	f.store.onWrite = func() {
		fitsAtWrite = append(fitsAtWrite, len(f.tagger.fits))
	}

	_, err := f.learner.Run(context.Background(), scenarioStream(), nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, fitsAtWrite)
}

func TestLearnerNoSimilarityRetrain(t *testing.T) {
	f := newFixture(t, 5)
	f.learner.opts.RetrainSimilarity = false

	_, err := f.learner.Init(context.Background())
	require.NoError(t, err)
	_, err = f.learner.Run(context.Background(), scenarioStream(), nil)
	require.NoError(t, err)
	assert.Len(t, f.sim.trained, 1, "only the seed set trains the scorer")
}

func TestLearnerRetrainResetsCount(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()

	res, err := f.learner.ProcessBatch(ctx, 0, []Sentence{sent("inf1 a")}, false)
	require.NoError(t, err)
	assert.Nil(t, res.Round)
	assert.Equal(t, 1, f.learner.State().CountData)

	res, err = f.learner.ProcessBatch(ctx, 1, []Sentence{sent("inf2 a"), sent("Conf1 b")}, false)
	require.NoError(t, err)
	require.NotNil(t, res.Round)
	assert.Equal(t, 3, res.Round.Added)
	assert.Equal(t, 0, f.learner.State().CountData)
	assert.Equal(t, 1, f.learner.State().Round)
}

func TestLearnerErrors(t *testing.T) {
	_, err := New(Options{DataAdd: 0, CheckpointPath: "x"}, Deps{}, nil, nil)
	assert.True(t, errors.IsConfig(err))

	f := newFixture(t, 5)
	_, err = f.learner.Run(context.Background(), scenarioStream()[:3], nil)
	assert.True(t, errors.IsConfig(err), "stream shorter than data_add")

	f = newFixture(t, 5)
	f.store.err = errors.New("disk full")
	_, err = f.learner.Run(context.Background(), scenarioStream(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Empty(t, f.tagger.fits, "tagger is not fitted after a failed checkpoint")

	f = newFixture(t, 5)
	f.tagger.fitErr = errors.New("tagger crashed")
	_, err = f.learner.Run(context.Background(), scenarioStream(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tagger crashed")
	assert.Equal(t, 7, f.learner.TrainingSet().Len(), "a failed round keeps its additions")
	require.Len(t, f.store.writes["ckpt"], 1)
	assert.Len(t, f.store.writes["ckpt"][0], 7)
}

func TestLearnerRunLoop(t *testing.T) {
	f := newFixture(t, 5)
	var visited []int
	f.learner.deps.Loop = func(n int, body func(i int) bool) error {
		assert.Equal(t, 2, n)
		for i := 0; i < n; i++ {
			visited = append(visited, i)
			if body(i) {
				break
			}
		}
		return nil
	}

	rounds, err := f.learner.Run(context.Background(), scenarioStream(), nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, visited)
	assert.Len(t, rounds, 2)
	assert.True(t, f.board.Snapshot().Done)
}

func TestLearnerRunLoopStopsOnError(t *testing.T) {
	f := newFixture(t, 5)
	f.tagger.fitErr = errors.New("tagger crashed")
	var visited []int
	f.learner.deps.Loop = func(n int, body func(i int) bool) error {
		for i := 0; i < n; i++ {
			visited = append(visited, i)
			if body(i) {
				break
			}
		}
		return nil
	}

	_, err := f.learner.Run(context.Background(), scenarioStream(), nil)
	require.Error(t, err)
	assert.Equal(t, []int{0}, visited, "no batch runs after a failed round")
	assert.False(t, f.board.Snapshot().Done)

	f = newFixture(t, 5)
	f.learner.deps.Loop = func(n int, body func(i int) bool) error {
		return errors.New("terminal closed")
	}
	_, err = f.learner.Run(context.Background(), scenarioStream(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "terminal closed")
}

func TestLearnerCanceled(t *testing.T) {
	f := newFixture(t, 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.learner.Run(ctx, scenarioStream(), nil)
	assert.Equal(t, context.Canceled, err)
	assert.Empty(t, f.store.writes)
}
