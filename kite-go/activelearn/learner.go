package activelearn

import (
	"context"
	"time"

	"github.com/kiteco/activeself/kite-go/activelearn/evaluate"
	"github.com/kiteco/activeself/kite-go/activelearn/history"
	"github.com/kiteco/activeself/kite-go/activelearn/status"
	"github.com/kiteco/activeself/kite-golib/errors"
	"github.com/kiteco/activeself/kite-golib/kitelog"
	"go.uber.org/zap"
)

// Options configures a Learner.
type Options struct {
	// DataAdd is the number of new sentences that justifies a retrain.
	DataAdd        int
	LimInformative float64
	LimConfidence  float64

	// CheckpointPath is overwritten with the full training set every round.
	CheckpointPath string
	Workers        int
	RunID          string
	Method         string

	// RetrainSimilarity rebuilds a Trainable scorer at every round. The
	// scorer is always trained once on the seed set by Init.
	RetrainSimilarity bool
}

// Loop calls body for i in [0, n) until body returns true.
type Loop func(n int, body func(i int) (brk bool)) error

// Sequential is the default Loop.
func Sequential(n int, body func(i int) bool) error {
	for i := 0; i < n; i++ {
		if body(i) {
			break
		}
	}
	return nil
}

// Deps are the collaborators of a Learner. History, Board, Annotator, Loop
// and Log are optional.
type Deps struct {
	Pre        Preprocessor
	Similarity Similarity
	Tagger     Tagger
	Annotator  Annotator
	Store      Store

	History history.Sink
	Board   *status.Board
	// Loop drives Run over the batches, for example behind a progress bar.
	Loop Loop
	Log  *kitelog.Logger
}

// BatchResult describes one processed batch.
type BatchResult struct {
	Index     int
	Selection Selection
	// Round is set when the batch triggered a retrain.
	Round *RoundResult
}

// RoundResult describes one retrain cycle.
type RoundResult struct {
	Round     int
	Added     int
	TrainSize int
	// Informative and Confident are totals for the run so far.
	Informative int
	Confident   int
	Report      *evaluate.Report
}

// Learner runs the select / accumulate / retrain loop. It is not safe for
// concurrent use: the training set has a single writer.
type Learner struct {
	opts       Options
	deps       Deps
	selector   *Selector
	validation []Sentence

	train *TrainingSet
	state RoundState
}

// New returns a Learner seeded with a copy of seed.
func New(opts Options, deps Deps, seed, validation []Sentence) (*Learner, error) {
	if opts.DataAdd <= 0 {
		return nil, errors.ConfigErrorf("data_add must be positive, got %d", opts.DataAdd)
	}
	if deps.Pre == nil || deps.Similarity == nil || deps.Tagger == nil || deps.Store == nil {
		return nil, errors.ConfigErrorf("learner requires a preprocessor, similarity scorer, tagger and store")
	}
	if opts.CheckpointPath == "" {
		return nil, errors.ConfigErrorf("checkpoint path is required")
	}
	if deps.Log == nil {
		deps.Log = kitelog.Basic
	}
	if deps.Annotator == nil {
		deps.Annotator = Oracle{}
	}
	if deps.Loop == nil {
		deps.Loop = Sequential
	}

	return &Learner{
		opts: opts,
		deps: deps,
		selector: &Selector{
			Pre:            deps.Pre,
			Similarity:     deps.Similarity,
			Tagger:         deps.Tagger,
			Annotator:      deps.Annotator,
			LimInformative: opts.LimInformative,
			LimConfidence:  opts.LimConfidence,
			Workers:        opts.Workers,
			Log:            deps.Log,
		},
		validation: validation,
		train:      NewTrainingSet(seed),
	}, nil
}

// TrainingSet returns the current training set.
func (l *Learner) TrainingSet() *TrainingSet {
	return l.train
}

// State returns the current round counters.
func (l *Learner) State() RoundState {
	return l.state
}

// Init fits the tagger on the seed set, logs the initial evaluation and
// trains the similarity scorer on the seed set.
func (l *Learner) Init(ctx context.Context) (*evaluate.Report, error) {
	log := l.deps.Log
	log.Printf("initializing with %d training and %d validation sentences", l.train.Len(), len(l.validation))
	log.Debugf("thresholds: informative < %v, confident > %v", l.opts.LimInformative, l.opts.LimConfidence)

	err := log.Durations.Time("fit tagger", func() error {
		return l.deps.Tagger.Fit(ctx, l.train.Sentences())
	})
	if err != nil {
		return nil, errors.Wrapf(err, "error fitting tagger on seed set")
	}

	var report *evaluate.Report
	err = log.Durations.Time("evaluate", func() error {
		var err error
		report, err = l.Evaluate()
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Printf("initial evaluation:\n%s", report)
	log.Event("evaluation",
		zap.Int("round", 0),
		zap.Float64("micro_f1", report.Micro.F1),
		zap.Float64("entity_f1", report.Entity.F1))

	if err := log.Durations.Time("train similarity", l.trainSimilarity); err != nil {
		return nil, err
	}
	log.Durations.Flush(log)

	l.deps.Board.Update(func(s *status.Snapshot) {
		s.RunID = l.opts.RunID
		s.Method = l.opts.Method
		s.TrainSize = l.train.Len()
		s.MicroF1 = report.Micro.F1
		s.EntityF1 = report.Entity.F1
	})
	return report, nil
}

// Evaluate scores the tagger against the validation set.
func (l *Learner) Evaluate() (*evaluate.Report, error) {
	pred, err := l.deps.Tagger.Predict(Words(l.validation))
	if err != nil {
		return nil, errors.Wrapf(err, "error predicting validation set")
	}
	report, err := evaluate.Evaluate(Labels(l.validation), pred)
	if err != nil {
		return nil, errors.Wrapf(err, "error evaluating validation set")
	}
	return report, nil
}

// ProcessBatch selects from batch, accumulates the result and retrains when
// enough sentences have been added or last is set.
func (l *Learner) ProcessBatch(ctx context.Context, index int, batch []Sentence, last bool) (BatchResult, error) {
	result := BatchResult{Index: index}

	sel, err := l.selector.Select(ctx, batch)
	if err != nil {
		return result, errors.Wrapf(err, "error selecting from batch %d", index)
	}
	result.Selection = sel

	l.train.Append(sel.Informative...)
	l.train.Append(sel.Accepted...)
	l.state.Add(len(sel.Informative), len(sel.Accepted))

	l.deps.Log.Debugf("batch %d: %d sentences, %d informative, %d confident, %d rejected",
		index, len(batch), len(sel.Informative), len(sel.Accepted), sel.Rejected)
	l.deps.Log.Event("batch",
		zap.Int("batch", index),
		zap.Int("size", len(batch)),
		zap.Int("informative", len(sel.Informative)),
		zap.Int("confident", len(sel.Accepted)),
		zap.Int("rejected", sel.Rejected),
		zap.Int("count_data", l.state.CountData))

	state := l.state
	l.deps.Board.Update(func(s *status.Snapshot) {
		s.Batch = index + 1
		s.TrainSize = l.train.Len()
		s.CountData = state.CountData
		s.Informative = state.CountSim
		s.Confident = state.CountProb
	})

	if !l.state.ShouldRetrain(l.opts.DataAdd, last) {
		return result, nil
	}
	round, err := l.Retrain(ctx)
	if err != nil {
		return result, err
	}
	result.Round = &round
	return result, nil
}

// Retrain closes the current round: it persists the training set, retrains
// the similarity scorer and the tagger, and evaluates the result.
func (l *Learner) Retrain(ctx context.Context) (RoundResult, error) {
	log := l.deps.Log
	round, added := l.state.StartRound()
	result := RoundResult{
		Round:       round,
		Added:       added,
		TrainSize:   l.train.Len(),
		Informative: l.state.CountSim,
		Confident:   l.state.CountProb,
	}

	log.Printf("round %d: training set %d sentences (+%d); run totals: %d informative, %d confident",
		round, result.TrainSize, added, result.Informative, result.Confident)
	log.Event("round",
		zap.Int("round", round),
		zap.Int("train_size", result.TrainSize),
		zap.Int("added", added),
		zap.Int("informative_total", result.Informative),
		zap.Int("confident_total", result.Confident))

	err := log.Durations.Time("persist checkpoint", func() error {
		return l.train.Persist(l.deps.Store, l.opts.CheckpointPath)
	})
	if err != nil {
		return result, errors.Wrapf(err, "error persisting checkpoint %s", l.opts.CheckpointPath)
	}

	if l.opts.RetrainSimilarity {
		if err := log.Durations.Time("train similarity", l.trainSimilarity); err != nil {
			return result, err
		}
	}

	err = log.Durations.Time("fit tagger", func() error {
		return l.deps.Tagger.Fit(ctx, l.train.Sentences())
	})
	if err != nil {
		return result, errors.Wrapf(err, "error fitting tagger in round %d", round)
	}

	var report *evaluate.Report
	err = log.Durations.Time("evaluate", func() error {
		var err error
		report, err = l.Evaluate()
		return err
	})
	if err != nil {
		return result, err
	}
	result.Report = report

	log.Printf("round %d evaluation:\n%s", round, report)
	log.Event("evaluation",
		zap.Int("round", round),
		zap.Float64("micro_f1", report.Micro.F1),
		zap.Float64("entity_f1", report.Entity.F1),
		zap.Float64("accuracy", report.Accuracy))
	log.Durations.Flush(log)

	if l.deps.History != nil {
		err := l.deps.History.Write(history.Record{
			RunID:       l.opts.RunID,
			Round:       round,
			TrainSize:   result.TrainSize,
			Added:       added,
			Informative: result.Informative,
			Confident:   result.Confident,
			MicroF1:     report.Micro.F1,
			EntityF1:    report.Entity.F1,
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			return result, errors.Wrapf(err, "error recording round %d", round)
		}
	}

	l.deps.Board.Update(func(s *status.Snapshot) {
		s.Round = round
		s.CountData = 0
		s.MicroF1 = report.Micro.F1
		s.EntityF1 = report.Entity.F1
	})
	return result, nil
}

// Run partitions the stream and processes every batch in order. progress,
// if non-nil, is called after each batch.
func (l *Learner) Run(ctx context.Context, stream []Sentence, progress func(BatchResult)) ([]RoundResult, error) {
	batches, err := Partition(stream, l.opts.DataAdd)
	if err != nil {
		return nil, err
	}
	l.deps.Log.Printf("processing %d sentences in %d batches", len(stream), len(batches))
	l.deps.Board.Update(func(s *status.Snapshot) {
		s.Batches = len(batches)
	})

	var rounds []RoundResult
	var runErr error
	err = l.deps.Loop(len(batches), func(i int) bool {
		if runErr = ctx.Err(); runErr != nil {
			return true
		}
		var res BatchResult
		res, runErr = l.ProcessBatch(ctx, i, batches[i], i == len(batches)-1)
		if runErr != nil {
			return true
		}
		if res.Round != nil {
			rounds = append(rounds, *res.Round)
		}
		if progress != nil {
			progress(res)
		}
		return false
	})
	if runErr != nil {
		return rounds, runErr
	}
	if err != nil {
		return rounds, err
	}

	l.deps.Board.Update(func(s *status.Snapshot) {
		s.Done = true
	})
	l.deps.Log.Printf("done after %d rounds; training set %d sentences", l.state.Round, l.train.Len())
	return rounds, nil
}

func (l *Learner) trainSimilarity() error {
	trainable, ok := l.deps.Similarity.(Trainable)
	if !ok {
		return nil
	}
	sentences := l.train.Sentences()
	corpus := make([][]string, len(sentences))
	for i, s := range sentences {
		corpus[i] = l.deps.Pre.Normalize(l.deps.Pre.Tokens(s))
	}
	return errors.WrapfOrNil(trainable.Train(corpus), "error training similarity on %d sentences", len(corpus))
}
