package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	arg "github.com/alexflint/go-arg"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/kiteco/activeself/kite-go/activelearn"
	"github.com/kiteco/activeself/kite-go/activelearn/config"
	"github.com/kiteco/activeself/kite-go/activelearn/dataset"
	"github.com/kiteco/activeself/kite-go/activelearn/history"
	"github.com/kiteco/activeself/kite-go/activelearn/preprocess"
	"github.com/kiteco/activeself/kite-go/activelearn/similarity"
	"github.com/kiteco/activeself/kite-go/activelearn/status"
	"github.com/kiteco/activeself/kite-go/activelearn/tagger"
	"github.com/kiteco/activeself/kite-golib/fileutil"
	"github.com/kiteco/activeself/kite-golib/kitelog"
	"github.com/sbwhitecap/tqdm"
	"github.com/sbwhitecap/tqdm/iterators"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

type args struct {
	ConfigFile string `arg:"--config" help:"YAML config file; flags override it"`
	config.Config
}

func (args) Description() string {
	return "grows a NER training set from a sentence stream by active and self learning"
}

func fail(err error) {
	if err != nil {
		log.Fatalln(err)
	}
}

// progressLoop runs the batches under a tqdm progress bar.
func progressLoop(n int, body func(i int) bool) error {
	return tqdm.With(iterators.Interval(0, n), "Processing batches", func(c interface{}) (brk bool) {
		return body(c.(int))
	})
}

// configPath finds --config before the remaining flags are parsed, so the
// file can provide defaults that flags then override.
func configPath(argv []string) string {
	for i, a := range argv {
		switch {
		case a == "--config" && i+1 < len(argv):
			return argv[i+1]
		case strings.HasPrefix(a, "--config="):
			return strings.TrimPrefix(a, "--config=")
		}
	}
	return ""
}

func main() {
	start := time.Now()
	fs := afero.NewOsFs()

	cfg := config.Default()
	if path := configPath(os.Args[1:]); path != "" {
		fail(config.Load(fs, path, &cfg))
	}
	fail(config.ApplyEnv(&cfg))

	a := args{Config: cfg}
	arg.MustParse(&a)
	cfg = a.Config
	fail(cfg.Validate())
	method, err := similarity.ParseMethod(cfg.Method)
	fail(err)

	runID := uuid.New().String()
	logger, err := kitelog.Open(cfg.LogFile, runID, cfg.Debug)
	fail(err)
	defer logger.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		logger.Printf("received %v, stopping after the current batch", sig)
		cancel()
	}()

	store := dataset.NewStore(fs)
	train, err := store.Read(cfg.TrainPath)
	fail(err)
	validation, err := store.Read(cfg.ValidationPath)
	fail(err)
	stream, err := store.Read(cfg.StreamPath)
	fail(err)
	_, err = activelearn.NumBatches(len(stream), cfg.DataAdd)
	fail(err)

	logger.Printf("started run %s: train %s, validation %s, stream %s sentences",
		runID, humanize.Comma(int64(len(train))), humanize.Comma(int64(len(validation))), humanize.Comma(int64(len(stream))))
	for _, p := range []string{cfg.TrainPath, cfg.ValidationPath, cfg.StreamPath} {
		if info, err := fs.Stat(p); err == nil {
			logger.Debugf("%s: %s", p, humanize.Bytes(uint64(info.Size())))
		}
	}
	logger.Event("start",
		zap.String("method", string(method)),
		zap.Int("train", len(train)),
		zap.Int("validation", len(validation)),
		zap.Int("stream", len(stream)),
		zap.Int("data_add", cfg.DataAdd),
		zap.Float64("lim_informative", cfg.LimInformative),
		zap.Float64("lim_confidence", cfg.LimConfidence))

	scorer, err := similarity.New(method, similarity.Options{
		Fs:          fs,
		VectorsPath: cfg.VectorsPath,
		CacheSize:   cfg.VectorCacheSize,
	})
	fail(err)

	var sinks []history.Sink
	if cfg.HistoryPath != "" {
		sinks = append(sinks, history.NewCSVSink(fs, cfg.HistoryPath))
	}
	if cfg.HistoryDB != "" {
		db, err := history.NewSQLiteSink(cfg.HistoryDB)
		fail(err)
		sinks = append(sinks, db)
	}
	sink := history.Multi(sinks...)
	defer sink.Close()

	board := &status.Board{}
	if cfg.StatusAddr != "" {
		go func() {
			logger.Printf("serving status on %s", cfg.StatusAddr)
			if err := http.ListenAndServe(cfg.StatusAddr, status.Handler(board)); err != nil {
				logger.Printf("status server stopped: %v", err)
			}
		}()
	}

	tg := tagger.New(cfg.Epochs)
	learner, err := activelearn.New(activelearn.Options{
		DataAdd:           cfg.DataAdd,
		LimInformative:    cfg.LimInformative,
		LimConfidence:     cfg.LimConfidence,
		CheckpointPath:    cfg.Checkpoint(),
		Workers:           cfg.Workers,
		RunID:             runID,
		Method:            string(method),
		RetrainSimilarity: cfg.RetrainSimilarity,
	}, activelearn.Deps{
		Pre:        preprocess.New(method.Stem()),
		Similarity: scorer,
		Tagger:     tg,
		Store:      store,
		History:    sink,
		Board:      board,
		Loop:       progressLoop,
		Log:        logger,
	}, train, validation)
	fail(err)

	_, err = learner.Init(ctx)
	fail(err)

	if _, err := learner.Run(ctx, stream, nil); err != nil {
		logger.Printf("stopped: %v", err)
		logger.Close()
		sink.Close()
		fail(err)
	}

	if cfg.ModelPath != "" {
		fail(tg.Save(fs, cfg.ModelPath))
		logger.Printf("saved tagger to %s", cfg.ModelPath)
	}

	state := learner.State()
	logger.Printf("done in %v: %d rounds, training set %s sentences, %d informative and %d confident added",
		time.Since(start), state.Round, humanize.Comma(int64(learner.TrainingSet().Len())), state.CountSim, state.CountProb)
	if fileutil.Exists(fs, cfg.Checkpoint()) {
		logger.Printf("checkpoint at %s", cfg.Checkpoint())
	}
}
