// Package config holds the settings of an active / self learning run.
//
// Values are layered: Default, then a YAML file (Load), then environment
// variables (ApplyEnv), then command line flags parsed into the same struct.
package config

import (
	"github.com/kiteco/activeself/kite-go/activelearn/similarity"
	"github.com/kiteco/activeself/kite-golib/envutil"
	"github.com/kiteco/activeself/kite-golib/errors"
	"github.com/kiteco/activeself/kite-golib/fileutil"
	"github.com/spf13/afero"
	yaml "gopkg.in/yaml.v2"
)

// Environment variables read by ApplyEnv.
const (
	EnvDataAdd        = "ACTIVESELF_DATA_ADD"
	EnvMethod         = "ACTIVESELF_METHOD"
	EnvLog            = "ACTIVESELF_LOG"
	EnvLimInformative = "ACTIVESELF_LIM_INFORMATIVE"
	EnvLimConfidence  = "ACTIVESELF_LIM_CONFIDENCE"
)

// Config is the full set of run settings.
type Config struct {
	TrainPath      string `yaml:"train_path" arg:"--train" help:"seed training set"`
	ValidationPath string `yaml:"validation_path" arg:"--validation" help:"held-out validation set"`
	StreamPath     string `yaml:"stream_path" arg:"--stream" help:"stream of candidate sentences"`
	CheckpointPath string `yaml:"checkpoint_path" arg:"--checkpoint" help:"training set checkpoint, rewritten every round (defaults to the training set path)"`
	ModelPath      string `yaml:"model_path" arg:"--model" help:"where to save the final tagger"`

	Method          string `yaml:"method" arg:"-m,--method" help:"similarity method: tfidf or word2vec"`
	VectorsPath     string `yaml:"vectors_path" arg:"--vectors" help:"word2vec vectors (text, or binary with .bin)"`
	VectorCacheSize int    `yaml:"vector_cache_size" arg:"--vector-cache-size" help:"memoized word2vec scores"`

	DataAdd        int     `yaml:"data_add" arg:"--data-add" help:"new sentences that trigger a retrain"`
	LimInformative float64 `yaml:"lim_informative" arg:"--lim-informative" help:"sentences less similar than this are informative"`
	LimConfidence  float64 `yaml:"lim_confidence" arg:"--lim-confidence" help:"candidates more confident than this are pseudo-labeled"`

	RetrainSimilarity bool `yaml:"retrain_similarity_on_round" arg:"--retrain-similarity" help:"rebuild the similarity model every round"`
	Epochs            int  `yaml:"epochs" arg:"--epochs" help:"tagger training passes"`
	Workers           int  `yaml:"workers" arg:"--workers" help:"goroutines used to score a batch"`

	HistoryPath string `yaml:"history_path" arg:"--history" help:"CSV file to append round summaries to"`
	HistoryDB   string `yaml:"history_db" arg:"--history-db" help:"SQLite database to record round summaries in"`
	StatusAddr  string `yaml:"status_addr" arg:"--status-addr" help:"address to serve /status on"`

	LogFile string `yaml:"log_file" arg:"-l,--log" help:"log file (default stderr)"`
	Debug   bool   `yaml:"debug" arg:"--debug" help:"log thresholds and score distributions"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		TrainPath:         "./data/train_clean",
		ValidationPath:    "./data/dev_clean",
		StreamPath:        "./data/test_clean",
		ModelPath:         "./classifiers/classifier_1.gob",
		Method:            string(similarity.TFIDF),
		VectorCacheSize:   4096,
		DataAdd:           100,
		LimInformative:    0.3,
		LimConfidence:     0.95,
		RetrainSimilarity: true,
		Epochs:            5,
		Workers:           4,
	}
}

// Load overlays the YAML file at path onto c. Unknown keys are an error.
func Load(fs afero.Fs, path string, c *Config) error {
	buf, err := fileutil.ReadFile(fs, path)
	if err != nil {
		return errors.Wrapf(err, "error reading config %s", path)
	}
	if err := yaml.UnmarshalStrict(buf, c); err != nil {
		return errors.ConfigErrorf("error parsing config %s: %v", path, err)
	}
	return nil
}

// ApplyEnv overlays the environment variables onto c.
func ApplyEnv(c *Config) error {
	var err error
	if c.DataAdd, err = envutil.GetenvDefaultInt(EnvDataAdd, c.DataAdd); err != nil {
		return errors.ConfigErrorf("%v", err)
	}
	if c.LimInformative, err = envutil.GetenvDefaultFloat(EnvLimInformative, c.LimInformative); err != nil {
		return errors.ConfigErrorf("%v", err)
	}
	if c.LimConfidence, err = envutil.GetenvDefaultFloat(EnvLimConfidence, c.LimConfidence); err != nil {
		return errors.ConfigErrorf("%v", err)
	}
	c.Method = envutil.GetenvDefault(EnvMethod, c.Method)
	c.LogFile = envutil.GetenvDefault(EnvLog, c.LogFile)
	return nil
}

// Checkpoint returns the checkpoint path, which defaults to the training set.
func (c Config) Checkpoint() string {
	if c.CheckpointPath != "" {
		return c.CheckpointPath
	}
	return c.TrainPath
}

// Validate reports settings that cannot produce a meaningful run.
func (c Config) Validate() error {
	method, err := similarity.ParseMethod(c.Method)
	if err != nil {
		return err
	}
	switch {
	case c.DataAdd <= 0:
		return errors.ConfigErrorf("data_add must be positive, got %d", c.DataAdd)
	case method == similarity.Word2Vec && c.VectorsPath == "":
		return errors.ConfigErrorf("method word2vec requires vectors_path")
	case c.TrainPath == "":
		return errors.ConfigErrorf("train_path is required")
	case c.ValidationPath == "":
		return errors.ConfigErrorf("validation_path is required")
	case c.StreamPath == "":
		return errors.ConfigErrorf("stream_path is required")
	case c.Workers < 1:
		return errors.ConfigErrorf("workers must be at least 1, got %d", c.Workers)
	case c.Epochs < 1:
		return errors.ConfigErrorf("epochs must be at least 1, got %d", c.Epochs)
	}
	return nil
}
