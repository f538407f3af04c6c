// Package history records a summary of every retraining round.
package history

import (
	"os"

	"github.com/gocarina/gocsv"
	"github.com/jmoiron/sqlx"
	"github.com/kiteco/activeself/kite-golib/errors"
	"github.com/spf13/afero"

	// sqlite3 driver for SQLiteSink
	_ "github.com/mattn/go-sqlite3"
)

// Record summarizes one round. Informative and Confident are run totals.
type Record struct {
	RunID       string  `csv:"run_id" db:"run_id" json:"run_id"`
	Round       int     `csv:"round" db:"round" json:"round"`
	TrainSize   int     `csv:"train_size" db:"train_size" json:"train_size"`
	Added       int     `csv:"added" db:"added" json:"added"`
	Informative int     `csv:"informative_total" db:"informative_total" json:"informative_total"`
	Confident   int     `csv:"confident_total" db:"confident_total" json:"confident_total"`
	MicroF1     float64 `csv:"micro_f1" db:"micro_f1" json:"micro_f1"`
	EntityF1    float64 `csv:"entity_f1" db:"entity_f1" json:"entity_f1"`
	Timestamp   string  `csv:"timestamp" db:"timestamp" json:"timestamp"`
}

// Sink stores round records.
type Sink interface {
	Write(r Record) error
	Close() error
}

// CSVSink appends records to a CSV file, writing the header only when the
// file is new or empty.
type CSVSink struct {
	fs   afero.Fs
	path string
}

// NewCSVSink returns a sink appending to path on fs.
func NewCSVSink(fs afero.Fs, path string) *CSVSink {
	return &CSVSink{fs: fs, path: path}
}

// Write implements Sink.
func (s *CSVSink) Write(r Record) (err error) {
	f, err := s.fs.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return errors.Wrapf(err, "error opening history %s", s.path)
	}
	defer errors.Defer(&err, f.Close)

	info, err := f.Stat()
	if err != nil {
		return err
	}
	records := []Record{r}
	if info.Size() == 0 {
		return gocsv.Marshal(records, f)
	}
	return gocsv.MarshalWithoutHeaders(records, f)
}

// Close implements Sink.
func (s *CSVSink) Close() error {
	return nil
}

// ReadCSV loads all records from a CSV history.
func ReadCSV(fs afero.Fs, path string) ([]Record, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening history %s", path)
	}
	defer f.Close()

	var records []Record
	if err := gocsv.Unmarshal(f, &records); err != nil {
		return nil, errors.Wrapf(err, "error parsing history %s", path)
	}
	return records, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS rounds (
	run_id TEXT NOT NULL,
	round INTEGER NOT NULL,
	train_size INTEGER NOT NULL,
	added INTEGER NOT NULL,
	informative_total INTEGER NOT NULL,
	confident_total INTEGER NOT NULL,
	micro_f1 REAL NOT NULL,
	entity_f1 REAL NOT NULL,
	timestamp TEXT NOT NULL,
	PRIMARY KEY (run_id, round)
)`

// SQLiteSink stores records in the rounds table of a SQLite database.
type SQLiteSink struct {
	db *sqlx.DB
}

// NewSQLiteSink opens (creating if needed) the database at dsn.
func NewSQLiteSink(dsn string) (*SQLiteSink, error) {
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening history db %s", dsn)
	}
	// a single connection keeps ":memory:" databases alive across calls
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "error creating rounds table")
	}
	return &SQLiteSink{db: db}, nil
}

// Write implements Sink.
func (s *SQLiteSink) Write(r Record) error {
	_, err := s.db.NamedExec(`INSERT OR REPLACE INTO rounds
		(run_id, round, train_size, added, informative_total, confident_total, micro_f1, entity_f1, timestamp)
		VALUES (:run_id, :round, :train_size, :added, :informative_total, :confident_total, :micro_f1, :entity_f1, :timestamp)`, r)
	return errors.WrapfOrNil(err, "error inserting round %d", r.Round)
}

// Records returns the rounds of a run in order.
func (s *SQLiteSink) Records(runID string) ([]Record, error) {
	var records []Record
	err := s.db.Select(&records, `SELECT * FROM rounds WHERE run_id = ? ORDER BY round`, runID)
	return records, errors.WrapfOrNil(err, "error reading rounds of %s", runID)
}

// Close implements Sink.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

type multi []Sink

// Multi fans records out to every sink; nil sinks are skipped.
func Multi(sinks ...Sink) Sink {
	var m multi
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	return m
}

func (m multi) Write(r Record) error {
	var err error
	for _, s := range m {
		err = errors.Combine(err, s.Write(r))
	}
	return err
}

func (m multi) Close() error {
	var err error
	for _, s := range m {
		err = errors.Combine(err, s.Close())
	}
	return err
}
