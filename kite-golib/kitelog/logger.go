package kitelog

import (
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"

	"github.com/kiteco/activeself/kite-golib/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var flags = log.LstdFlags | log.Lmicroseconds

// Basic logs to stderr without a run prefix. Packages fall back to it when
// no Logger is injected.
var Basic = New(os.Stderr, "", false)

// Discard drops everything; useful in tests.
var Discard = New(ioutil.Discard, "", true)

// Logger encapsulates multiple logging handlers: a line-oriented logger for
// humans and a JSON event logger for tooling, both writing to the same sink.
type Logger struct {
	Default    *log.Logger
	Structured *zap.Logger
	Durations  Durations

	debug  bool
	closer io.Closer
}

// Interface encapsulates the relevant methods of log.Logger
type Interface interface {
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}

// New returns a Logger writing to w. A non-empty runID is added as a line
// prefix and as a field on every structured event.
func New(w io.Writer, runID string, debug bool) *Logger {
	prefix := ""
	if runID != "" {
		prefix = fmt.Sprintf("[run=%s] ", runID)
	}

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	config := zap.NewProductionEncoderConfig()
	config.EncodeTime = zapcore.RFC3339TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(config), zapcore.Lock(zapcore.AddSync(w)), level)
	structured := zap.New(core)
	if runID != "" {
		structured = structured.With(zap.String("run", runID))
	}

	return &Logger{
		Default:    log.New(w, prefix, flags),
		Structured: structured,
		debug:      debug,
	}
}

// Open returns a Logger for the given destination. An empty destination
// means stderr; otherwise the file is opened for appending.
func Open(dest, runID string, debug bool) (*Logger, error) {
	if dest == "" {
		return New(os.Stderr, runID, debug), nil
	}
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening log file %s", dest)
	}
	l := New(f, runID, debug)
	l.closer = f
	return l, nil
}

// Printf implements Interface
func (l *Logger) Printf(format string, v ...interface{}) {
	l.Default.Output(2, fmt.Sprintf(format, v...))
}

// Println implements Interface
func (l *Logger) Println(v ...interface{}) {
	l.Default.Output(2, fmt.Sprintln(v...))
}

// Debugf logs only when the Logger was created in debug mode.
func (l *Logger) Debugf(format string, v ...interface{}) {
	if !l.debug {
		return
	}
	l.Default.Output(2, fmt.Sprintf(format, v...))
}

// Event emits a structured event at info level.
func (l *Logger) Event(msg string, fields ...zap.Field) {
	l.Structured.Info(msg, fields...)
}

// Close flushes the structured logger and closes the destination file, if any.
func (l *Logger) Close() error {
	// Sync on a terminal returns EINVAL on some platforms; only the file close matters.
	l.Structured.Sync()
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
