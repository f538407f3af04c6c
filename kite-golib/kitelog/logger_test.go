package kitelog

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPrintfPrefix(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "abc", false)
	l.Printf("round %d", 3)
	assert.Contains(t, buf.String(), "[run=abc] ")
	assert.Contains(t, buf.String(), "round 3")
}

func TestDebugf(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "", false).Debugf("hidden")
	assert.Empty(t, buf.String())

	New(&buf, "", true).Debugf("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestEvent(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "run-1", false)
	l.Event("round", zap.Int("round", 2), zap.Int("train_size", 40))

	var ev map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &ev))
	assert.Equal(t, "round", ev["msg"])
	assert.Equal(t, "run-1", ev["run"])
	assert.EqualValues(t, 2, ev["round"])
	assert.EqualValues(t, 40, ev["train_size"])
}

func TestOpenFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "kitelog")
	require.NoError(t, err)
	path := filepath.Join(dir, "run.log")

	l, err := Open(path, "", false)
	require.NoError(t, err)
	l.Println("started")
	require.NoError(t, l.Close())

	buf, err := ioutil.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(buf), "started")
}

func TestDurations(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "", false)

	var d Durations
	require.NoError(t, d.Time("fit", func() error { return nil }))
	d.Record("eval", time.Second)
	d.Flush(l)

	out := buf.String()
	assert.True(t, strings.Contains(out, "fit") && strings.Contains(out, "eval"))
	assert.Empty(t, d)
}
