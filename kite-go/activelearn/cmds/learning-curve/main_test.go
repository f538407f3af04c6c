package main

import (
	"bytes"
	"testing"

	"github.com/kiteco/activeself/kite-go/activelearn/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlot(t *testing.T) {
	records := []history.Record{
		{Round: 1, TrainSize: 120, MicroF1: 0.61, EntityF1: 0.52},
		{Round: 2, TrainSize: 160, MicroF1: 0.66, EntityF1: 0.58},
		{Round: 3, TrainSize: 190, MicroF1: 0.70, EntityF1: 0.61},
	}

	var buf bytes.Buffer
	require.NoError(t, plot(records, "test", &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))

	assert.Error(t, plot(records[:1], "test", &buf))
}
