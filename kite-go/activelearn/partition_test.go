package activelearn

import (
	"fmt"
	"testing"

	"github.com/kiteco/activeself/kite-golib/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stream(n int) []Sentence {
	out := make([]Sentence, n)
	for i := range out {
		out[i] = sent(fmt.Sprintf("s%d", i))
	}
	return out
}

func TestPartition(t *testing.T) {
	cases := []struct {
		n, dataAdd int
		sizes      []int
	}{
		{10, 5, []int{5, 5}},
		{11, 5, []int{6, 5}},
		{7, 3, []int{4, 3}},
		{13, 4, []int{5, 4, 4}},
		{5, 5, []int{5}},
		{9, 1, []int{1, 1, 1, 1, 1, 1, 1, 1, 1}},
		{14, 3, []int{4, 4, 3, 3}},
	}

	for _, c := range cases {
		s := stream(c.n)
		batches, err := Partition(s, c.dataAdd)
		require.NoError(t, err, "n=%d dataAdd=%d", c.n, c.dataAdd)
		require.Len(t, batches, c.n/c.dataAdd)

		var sizes []int
		var joined []Sentence
		for _, b := range batches {
			sizes = append(sizes, len(b))
			joined = append(joined, b...)
		}
		assert.Equal(t, c.sizes, sizes, "n=%d dataAdd=%d", c.n, c.dataAdd)
		assert.Equal(t, s, joined, "batches must reconstruct the stream")
	}
}

func TestPartitionDoesNotAlias(t *testing.T) {
	s := stream(4)
	batches, err := Partition(s, 2)
	require.NoError(t, err)

	first := append(batches[0], sent("extra"))
	assert.Len(t, first, 3)
	assert.Equal(t, sent("s2"), s[2])
}

func TestPartitionConfigErrors(t *testing.T) {
	_, err := Partition(stream(3), 5)
	require.Error(t, err)
	assert.True(t, errors.IsConfig(err))

	_, err = Partition(stream(3), 0)
	require.Error(t, err)
	assert.True(t, errors.IsConfig(err))

	_, err = Partition(nil, 1)
	require.Error(t, err)
	assert.True(t, errors.IsConfig(err))
}

func TestNumBatches(t *testing.T) {
	k, err := NumBatches(10, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, k)

	k, err = NumBatches(14, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, k)

	_, err = NumBatches(3, 100)
	assert.True(t, errors.IsConfig(err))

	_, err = NumBatches(3, -1)
	assert.True(t, errors.IsConfig(err))
}
