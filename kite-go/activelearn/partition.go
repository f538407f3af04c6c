package activelearn

import "github.com/kiteco/activeself/kite-golib/errors"

// Partition splits the stream into len(stream)/dataAdd contiguous batches.
// Batch sizes differ by at most one; the first len(stream)%k batches take the
// extra element, so no element is dropped. The batches alias the stream but
// cannot be appended into it.
func Partition(stream []Sentence, dataAdd int) ([][]Sentence, error) {
	k, err := NumBatches(len(stream), dataAdd)
	if err != nil {
		return nil, err
	}

	size, rem := len(stream)/k, len(stream)%k
	batches := make([][]Sentence, 0, k)
	var start int
	for i := 0; i < k; i++ {
		end := start + size
		if i < rem {
			end++
		}
		batches = append(batches, stream[start:end:end])
		start = end
	}
	return batches, nil
}

// NumBatches returns the number of batches a stream of n sentences is split
// into, or a config error if that number is zero.
func NumBatches(n, dataAdd int) (int, error) {
	if dataAdd <= 0 {
		return 0, errors.ConfigErrorf("data_add must be positive, got %d", dataAdd)
	}
	k := n / dataAdd
	if k == 0 {
		return 0, errors.ConfigErrorf("data_add %d exceeds stream length %d", dataAdd, n)
	}
	return k, nil
}
