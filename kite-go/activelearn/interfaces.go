package activelearn

import "context"

// Tagger is a trainable sequence tagger.
type Tagger interface {
	// Fit retrains the tagger in place on the full training set.
	Fit(ctx context.Context, train []Sentence) error
	// Predict returns one label sequence per word sequence.
	Predict(words [][]string) ([][]string, error)
	// ProbabilityPerSentence returns the tagger's confidence in its
	// prediction for each word sequence, parallel to Predict.
	ProbabilityPerSentence(words [][]string) ([]float64, error)
}

// Similarity scores normalized tokens against the corpus it was trained on.
// Score must be safe for concurrent use.
type Similarity interface {
	Score(normalized []string) (float64, error)
}

// Trainable is implemented by similarity scorers that can be rebuilt from a
// corpus of normalized token sequences.
type Trainable interface {
	Train(corpus [][]string) error
}

// Preprocessor turns sentences into tagger input and similarity input.
type Preprocessor interface {
	// Tokens returns the raw words of s, order-preserving.
	Tokens(s Sentence) []string
	// Normalize prepares words for similarity scoring without modifying them.
	Normalize(words []string) []string
}

// Store reads and writes lists of sentences. Write fully replaces the
// destination.
type Store interface {
	Read(path string) ([]Sentence, error)
	Write(path string, sentences []Sentence) error
}

// Annotator supplies labels for sentences selected as informative. It must
// return one sentence per input, each with as many tokens as its input.
type Annotator interface {
	Annotate(ctx context.Context, sentences []Sentence) ([]Sentence, error)
}

// Oracle is the Annotator for offline simulation: the stream already carries
// gold labels, so selected sentences are returned unchanged.
type Oracle struct{}

// Annotate implements Annotator.
func (Oracle) Annotate(ctx context.Context, sentences []Sentence) ([]Sentence, error) {
	return sentences, nil
}
