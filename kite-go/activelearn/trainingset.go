package activelearn

// TrainingSet is the append-only list of labeled sentences the tagger is
// trained on. It has a single writer: the learner's loop.
type TrainingSet struct {
	sentences []Sentence
}

// NewTrainingSet seeds a training set with a copy of seed.
func NewTrainingSet(seed []Sentence) *TrainingSet {
	return &TrainingSet{sentences: append([]Sentence(nil), seed...)}
}

// Append adds sentences at the end.
func (t *TrainingSet) Append(sentences ...Sentence) {
	t.sentences = append(t.sentences, sentences...)
}

// Len returns the number of sentences.
func (t *TrainingSet) Len() int {
	return len(t.sentences)
}

// Sentences returns the sentences in insertion order. The returned slice is
// a copy; the sentences themselves are shared and must not be modified.
func (t *TrainingSet) Sentences() []Sentence {
	return append([]Sentence(nil), t.sentences...)
}

// Words returns the word sequences of the training set.
func (t *TrainingSet) Words() [][]string {
	return Words(t.sentences)
}

// Persist overwrites path with the full training set.
func (t *TrainingSet) Persist(store Store, path string) error {
	return store.Write(path, t.sentences)
}
