package activelearn

import "github.com/kiteco/activeself/kite-golib/errors"

// Outside is the tag for tokens outside any entity. It is also the label
// given to tokens of unlabeled input.
const Outside = "O"

// Token is a word and its tag.
type Token struct {
	Word  string `json:"word"`
	Label string `json:"label"`
}

// Sentence is an ordered sequence of tokens.
type Sentence []Token

// NewSentence zips words and labels into a Sentence.
func NewSentence(words, labels []string) (Sentence, error) {
	if len(words) != len(labels) {
		return nil, errors.ShapeErrorf("%d words but %d labels", len(words), len(labels))
	}
	s := make(Sentence, len(words))
	for i := range words {
		s[i] = Token{Word: words[i], Label: labels[i]}
	}
	return s, nil
}

// Words returns the words of the sentence in order.
func (s Sentence) Words() []string {
	words := make([]string, len(s))
	for i, t := range s {
		words[i] = t.Word
	}
	return words
}

// Labels returns the labels of the sentence in order.
func (s Sentence) Labels() []string {
	labels := make([]string, len(s))
	for i, t := range s {
		labels[i] = t.Label
	}
	return labels
}

// Relabel returns a copy of the sentence carrying the given labels.
func (s Sentence) Relabel(labels []string) (Sentence, error) {
	return NewSentence(s.Words(), labels)
}

// Words returns the word sequences of sentences.
func Words(sentences []Sentence) [][]string {
	out := make([][]string, len(sentences))
	for i, s := range sentences {
		out[i] = s.Words()
	}
	return out
}

// Labels returns the label sequences of sentences.
func Labels(sentences []Sentence) [][]string {
	out := make([][]string, len(sentences))
	for i, s := range sentences {
		out[i] = s.Labels()
	}
	return out
}
