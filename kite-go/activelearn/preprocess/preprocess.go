// Package preprocess turns sentences into tagger and similarity input.
package preprocess

import (
	"github.com/kiteco/activeself/kite-go/activelearn"
	"github.com/kiteco/activeself/kite-golib/text"
)

var unstemmed = text.NewProcessor(text.Lower, text.CleanTokens, text.RemoveStopWords)

// Adapter implements activelearn.Preprocessor.
type Adapter struct {
	proc *text.Processor
}

// New returns an Adapter. With stem set, normalized tokens are also reduced
// to their Porter stems; embedding lookups want the surface form instead.
func New(stem bool) *Adapter {
	if stem {
		return &Adapter{proc: text.SimilarityProcessor}
	}
	return &Adapter{proc: unstemmed}
}

// Tokens implements activelearn.Preprocessor.
func (a *Adapter) Tokens(s activelearn.Sentence) []string {
	return s.Words()
}

// Normalize implements activelearn.Preprocessor. It lower cases words, strips
// punctuation and drops stop words, leaving words untouched.
func (a *Adapter) Normalize(words []string) []string {
	return []string(a.proc.Apply(text.Tokens(words)))
}
