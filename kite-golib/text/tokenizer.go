package text

import (
	"strings"
	"unicode"

	porterstemmer "github.com/kiteco/go-porterstemmer"
)

// TokenFunc defines a type of function that takes in an array of tokens and
// returns an array of tokens.
type TokenFunc func(Tokens) Tokens

// Tokens represents a slice of strings
type Tokens []string

// Processor consists of a list of text processing rules.
type Processor struct {
	filters []TokenFunc
}

// SimilarityProcessor prepares the words of a sentence for corpus similarity:
// 1) lower case
// 2) strip punctuation around tokens, dropping punctuation-only tokens
// 3) remove stop words
// 4) stem each token
var SimilarityProcessor = NewProcessor(Lower, CleanTokens, RemoveStopWords, Stem)

// NewProcessor takes a list of TokenFuncs to instantiate a Processor.
func NewProcessor(funcs ...TokenFunc) *Processor {
	return &Processor{filters: append([]TokenFunc(nil), funcs...)}
}

// Apply applies the list of TokenFunc to a copy of the input tokens; the
// caller's slice is never modified.
func (f *Processor) Apply(ts Tokens) Tokens {
	ts = append(Tokens(nil), ts...)
	for _, fn := range f.filters {
		ts = fn(ts)
	}
	return ts
}

// Lower converts all tokens to lower case
func Lower(ts Tokens) Tokens {
	for i, t := range ts {
		ts[i] = strings.ToLower(t)
	}
	return ts
}

// Stem extracts and returns the stems of each token in the input token stream
func Stem(ts Tokens) Tokens {
	for i, t := range ts {
		ts[i] = porterstemmer.StemString(t)
	}
	return ts
}

// CleanTokens strips punctuation from both ends of each token and drops
// tokens that end up empty. Inner punctuation ("U.S", "e-mail") is kept.
func CleanTokens(ts Tokens) Tokens {
	var clean Tokens
	for _, t := range ts {
		t = strings.TrimFunc(t, isPunctOrSymbol)
		if len(t) > 0 {
			clean = append(clean, t)
		}
	}
	return clean
}

// RemoveStopWords removes stop words from a token stream. Tokens are compared
// as-is, so apply Lower first.
func RemoveStopWords(ts Tokens) Tokens {
	var filteredTokens Tokens
	for _, t := range ts {
		if _, skip := stopWords[t]; !skip {
			filteredTokens = append(filteredTokens, t)
		}
	}
	return filteredTokens
}

// IsPunctuation returns true if every rune of tok is punctuation or a symbol.
func IsPunctuation(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if !isPunctOrSymbol(r) {
			return false
		}
	}
	return true
}

func isPunctOrSymbol(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r) || IsOperator(r)
}

// SpaceTokenizer splits a line on runs of whitespace.
type SpaceTokenizer struct{}

// Tokenize returns the whitespace-separated fields of doc.
func (st SpaceTokenizer) Tokenize(doc string) Tokens {
	return Tokens(strings.Fields(doc))
}

// IsOperator returns true if c is an operator.
func IsOperator(c rune) bool {
	switch c {
	case '+', '-', '/', '=', '>', '<', '*':
		return true
	}
	return false
}
