package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStem(t *testing.T) {
	test := []string{"lane", "parsing", "parse", "cookies", "beautiful", "creating", "constructing", "setting"}
	test = Stem(test)
	exp := []string{"lane", "pars", "pars", "cooki", "beauti", "creat", "construct", "set"}
	assert.Equal(t, exp, test)
}

func TestSimilarityProcessorKeepsInput(t *testing.T) {
	in := Tokens{"The", "Senators", "met", "in", "Lisbon", "."}
	out := SimilarityProcessor.Apply(in)

	assert.Equal(t, Tokens{"senat", "met", "lisbon"}, out)
	assert.Equal(t, Tokens{"The", "Senators", "met", "in", "Lisbon", "."}, in)
}

func TestCleanTokens(t *testing.T) {
	test := Tokens{"<go>", "\"python\"", "path))", ",", "U.S.", "e-mail"}
	exp := Tokens{"go", "python", "path", "U.S", "e-mail"}
	assert.Equal(t, exp, CleanTokens(test))
}

func TestRemoveStopWords(t *testing.T) {
	test := Tokens{"i", "he", "visited", "weren't", "paris"}
	assert.Equal(t, Tokens{"visited", "paris"}, RemoveStopWords(test))
}

func TestIsPunctuation(t *testing.T) {
	assert.True(t, IsPunctuation("."))
	assert.True(t, IsPunctuation("--"))
	assert.True(t, IsPunctuation("$"))
	assert.False(t, IsPunctuation("a."))
	assert.False(t, IsPunctuation(""))
}

func TestLowerCase(t *testing.T) {
	test := Tokens{"GO", "THERE"}
	assert.Equal(t, Tokens{"go", "there"}, Lower(test))
}

func TestSpaceTokenizer(t *testing.T) {
	doc := "this  is a string\twith spaces   "
	tokenizer := SpaceTokenizer{}
	exp := Tokens{"this", "is", "a", "string", "with", "spaces"}
	assert.Equal(t, exp, tokenizer.Tokenize(doc))
}
