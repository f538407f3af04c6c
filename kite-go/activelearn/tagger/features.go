package tagger

import (
	"strings"
	"unicode"

	"github.com/kiteco/activeself/kite-golib/text"
)

const (
	startWord = "<s>"
	endWord   = "</s>"
)

// tokenFeatures returns the observation features of words[i].
func tokenFeatures(words []string, i int) []string {
	w := words[i]
	lw := strings.ToLower(w)
	runes := []rune(lw)

	feats := []string{
		"bias",
		"w=" + w,
		"lw=" + lw,
		"suf3=" + string(runes[max(0, len(runes)-3):]),
		"pre3=" + string(runes[:min(3, len(runes))]),
		"shape=" + shape(w),
	}
	if isTitle(w) {
		feats = append(feats, "title")
	}
	if isUpper(w) {
		feats = append(feats, "upper")
	}
	if isDigits(w) {
		feats = append(feats, "digit")
	}
	if text.IsPunctuation(w) {
		feats = append(feats, "punct")
	}

	prev, next := startWord, endWord
	if i > 0 {
		prev = strings.ToLower(words[i-1])
	}
	if i < len(words)-1 {
		next = strings.ToLower(words[i+1])
	}
	feats = append(feats, "prev="+prev, "next="+next, "prev+w="+prev+"|"+lw)
	return feats
}

// shape maps letters to x/X and digits to d, collapsing repeats: "McDo99" -> "XxXxd".
func shape(w string) string {
	var b strings.Builder
	var last rune
	for _, r := range w {
		var c rune
		switch {
		case unicode.IsUpper(r):
			c = 'X'
		case unicode.IsLetter(r):
			c = 'x'
		case unicode.IsDigit(r):
			c = 'd'
		default:
			c = r
		}
		if c != last {
			b.WriteRune(c)
			last = c
		}
	}
	return b.String()
}

func isTitle(w string) bool {
	for i, r := range w {
		if i == 0 {
			if !unicode.IsUpper(r) {
				return false
			}
			continue
		}
		if unicode.IsUpper(r) {
			return false
		}
	}
	return w != ""
}

func isUpper(w string) bool {
	var letters int
	for _, r := range w {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters > 1
}

func isDigits(w string) bool {
	for _, r := range w {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return w != ""
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
