package tfidf

import "math"

// TFCounter keeps the term-frequency weight of each term of one document.
type TFCounter struct {
	// Scores maps a term to its raw count in the document.
	Scores map[string]int
	// ShortType selects augmented frequency (0.5 + 0.5*count/maxCount) instead
	// of relative frequency (count/total).
	ShortType bool

	max   int
	total int
}

// TrainTFCounter builds a TFCounter from term counts.
func TrainTFCounter(shortType bool, counts map[string]int) *TFCounter {
	c := &TFCounter{
		Scores:    make(map[string]int, len(counts)),
		ShortType: shortType,
	}
	for term, n := range counts {
		if n <= 0 {
			continue
		}
		c.Scores[term] = n
		c.total += n
		if n > c.max {
			c.max = n
		}
	}
	return c
}

// Weight returns the tf weight of term, 0 if the term is absent.
func (c *TFCounter) Weight(term string) float64 {
	n, ok := c.Scores[term]
	if !ok {
		return 0
	}
	if c.ShortType {
		return 0.5 + 0.5*float64(n)/float64(c.max)
	}
	return float64(n) / float64(c.total)
}

// IDFCounter keeps the inverse-document-frequency weight of each term.
type IDFCounter struct {
	NumDocs int
	// DocFreq maps a term to the number of documents containing it.
	DocFreq map[string]int
}

// TrainIDFCounter builds an IDFCounter from document frequencies.
func TrainIDFCounter(numDocs int, docFreq map[string]int) *IDFCounter {
	df := make(map[string]int, len(docFreq))
	for term, n := range docFreq {
		df[term] = n
	}
	return &IDFCounter{NumDocs: numDocs, DocFreq: df}
}

// Weight returns log10(N/df) for a known term and 0 otherwise.
func (c *IDFCounter) Weight(term string) float64 {
	n, ok := c.DocFreq[term]
	if !ok || n == 0 || c.NumDocs == 0 {
		return 0
	}
	return math.Log10(float64(c.NumDocs) / float64(n))
}
