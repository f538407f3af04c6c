package tfidf

import "math"

type posting struct {
	doc    int
	weight float64
}

// Scorer computes tfidf cosine similarities between a query and the documents
// of a corpus. Documents and queries are token slices that have already been
// normalized by the caller.
type Scorer struct {
	// Corpus holds the documents the scorer was trained on, by index.
	Corpus [][]string

	// IdfCounter is responsible for keeping inverse-doc-frequency (idf) weight of each word
	IdfCounter *IDFCounter

	// TfCounters stores the term-frequency weights for each word of each document
	TfCounters []*TFCounter
	ShortType  bool

	// Norm is the length of each document's vector in the tfidf space
	Norm []float64

	// postings maps a term to the documents containing it, with the
	// document-side tfidf weight precomputed.
	postings map[string][]posting
}

// TrainScorer takes a corpus and returns a trained Scorer.
func TrainScorer(docs [][]string, shortType bool) *Scorer {
	s := &Scorer{
		Corpus:     make([][]string, len(docs)),
		TfCounters: make([]*TFCounter, len(docs)),
		Norm:       make([]float64, len(docs)),
		ShortType:  shortType,
		postings:   make(map[string][]posting),
	}
	s.train(docs)
	return s
}

func (s *Scorer) train(docs [][]string) {
	docFreq := make(map[string]int)
	for id, doc := range docs {
		s.Corpus[id] = append([]string(nil), doc...)

		counts := termCounts(doc)
		s.TfCounters[id] = TrainTFCounter(s.ShortType, counts)
		for term := range counts {
			docFreq[term]++
		}
	}

	s.IdfCounter = TrainIDFCounter(len(docs), docFreq)

	for id, tfCounter := range s.TfCounters {
		var norm float64
		for term := range tfCounter.Scores {
			w := s.IdfCounter.Weight(term) * tfCounter.Weight(term)
			if w == 0 {
				continue
			}
			norm += w * w
			s.postings[term] = append(s.postings[term], posting{doc: id, weight: w})
		}
		s.Norm[id] = math.Sqrt(norm)
	}
}

// NumDocs returns the number of documents in the corpus.
func (s *Scorer) NumDocs() int {
	return len(s.Corpus)
}

// ComputeNorm computes the norm of the vector (represented by the given TFCounter)
// in the TFIDF space.
func (s *Scorer) ComputeNorm(tfCounter *TFCounter) float64 {
	var norm float64
	for q := range tfCounter.Scores {
		w := s.IdfCounter.Weight(q) * tfCounter.Weight(q)
		norm += w * w
	}
	return math.Sqrt(norm)
}

// QueryCounter builds the (short form) tf counter used for queries.
func QueryCounter(queryTokens []string) *TFCounter {
	return TrainTFCounter(true, termCounts(queryTokens))
}

// TFIDFScore returns the cosine similarity between the query and the doc
// identified by id in the TFIDF space. Unknown ids and empty vectors score 0.
func (s *Scorer) TFIDFScore(queryTokens []string, id int) float64 {
	if id < 0 || id >= len(s.Corpus) {
		return 0
	}
	queryCounter := QueryCounter(queryTokens)
	queryNorm := s.ComputeNorm(queryCounter)
	if queryNorm == 0 || s.Norm[id] == 0 {
		return 0
	}

	var score float64
	for qt := range queryCounter.Scores {
		idf := s.IdfCounter.Weight(qt)
		score += idf * queryCounter.Weight(qt) * idf * s.TfCounters[id].Weight(qt)
	}
	return score / (queryNorm * s.Norm[id])
}

// MaxTFIDFScore returns the highest cosine similarity between the query and
// any document, along with that document's id. It returns (0, -1) when the
// query shares no weighted term with the corpus.
func (s *Scorer) MaxTFIDFScore(queryTokens []string) (float64, int) {
	queryCounter := QueryCounter(queryTokens)
	queryNorm := s.ComputeNorm(queryCounter)
	if queryNorm == 0 {
		return 0, -1
	}

	dots := make(map[int]float64)
	for qt := range queryCounter.Scores {
		qw := s.IdfCounter.Weight(qt) * queryCounter.Weight(qt)
		if qw == 0 {
			continue
		}
		for _, p := range s.postings[qt] {
			dots[p.doc] += qw * p.weight
		}
	}

	best, bestID := 0.0, -1
	for id, dot := range dots {
		score := dot / (queryNorm * s.Norm[id])
		if score > best || (score == best && bestID >= 0 && id < bestID) {
			best, bestID = score, id
		}
	}
	return best, bestID
}

func termCounts(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	return counts
}
