package similarity

import (
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/kiteco/activeself/kite-golib/errors"
)

const defaultCacheSize = 4096

// SentenceVectors represents each sentence as the mean of its word
// embeddings and scores a query by its best cosine similarity with any
// training sentence. Sentences without a known word score 0.
type SentenceVectors struct {
	vectors *Vectors
	cache   *lru.Cache

	m       sync.RWMutex
	corpus  [][]float64
	trained bool
}

// NewSentenceVectors returns an untrained scorer over vectors.
func NewSentenceVectors(vectors *Vectors, cacheSize int) (*SentenceVectors, error) {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, errors.Wrapf(err, "error creating score cache")
	}
	return &SentenceVectors{vectors: vectors, cache: cache}, nil
}

// Train replaces the corpus and drops memoized scores.
func (s *SentenceVectors) Train(corpus [][]string) error {
	vecs := make([][]float64, 0, len(corpus))
	for _, words := range corpus {
		if v := s.vectors.mean(words); v != nil {
			vecs = append(vecs, v)
		}
	}

	s.m.Lock()
	defer s.m.Unlock()
	s.corpus = vecs
	s.trained = true
	s.cache.Purge()
	return nil
}

// Score returns the best cosine similarity, clamped to [0, 1].
func (s *SentenceVectors) Score(normalized []string) (float64, error) {
	s.m.RLock()
	defer s.m.RUnlock()
	if !s.trained {
		return 0, errors.Errorf("word2vec scorer is not trained")
	}

	key := strings.Join(normalized, " ")
	if score, ok := s.cache.Get(key); ok {
		return score.(float64), nil
	}

	var best float64
	if q := s.vectors.mean(normalized); q != nil {
		for _, doc := range s.corpus {
			if sim := dot(q, doc); sim > best {
				best = sim
			}
		}
	}
	best = clamp(best)
	s.cache.Add(key, best)
	return best, nil
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
