package tagger

import "math"

// Model holds the weights of a linear-chain tagger.
//
// Weights are laid out as [state | transition]. The state weight of feature
// f for label y is at f*L+y. The transition weight from label p to label y is
// at F*L+p*L+y, where p == L stands for the start of the sentence.
type Model struct {
	Labels   []string
	Features map[string]int
	Weights  []float64
}

func (m *Model) numLabels() int {
	return len(m.Labels)
}

func (m *Model) transOffset() int {
	return len(m.Features) * len(m.Labels)
}

func (m *Model) stateIndex(f, y int) int {
	return f*len(m.Labels) + y
}

func (m *Model) transIndex(p, y int) int {
	return m.transOffset() + p*len(m.Labels) + y
}

// featureIDs maps the features of every token to their ids, dropping
// features that were not seen in training.
func (m *Model) featureIDs(words []string) [][]int {
	ids := make([][]int, len(words))
	for i := range words {
		for _, f := range tokenFeatures(words, i) {
			if id, ok := m.Features[f]; ok {
				ids[i] = append(ids[i], id)
			}
		}
	}
	return ids
}

// emissions returns the state score of every label at every position.
func (m *Model) emissions(w []float64, feats [][]int) [][]float64 {
	L := m.numLabels()
	scores := make([][]float64, len(feats))
	for t, fs := range feats {
		scores[t] = make([]float64, L)
		for _, f := range fs {
			for y := 0; y < L; y++ {
				scores[t][y] += w[m.stateIndex(f, y)]
			}
		}
	}
	return scores
}

// viterbi returns the best label sequence and its score.
func (m *Model) viterbi(w []float64, feats [][]int) ([]int, float64) {
	T, L := len(feats), m.numLabels()
	if T == 0 {
		return nil, 0
	}
	emit := m.emissions(w, feats)

	delta := make([][]float64, T)
	back := make([][]int, T)
	for t := range delta {
		delta[t] = make([]float64, L)
		back[t] = make([]int, L)
	}
	for y := 0; y < L; y++ {
		delta[0][y] = w[m.transIndex(L, y)] + emit[0][y]
	}
	for t := 1; t < T; t++ {
		for y := 0; y < L; y++ {
			best, arg := math.Inf(-1), 0
			for p := 0; p < L; p++ {
				if s := delta[t-1][p] + w[m.transIndex(p, y)]; s > best {
					best, arg = s, p
				}
			}
			delta[t][y] = best + emit[t][y]
			back[t][y] = arg
		}
	}

	best, arg := math.Inf(-1), 0
	for y := 0; y < L; y++ {
		if delta[T-1][y] > best {
			best, arg = delta[T-1][y], y
		}
	}
	path := make([]int, T)
	path[T-1] = arg
	for t := T - 1; t > 0; t-- {
		path[t-1] = back[t][path[t]]
	}
	return path, best
}

// logPartition returns the log of the summed exponentiated scores of every
// label sequence.
func (m *Model) logPartition(w []float64, feats [][]int) float64 {
	T, L := len(feats), m.numLabels()
	if T == 0 {
		return 0
	}
	emit := m.emissions(w, feats)

	alpha := make([]float64, L)
	for y := 0; y < L; y++ {
		alpha[y] = w[m.transIndex(L, y)] + emit[0][y]
	}
	terms := make([]float64, L)
	for t := 1; t < T; t++ {
		next := make([]float64, L)
		for y := 0; y < L; y++ {
			for p := 0; p < L; p++ {
				terms[p] = alpha[p] + w[m.transIndex(p, y)]
			}
			next[y] = logSumExp(terms) + emit[t][y]
		}
		alpha = next
	}
	return logSumExp(alpha)
}

// confidence returns the probability of the best sequence under a
// log-linear reading of the scores.
func (m *Model) confidence(w []float64, feats [][]int) float64 {
	if len(feats) == 0 {
		return 1
	}
	_, best := m.viterbi(w, feats)
	p := math.Exp(best - m.logPartition(w, feats))
	if p > 1 {
		return 1
	}
	return p
}

func logSumExp(xs []float64) float64 {
	hi := math.Inf(-1)
	for _, x := range xs {
		if x > hi {
			hi = x
		}
	}
	if math.IsInf(hi, -1) {
		return hi
	}
	var sum float64
	for _, x := range xs {
		sum += math.Exp(x - hi)
	}
	return hi + math.Log(sum)
}
