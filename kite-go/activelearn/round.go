package activelearn

// RoundState holds the counters of a run.
//
// CountData is the number of sentences added since the last retrain and is
// reset by StartRound. CountSim and CountProb are run totals of sentences
// added as informative and as confident pseudo-labels; they are never reset.
type RoundState struct {
	CountData int `json:"count_data"`
	CountSim  int `json:"count_sim"`
	CountProb int `json:"count_prob"`
	Round     int `json:"round"`
}

// Add records the sentences added by one batch.
func (r *RoundState) Add(informative, accepted int) {
	r.CountSim += informative
	r.CountProb += accepted
	r.CountData += informative + accepted
}

// ShouldRetrain reports whether enough sentences have accumulated, or the
// batch just processed was the last one.
func (r *RoundState) ShouldRetrain(dataAdd int, last bool) bool {
	return r.CountData >= dataAdd || last
}

// StartRound resets CountData and returns the new round index. It returns
// how many sentences the closing round added.
func (r *RoundState) StartRound() (round, added int) {
	added = r.CountData
	r.CountData = 0
	r.Round++
	return r.Round, added
}
