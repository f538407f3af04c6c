// Package status publishes the progress of a running learner over HTTP.
package status

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
)

// Snapshot is the learner state at a point in time.
type Snapshot struct {
	RunID       string    `json:"run_id"`
	Method      string    `json:"method"`
	Batch       int       `json:"batch"`
	Batches     int       `json:"batches"`
	Round       int       `json:"round"`
	TrainSize   int       `json:"train_size"`
	CountData   int       `json:"count_data"`
	Informative int       `json:"informative_total"`
	Confident   int       `json:"confident_total"`
	MicroF1     float64   `json:"micro_f1"`
	EntityF1    float64   `json:"entity_f1"`
	Done        bool      `json:"done"`
	Updated     time.Time `json:"updated"`
}

// Board holds the latest snapshot. The zero value is ready to use and a nil
// *Board ignores updates.
type Board struct {
	m    sync.RWMutex
	snap Snapshot
}

// Publish replaces the current snapshot.
func (b *Board) Publish(s Snapshot) {
	b.Update(func(cur *Snapshot) { *cur = s })
}

// Update applies f to the current snapshot under the lock.
func (b *Board) Update(f func(*Snapshot)) {
	if b == nil {
		return
	}
	b.m.Lock()
	defer b.m.Unlock()
	f(&b.snap)
	b.snap.Updated = time.Now()
}

// Snapshot returns a copy of the current state.
func (b *Board) Snapshot() Snapshot {
	if b == nil {
		return Snapshot{}
	}
	b.m.RLock()
	defer b.m.RUnlock()
	return b.snap
}

// Handler serves /status and /healthz for the board.
func Handler(b *Board) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/status", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(b.Snapshot()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}).Methods("GET")
	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	}).Methods("GET")
	return r
}
