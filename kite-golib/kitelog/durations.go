package kitelog

import (
	"bytes"
	"fmt"
	"text/tabwriter"
	"time"
)

type duration struct {
	name     string
	duration time.Duration
}

// Durations tracks named durations, e.g. the phases of a retrain cycle.
type Durations []duration

// Record records a duration
func (t *Durations) Record(name string, d time.Duration) {
	*t = append(*t, duration{name, d})
}

// Time runs f and records how long it took, returning f's error.
func (t *Durations) Time(name string, f func() error) error {
	start := time.Now()
	err := f()
	t.Record(name, time.Since(start))
	return err
}

// Flush writes the recorded durations as an aligned table and clears them.
func (t *Durations) Flush(i Interface) {
	if len(*t) == 0 {
		return
	}
	var b bytes.Buffer
	tw := tabwriter.NewWriter(&b, 4, 4, 0, ' ', 0)
	for _, entry := range *t {
		fmt.Fprintf(tw, "   %s\t%s\n", entry.name, entry.duration)
	}
	tw.Flush()

	i.Println(b.String())
	*t = nil
}
