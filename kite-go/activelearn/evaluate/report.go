// Package evaluate compares gold and predicted tag sequences.
package evaluate

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/kiteco/activeself/kite-golib/errors"
	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"
)

const outside = "O"

// Stats holds precision, recall and F1 for one label or an average.
type Stats struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Report is a classification report over BIO tags.
type Report struct {
	// Labels has token-level stats for every tag except O, ordered by entity
	// type and then B before I.
	Labels []Stats `json:"labels"`
	// Weighted averages Labels by support.
	Weighted Stats `json:"weighted"`
	// Micro pools the counts of Labels.
	Micro Stats `json:"micro"`
	// Macro is the unweighted mean of Labels.
	Macro Stats `json:"macro"`
	// Entity scores exact-match entity spans.
	Entity Stats `json:"entity"`

	Sentences int     `json:"sentences"`
	Tokens    int     `json:"tokens"`
	Accuracy  float64 `json:"accuracy"`
}

type counts struct {
	tp, fp, fn int
}

func (c counts) stats(label string) Stats {
	s := Stats{Label: label, Support: c.tp + c.fn}
	s.Precision = ratio(c.tp, c.tp+c.fp)
	s.Recall = ratio(c.tp, c.tp+c.fn)
	if s.Precision+s.Recall > 0 {
		s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
	}
	return s
}

// Evaluate builds a Report. gold and pred must have the same number of
// sentences, and each pair of sentences the same number of tags.
func Evaluate(gold, pred [][]string) (*Report, error) {
	if len(gold) != len(pred) {
		return nil, errors.ShapeErrorf("%d gold sentences but %d predicted", len(gold), len(pred))
	}
	for i := range gold {
		if len(gold[i]) != len(pred[i]) {
			return nil, errors.ShapeErrorf("sentence %d: %d gold tags but %d predicted", i, len(gold[i]), len(pred[i]))
		}
	}

	r := &Report{Sentences: len(gold)}
	perLabel := make(map[string]*counts)
	get := func(label string) *counts {
		c, ok := perLabel[label]
		if !ok {
			c = &counts{}
			perLabel[label] = c
		}
		return c
	}

	var correct int
	var entity counts
	for i := range gold {
		for j := range gold[i] {
			g, p := gold[i][j], pred[i][j]
			r.Tokens++
			if g == p {
				correct++
			}
			if g != outside {
				if g == p {
					get(g).tp++
				} else {
					get(g).fn++
				}
			}
			if p != outside && p != g {
				get(p).fp++
			}
		}

		goldSpans, predSpans := Spans(gold[i]), Spans(pred[i])
		matched := make(map[Span]bool, len(goldSpans))
		for _, s := range goldSpans {
			matched[s] = false
		}
		for _, s := range predSpans {
			if seen, ok := matched[s]; ok && !seen {
				matched[s] = true
				entity.tp++
			} else {
				entity.fp++
			}
		}
		for _, seen := range matched {
			if !seen {
				entity.fn++
			}
		}
	}
	r.Accuracy = ratio(correct, r.Tokens)

	labels := make([]string, 0, len(perLabel))
	for label := range perLabel {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		ti, pi := splitTag(labels[i])
		tj, pj := splitTag(labels[j])
		if ti != tj {
			return ti < tj
		}
		return pi < pj
	})

	var micro counts
	var precisions, recalls, f1s []float64
	var weighted Stats
	for _, label := range labels {
		c := *perLabel[label]
		s := c.stats(label)
		r.Labels = append(r.Labels, s)

		micro.tp += c.tp
		micro.fp += c.fp
		micro.fn += c.fn

		precisions = append(precisions, s.Precision)
		recalls = append(recalls, s.Recall)
		f1s = append(f1s, s.F1)

		weighted.Precision += s.Precision * float64(s.Support)
		weighted.Recall += s.Recall * float64(s.Support)
		weighted.F1 += s.F1 * float64(s.Support)
		weighted.Support += s.Support
	}

	r.Micro = micro.stats("micro avg")
	r.Entity = entity.stats("entities")

	r.Macro = Stats{Label: "macro avg", Support: weighted.Support}
	if len(labels) > 0 {
		r.Macro.Precision, _ = stats.Mean(precisions)
		r.Macro.Recall, _ = stats.Mean(recalls)
		r.Macro.F1, _ = stats.Mean(f1s)
	}

	r.Weighted = Stats{Label: "avg / total", Support: weighted.Support}
	if weighted.Support > 0 {
		n := float64(weighted.Support)
		r.Weighted.Precision = weighted.Precision / n
		r.Weighted.Recall = weighted.Recall / n
		r.Weighted.F1 = weighted.F1 / n
	}
	return r, nil
}

// String renders the report as a table.
func (r *Report) String() string {
	var b bytes.Buffer
	table := tablewriter.NewWriter(&b)
	table.SetHeader([]string{"label", "precision", "recall", "f1-score", "support"})
	table.SetBorder(false)
	table.SetColumnSeparator(" ")
	table.SetCenterSeparator(" ")
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	row := func(s Stats) []string {
		return []string{
			s.Label,
			fmt.Sprintf("%.2f", s.Precision),
			fmt.Sprintf("%.2f", s.Recall),
			fmt.Sprintf("%.2f", s.F1),
			fmt.Sprintf("%d", s.Support),
		}
	}
	for _, s := range r.Labels {
		table.Append(row(s))
	}
	table.Append([]string{"", "", "", "", ""})
	for _, s := range []Stats{r.Weighted, r.Micro, r.Macro, r.Entity} {
		table.Append(row(s))
	}
	table.Render()

	fmt.Fprintf(&b, "token accuracy %.4f over %d tokens in %d sentences\n", r.Accuracy, r.Tokens, r.Sentences)
	return b.String()
}

// Span is an entity occurrence: its type and the half-open token range.
type Span struct {
	Type       string
	Start, End int
}

// Spans extracts entity spans from BIO tags. An I- tag that does not continue
// an entity of the same type starts a new one.
func Spans(tags []string) []Span {
	var spans []Span
	var cur *Span
	closeSpan := func(end int) {
		if cur != nil {
			cur.End = end
			spans = append(spans, *cur)
			cur = nil
		}
	}
	for i, tag := range tags {
		typ, prefix := splitTag(tag)
		switch {
		case tag == outside || tag == "":
			closeSpan(i)
		case prefix == "I" && cur != nil && cur.Type == typ:
		default:
			closeSpan(i)
			cur = &Span{Type: typ, Start: i}
		}
	}
	closeSpan(len(tags))
	return spans
}

// splitTag splits "B-PER" into ("PER", "B"). Tags without a BIO prefix are
// their own type with prefix "B".
func splitTag(tag string) (typ, prefix string) {
	if len(tag) > 2 && tag[1] == '-' && strings.ContainsAny(tag[:1], "BIES") {
		return tag[2:], tag[:1]
	}
	return tag, "B"
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
