package main

import (
	"fmt"
	"io"
	"log"

	arg "github.com/alexflint/go-arg"
	"github.com/kiteco/activeself/kite-go/activelearn/history"
	"github.com/kiteco/activeself/kite-golib/errors"
	"github.com/kiteco/activeself/kite-golib/fileutil"
	"github.com/spf13/afero"
	chart "github.com/wcharczuk/go-chart"
)

func fail(err error) {
	if err != nil {
		log.Fatalln(err)
	}
}

// plot renders micro and entity F1 against the round index as a PNG.
func plot(records []history.Record, title string, w io.Writer) error {
	if len(records) < 2 {
		return errors.Errorf("need at least 2 rounds to plot, got %d", len(records))
	}

	var rounds, micro, entity []float64
	var ticks []chart.Tick
	for _, r := range records {
		rounds = append(rounds, float64(r.Round))
		micro = append(micro, r.MicroF1)
		entity = append(entity, r.EntityF1)
		ticks = append(ticks, chart.Tick{
			Value: float64(r.Round),
			Label: fmt.Sprintf("%d (%d)", r.Round, r.TrainSize),
		})
	}

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    "token micro F1",
			XValues: rounds,
			YValues: micro,
			Style: chart.Style{
				Show:        true,
				StrokeColor: chart.ColorBlue,
			},
		},
		chart.ContinuousSeries{
			Name:    "entity F1",
			XValues: rounds,
			YValues: entity,
			Style: chart.Style{
				Show:        true,
				StrokeColor: chart.ColorRed,
			},
		},
	}

	graph := chart.Chart{
		Title:      title,
		TitleStyle: chart.StyleShow(),
		XAxis: chart.XAxis{
			Name:      "Round (training set size)",
			NameStyle: chart.StyleShow(),
			Style:     chart.StyleShow(),
			Ticks:     ticks,
		},
		YAxis: chart.YAxis{
			Name:      "F1",
			NameStyle: chart.StyleShow(),
			Style:     chart.StyleShow(),
			Range: &chart.ContinuousRange{
				Min: 0,
				Max: 1,
			},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}
	return graph.Render(chart.PNG, w)
}

func main() {
	args := struct {
		History string `arg:"--history,required" help:"history CSV written by active-self-learning"`
		Out     string `arg:"--out" help:"PNG to write"`
		RunID   string `arg:"--run" help:"only plot this run"`
	}{
		Out: "learning-curve.png",
	}
	arg.MustParse(&args)

	fs := afero.NewOsFs()
	records, err := history.ReadCSV(fs, args.History)
	fail(err)

	if args.RunID != "" {
		var filtered []history.Record
		for _, r := range records {
			if r.RunID == args.RunID {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}

	title := "Learning curve"
	if args.RunID != "" {
		title = fmt.Sprintf("Learning curve (run %s)", args.RunID)
	}

	f, err := fileutil.NewBufferedWriter(fs, args.Out)
	fail(err)
	fail(plot(records, title, f))
	fail(f.Close())

	log.Printf("plotted %d rounds to %s", len(records), args.Out)
}
