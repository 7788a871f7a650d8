// Package report renders the results page: one row per card with its raw and
// decayed counts and the posterior it implies.
package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"

	"github.com/conorfennell/flashbeta/internal/domain"
	"github.com/conorfennell/flashbeta/internal/recall"
)

// Row is the scored view of one card.
type Row struct {
	Label             string
	Slug              string
	Successes         int
	Failures          int
	WeightedSuccesses float64
	WeightedFailures  float64
	Mean              float64
}

// Rows scores every card at now, weakest posterior mean first. Cards the
// scorer cannot score are left out.
func Rows(cards domain.Collection, now time.Time, scorer *recall.Scorer) ([]Row, error) {
	scored, err := scorer.Score(cards, now)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(scored))
	for _, sc := range scored {
		c, p := sc.Card, sc.Posterior
		rows = append(rows, Row{
			Label:             c.Label(),
			Slug:              c.Slug,
			Successes:         c.Successes(),
			Failures:          c.Failures(),
			WeightedSuccesses: p.Alpha - 1,
			WeightedFailures:  p.Beta - 1,
			Mean:              p.Mean(),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Mean < rows[j].Mean
	})
	return rows, nil
}

// Render writes rows as a table. Terminals get box-drawing borders; pipes
// get plain ASCII.
func Render(w io.Writer, rows []Row) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	if isTerminal(w) {
		t.SetStyle(table.StyleLight)
	} else {
		t.SetStyle(table.StyleDefault)
	}
	t.AppendHeader(table.Row{"Card", "Slug", "Pass", "Fail", "Weighted pass", "Weighted fail", "Recall"})
	for _, r := range rows {
		t.AppendRow(table.Row{
			r.Label,
			r.Slug,
			r.Successes,
			r.Failures,
			fmt.Sprintf("%.3f", r.WeightedSuccesses),
			fmt.Sprintf("%.3f", r.WeightedFailures),
			fmt.Sprintf("%.0f%%", r.Mean*100),
		})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d cards", len(rows))})
	t.Render()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
