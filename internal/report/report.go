// Package report turns an aggregated Summary into the pivot table, stacked
// bars and donut slices shown to users.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/okian/salesdash/internal/domain/aggregate"
	"github.com/okian/salesdash/internal/domain/grouping"
	"github.com/okian/salesdash/internal/domain/types"
)

// QuarterHeading labels the quarter header row of the pivot table.
const QuarterHeading = "Closed Fiscal Quarter"

// Column headings repeated under every quarter.
var cellHeadings = []string{"# of Opps", "ACV", "% of Total"} //nolint:gochecknoglobals // fixed headings

// Row is one line of the pivot table. Cells follow the summary's quarter order.
type Row struct {
	Label string
	Cells []types.SeriesPoint
}

// Table is the pivot table model: one row per category plus a Total row.
type Table struct {
	Title    string
	Quarters []string
	Rows     []Row
	Total    Row
}

// BuildTable lays out s for grouping g.
func BuildTable(g grouping.Grouping, s *aggregate.Summary) Table {
	t := Table{Title: g.Title()}
	if s.Empty() {
		return t
	}
	t.Quarters = s.Quarters
	t.Rows = make([]Row, 0, len(s.Categories))
	for _, c := range s.Categories {
		t.Rows = append(t.Rows, Row{Label: c, Cells: s.Series(c)})
	}
	t.Total = Row{Label: "Total", Cells: make([]types.SeriesPoint, len(s.Quarters))}
	for i, q := range s.Quarters {
		qt := s.Totals[q]
		t.Total.Cells[i] = types.SeriesPoint{Quarter: q, Count: qt.Count, ACV: qt.ACV, Percent: 100}
	}
	return t
}

// WriteTable renders the pivot table of s as aligned text.
func WriteTable(w io.Writer, g grouping.Grouping, s *aggregate.Summary) error {
	t := BuildTable(g, s)
	if len(t.Quarters) == 0 {
		_, err := fmt.Fprintf(w, "%s: no data\n", t.Title)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	head := []string{QuarterHeading}
	sub := []string{t.Title}
	for _, q := range t.Quarters {
		head = append(head, q, "", "")
		sub = append(sub, cellHeadings...)
	}
	writeLine(tw, head)
	writeLine(tw, sub)
	for _, r := range append(t.Rows, t.Total) {
		line := []string{r.Label}
		for _, p := range r.Cells {
			line = append(line, fmt.Sprint(p.Count), FormatCurrency(p.ACV), FormatPercent(p.Percent))
		}
		writeLine(tw, line)
	}
	return tw.Flush()
}

func writeLine(w io.Writer, cells []string) {
	_, _ = io.WriteString(w, strings.Join(cells, "\t")+"\t\n")
}
