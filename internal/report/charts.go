package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/okian/salesdash/internal/domain/aggregate"
	"github.com/okian/salesdash/internal/domain/types"
)

// Palette is the fixed category color cycle.
var Palette = []string{ //nolint:gochecknoglobals // fixed palette
	"#3584BB", "#FF8C26", "#4CAF50", "#A259FF", "#FF5C8A",
	"#FFD600", "#00B8D9", "#FF5630", "#36B37E", "#B47CFF",
	"#FFAB00", "#FF8B94", "#6A4C93", "#43AA8B", "#F3722C",
}

// Color returns the palette entry of the i-th category, cycling past the end.
func Color(i int) string {
	if i < 0 {
		i = -i
	}
	return Palette[i%len(Palette)]
}

// Segment is one category's slice of a stacked bar.
type Segment struct {
	Category string
	Color    string
	types.SeriesPoint
}

// Bar is the stacked bar of one quarter.
type Bar struct {
	Quarter  string
	Total    types.QuarterTotal
	Segments []Segment
}

// Bars returns one stacked bar per quarter with segments in category order.
func Bars(s *aggregate.Summary) []Bar {
	if s.Empty() {
		return []Bar{}
	}
	bars := make([]Bar, len(s.Quarters))
	for i, q := range s.Quarters {
		b := Bar{Quarter: q, Total: s.Totals[q], Segments: make([]Segment, len(s.Categories))}
		for j, c := range s.Categories {
			b.Segments[j] = Segment{Category: c, Color: Color(j), SeriesPoint: s.Series(c)[i]}
		}
		bars[i] = b
	}
	return bars
}

// Slice is one category's share of the grand total.
type Slice struct {
	Category string
	Color    string
	Total    types.CategoryTotal
	Percent  int64
}

// Donut returns the per-category slices and the grand total ACV.
func Donut(s *aggregate.Summary) ([]Slice, decimal.Decimal) {
	grand := decimal.Zero
	if s.Empty() {
		return []Slice{}, grand
	}
	for _, c := range s.Categories {
		grand = grand.Add(s.TotalsByCategory[c].ACV)
	}
	slices := make([]Slice, len(s.Categories))
	for i, c := range s.Categories {
		ct := s.TotalsByCategory[c]
		slices[i] = Slice{Category: c, Color: Color(i), Total: ct, Percent: aggregate.Percent(ct.ACV, grand)}
	}
	return slices, grand
}

// WriteBars draws each quarter's stack as horizontal text bars scaled to width
// characters for the largest quarter.
func WriteBars(w io.Writer, s *aggregate.Summary, width int) error {
	bars := Bars(s)
	maxACV := decimal.Zero
	for _, b := range bars {
		if b.Total.ACV.GreaterThan(maxACV) {
			maxACV = b.Total.ACV
		}
	}
	var sb strings.Builder
	for _, b := range bars {
		fmt.Fprintf(&sb, "%s  %s\n", b.Quarter, ShortenCurrency(b.Total.ACV))
		for _, seg := range b.Segments {
			fmt.Fprintf(&sb, "  %-24s %s %s (%s)\n",
				seg.Category, barOf(seg.ACV, maxACV, width), ShortenCurrency(seg.ACV), FormatPercent(seg.Percent))
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteDonut lists the donut slices under the grand total.
func WriteDonut(w io.Writer, s *aggregate.Summary) error {
	slices, grand := Donut(s)
	var sb strings.Builder
	fmt.Fprintf(&sb, "Total %s\n", FormatCurrency(grand))
	for _, sl := range slices {
		fmt.Fprintf(&sb, "  %-24s %5s  %s\n", sl.Category, FormatPercent(sl.Percent), FormatCurrency(sl.Total.ACV))
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func barOf(v, maxACV decimal.Decimal, width int) string {
	if width <= 0 || maxACV.Sign() <= 0 || v.Sign() <= 0 {
		return ""
	}
	n := v.Mul(decimal.NewFromInt(int64(width))).Div(maxACV).Round(0).IntPart()
	if n == 0 {
		n = 1
	}
	return strings.Repeat("#", int(n))
}
