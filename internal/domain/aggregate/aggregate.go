// Package aggregate shapes flat sales records into the per-quarter and
// per-category aggregates consumed by charts and tables.
//
// Compute is pure: it never fails, never mutates its input and returns a
// fresh Summary on every call. Quarter and category order is first-seen order
// of the input, so identical input order always yields identical output.
package aggregate

import (
	"github.com/okian/salesdash/internal/domain/types"
)

// Summary is the immutable output of Compute.
type Summary struct {
	Quarters         []string                       `json:"quarters"`
	Categories       []string                       `json:"categories"`
	Totals           map[string]types.QuarterTotal  `json:"totals"`
	SeriesByCategory map[string][]types.SeriesPoint `json:"series_by_category"`
	TotalsByCategory map[string]types.CategoryTotal `json:"totals_by_category"`

	// Records is the number of input records folded into the summary.
	Records int `json:"records"`
	// Duplicates counts records that repeated an already seen (quarter, category) pair.
	Duplicates int `json:"duplicates"`
}

type cellKey struct {
	quarter  string
	category string
}

// Compute aggregates records. Duplicate (quarter, category) records are summed
// in every output, so Totals always reconcile with SeriesByCategory.
func Compute(records []types.SalesRecord) *Summary {
	s := &Summary{
		Quarters:         make([]string, 0),
		Categories:       make([]string, 0),
		Totals:           make(map[string]types.QuarterTotal),
		SeriesByCategory: make(map[string][]types.SeriesPoint),
		TotalsByCategory: make(map[string]types.CategoryTotal),
		Records:          len(records),
	}
	cells := make(map[cellKey]types.Total, len(records))

	for _, r := range records {
		qt, seenQuarter := s.Totals[r.Quarter]
		if !seenQuarter {
			s.Quarters = append(s.Quarters, r.Quarter)
		}
		s.Totals[r.Quarter] = qt.Add(r.Count, r.ACV)

		ct, seenCategory := s.TotalsByCategory[r.Category]
		if !seenCategory {
			s.Categories = append(s.Categories, r.Category)
		}
		s.TotalsByCategory[r.Category] = ct.Add(r.Count, r.ACV)

		key := cellKey{quarter: r.Quarter, category: r.Category}
		cell, dup := cells[key]
		if dup {
			s.Duplicates++
		}
		cells[key] = cell.Add(r.Count, r.ACV)
	}

	for _, c := range s.Categories {
		series := make([]types.SeriesPoint, len(s.Quarters))
		for i, q := range s.Quarters {
			cell := cells[cellKey{quarter: q, category: c}]
			series[i] = types.SeriesPoint{
				Quarter: q,
				Count:   cell.Count,
				ACV:     cell.ACV,
				Percent: Percent(cell.ACV, s.Totals[q].ACV),
			}
		}
		s.SeriesByCategory[c] = series
	}

	return s
}

// Empty reports whether the summary carries no data.
func (s *Summary) Empty() bool {
	return s == nil || len(s.Quarters) == 0
}

// Series returns the dense series of category c, or nil if c is unknown.
func (s *Summary) Series(c string) []types.SeriesPoint {
	if s == nil {
		return nil
	}
	return s.SeriesByCategory[c]
}
