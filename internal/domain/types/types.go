// Package types contains common types used across the application
package types

import "github.com/shopspring/decimal"

func init() { //nolint:gochecknoinits // ACV must serialise as a JSON number on every surface
	decimal.MarshalJSONWithoutQuotes = true
}

// SalesRecord is one pre-aggregated observation for a (quarter, category) pair.
type SalesRecord struct {
	Quarter  string          `json:"closed_fiscal_quarter"`
	Category string          `json:"category"`
	Count    int64           `json:"count"`
	ACV      decimal.Decimal `json:"acv"`
}

// Total is a summed opportunity count and ACV.
type Total struct {
	Count int64           `json:"count"`
	ACV   decimal.Decimal `json:"acv"`
}

// Add returns t with count and acv added.
func (t Total) Add(count int64, acv decimal.Decimal) Total {
	return Total{Count: t.Count + count, ACV: t.ACV.Add(acv)}
}

// QuarterTotal is the sum over all categories for one quarter.
type QuarterTotal = Total

// CategoryTotal is the sum over all quarters for one category.
type CategoryTotal = Total

// SeriesPoint is one quarter of a category series.
type SeriesPoint struct {
	Quarter string          `json:"quarter"`
	Count   int64           `json:"count"`
	ACV     decimal.Decimal `json:"acv"`
	Percent int64           `json:"percent"`
}

// Dataset is the record set of a single grouping dimension as served by the source.
type Dataset struct {
	Group string        `json:"group"`
	Sales []SalesRecord `json:"sales"`

	// Digest identifies the raw content the dataset was decoded from; zero when unknown.
	Digest uint64 `json:"-"`
}
