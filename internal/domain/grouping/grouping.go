// Package grouping enumerates the dimensions sales records can be bucketed by.
package grouping

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknown is returned for a key outside the enumerated set.
var ErrUnknown = errors.New("unknown grouping")

// Grouping is the categorical axis used to bucket sales records.
type Grouping string

// Supported groupings. The string values are the wire keys of the groupBy parameter.
const (
	CustomerType Grouping = "customer_type"
	Industry     Grouping = "industry"
	ACVRange     Grouping = "acv_range"
	Team         Grouping = "team"
)

// Source locates the raw dataset of a grouping and names its dimension field.
type Source struct {
	File  string
	Field string
}

var sources = map[Grouping]Source{ //nolint:gochecknoglobals // fixed lookup table
	CustomerType: {File: "Customer Type.json", Field: "Cust_Type"},
	Industry:     {File: "Account Industry.json", Field: "Acct_Industry"},
	ACVRange:     {File: "ACV Range.json", Field: "ACV_Range"},
	Team:         {File: "Team.json", Field: "Team"},
}

var titles = map[Grouping]string{ //nolint:gochecknoglobals // fixed lookup table
	CustomerType: "Customer Type",
	Industry:     "Industry",
	ACVRange:     "ACV Range",
	Team:         "Team",
}

// All returns every grouping in menu order.
func All() []Grouping {
	return []Grouping{CustomerType, Industry, ACVRange, Team}
}

// Parse validates a wire key. Surrounding whitespace is ignored; matching is case-sensitive.
func Parse(key string) (Grouping, error) {
	g := Grouping(strings.TrimSpace(key))
	if !g.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknown, key)
	}
	return g, nil
}

// Valid reports whether g is one of the enumerated groupings.
func (g Grouping) Valid() bool {
	_, ok := sources[g]
	return ok
}

// Source returns the dataset locator for g.
func (g Grouping) Source() (Source, error) {
	src, ok := sources[g]
	if !ok {
		return Source{}, fmt.Errorf("%w: %q", ErrUnknown, string(g))
	}
	return src, nil
}

// Title is the human-readable column heading for g.
func (g Grouping) Title() string {
	if t, ok := titles[g]; ok {
		return t
	}
	return "Sales Data"
}

func (g Grouping) String() string { return string(g) }
