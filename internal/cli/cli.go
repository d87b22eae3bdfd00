// Package cli prints sales reports fetched from a running dashboard server.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/okian/salesdash/internal/domain/grouping"
	"github.com/okian/salesdash/pkg/logger"
)

// SetupLogging sends logs to w so report output on stdout stays clean.
func SetupLogging(w io.Writer, verbose bool) error {
	if err := logger.Init(logger.WithWriter(w)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	return logger.SetLevelString(level)
}

// ParseGroupings parses a comma-separated list of grouping keys; "all" selects every grouping.
func ParseGroupings(list string) ([]grouping.Grouping, error) {
	if strings.TrimSpace(list) == "all" {
		return grouping.All(), nil
	}
	var out []grouping.Grouping
	for _, key := range strings.Split(list, ",") {
		g, err := grouping.Parse(key)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// ParseSections parses a comma-separated list of report sections; "all" selects every section.
func ParseSections(list string) ([]string, error) {
	if strings.TrimSpace(list) == "all" {
		return []string{SectionTable, SectionBars, SectionDonut}, nil
	}
	var out []string
	for _, s := range strings.Split(list, ",") {
		s = strings.TrimSpace(s)
		switch s {
		case SectionTable, SectionBars, SectionDonut:
			out = append(out, s)
		default:
			return nil, fmt.Errorf("unknown section %q", s)
		}
	}
	return out, nil
}

// ShowHelp prints usage information for the report tool.
func ShowHelp() {
	os.Stdout.WriteString(`Sales Dashboard Report
======================

Prints the quarterly ACV pivot table, stacked bars and donut for one or more
groupings, fetched from a running dashboard server.

Usage:
  go run ./cmd/salesdash [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -group string
        Comma-separated groupings (customer_type, industry, acv_range, team) or "all"
        (default: SALESDASH_DEFAULT_GROUPING or "industry")
  -sections string
        Comma-separated sections (table, bars, donut) or "all" (default "all")
  -timeout duration
        Fetch timeout per grouping (default 10s)
  -width int
        Width of the largest bar in characters (default 40)
  -verbose
        Log selector state transitions to stderr
  -help
        Show this help message

Examples:
  go run ./cmd/salesdash -group team
  go run ./cmd/salesdash -group all -sections table
`)
}
