package cli

import (
	"time"

	"github.com/okian/salesdash/internal/domain/grouping"
)

// Section names accepted by Config.Sections.
const (
	SectionTable = "table"
	SectionBars  = "bars"
	SectionDonut = "donut"
)

// Config holds the report run settings.
type Config struct {
	BaseURL   string              // Base URL of the dashboard server
	Groupings []grouping.Grouping // Groupings to report, in order
	Sections  []string            // Report sections to print
	Timeout   time.Duration       // Per-selection fetch timeout
	BarWidth  int                 // Width of the largest bar in characters
	Verbose   bool                // Log selector state transitions
}

// Stats summarises a run.
type Stats struct {
	Groupings  int
	Records    int
	Duplicates int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}
