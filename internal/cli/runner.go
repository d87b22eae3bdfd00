package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/okian/salesdash/internal/client"
	"github.com/okian/salesdash/internal/report"
	"github.com/okian/salesdash/pkg/logger"
)

// Run checks the server, then selects each configured grouping in turn and
// writes the requested report sections to w.
func Run(ctx context.Context, cfg *Config, w io.Writer) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Named("report")

	log.Info(ctx, "starting report",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("groupings", len(cfg.Groupings)),
		logger.Duration("timeout", cfg.Timeout))

	hc := client.NewHTTPClient(cfg.BaseURL, client.WithHTTPLogger(log))
	if err := hc.Health(ctx); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	opts := []client.SelectorOption{client.WithTimeout(cfg.Timeout), client.WithLogger(log)}
	if cfg.Verbose {
		opts = append(opts, client.WithObserver(func(st *client.State) {
			log.Debug(ctx, "selector state",
				logger.String("grouping", st.Grouping.String()),
				logger.String("status", st.Status.String()),
				logger.Uint64("generation", st.Generation))
		}))
	}
	sel := client.NewSelector(hc, opts...)

	for i, g := range cfg.Groupings {
		res, err := sel.Select(ctx, g)
		if err != nil {
			return nil, fmt.Errorf("report %s: %w", g, err)
		}
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := writeSections(w, cfg, res); err != nil {
			return nil, fmt.Errorf("write %s: %w", g, err)
		}
		stats.Groupings++
		stats.Records += res.Summary.Records
		stats.Duplicates += res.Summary.Duplicates
		if res.Summary.Duplicates > 0 {
			log.Warn(ctx, "dataset repeats (quarter, category) pairs; values were summed",
				logger.String("grouping", g.String()),
				logger.Int("duplicates", res.Summary.Duplicates))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	log.Info(ctx, "report completed",
		logger.Int("groupings", stats.Groupings),
		logger.Int("records", stats.Records),
		logger.String("duration", stats.Duration.String()))
	return stats, nil
}

func writeSections(w io.Writer, cfg *Config, res *client.Result) error {
	fmt.Fprintf(w, "== %s ==\n", res.Grouping.Title())
	for _, section := range cfg.Sections {
		var err error
		switch section {
		case SectionTable:
			err = report.WriteTable(w, res.Grouping, res.Summary)
		case SectionBars:
			err = report.WriteBars(w, res.Summary, cfg.BarWidth)
		case SectionDonut:
			err = report.WriteDonut(w, res.Summary)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
