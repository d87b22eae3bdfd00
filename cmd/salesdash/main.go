package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/salesdash/internal/cli"
	"github.com/okian/salesdash/internal/client"
	"github.com/okian/salesdash/internal/config"
)

// Default configuration constants.
const (
	defaultBarWidth = 40
	defaultRunLimit = 2 * time.Minute
)

func main() {
	// The server's default grouping seeds -group when no flag is given.
	defaultGroup := config.New().DefaultGrouping
	if cfg, err := config.Load(context.Background()); err == nil {
		defaultGroup = cfg.DefaultGrouping
	}

	var (
		baseURL  = flag.String("url", "http://localhost:9080", "Base URL of the service")
		groups   = flag.String("group", defaultGroup, `Comma-separated groupings or "all"`)
		sections = flag.String("sections", "all", `Comma-separated report sections (table, bars, donut) or "all"`)
		timeout  = flag.Duration("timeout", client.DefaultTimeout, "Fetch timeout per grouping")
		width    = flag.Int("width", defaultBarWidth, "Width of the largest bar in characters")
		verbose  = flag.Bool("verbose", false, "Log selector state transitions")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		cli.ShowHelp()
		return
	}

	if err := cli.SetupLogging(os.Stderr, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	gs, err := cli.ParseGroupings(*groups)
	if err != nil {
		os.Stderr.WriteString("Invalid -group: " + err.Error() + "\n")
		os.Exit(2)
	}
	secs, err := cli.ParseSections(*sections)
	if err != nil {
		os.Stderr.WriteString("Invalid -sections: " + err.Error() + "\n")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, defaultRunLimit)

	_, err = cli.Run(ctx, &cli.Config{
		BaseURL:   *baseURL,
		Groupings: gs,
		Sections:  secs,
		Timeout:   *timeout,
		BarWidth:  *width,
		Verbose:   *verbose,
	}, os.Stdout)
	cancel()
	stop()
	if err != nil {
		os.Stderr.WriteString("Report failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
