package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"
	"github.com/kjannette/portfolio-backend/internal/models"
)

// seriesCmd holds the flags for the 'series' subcommand.
type seriesCmd struct {
	load Loader

	start string
	end   string
	json  bool
}

func (*seriesCmd) Name() string     { return "series" }
func (*seriesCmd) Synopsis() string { return "show the daily closes of a symbol" }
func (*seriesCmd) Usage() string {
	return `portfolio series -start <date> [-end <date>] [-json] SYMBOL

  Lists the daily closes returned by the quote provider, newest first.
`
}

func (c *seriesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "start", "", "Start date (YYYY-MM-DD)")
	f.StringVar(&c.end, "end", time.Now().Format(models.DateLayout), "End date (YYYY-MM-DD)")
	f.BoolVar(&c.json, "json", false, "Print the series as JSON")
}

func (c *seriesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one SYMBOL is required")
		return subcommands.ExitUsageError
	}
	symbol := strings.ToUpper(f.Arg(0))

	start, err := time.Parse(models.DateLayout, c.start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -start: %v\n", err)
		return subcommands.ExitUsageError
	}
	end, err := time.Parse(models.DateLayout, c.end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -end: %v\n", err)
		return subcommands.ExitUsageError
	}
	if end.Before(start) {
		fmt.Fprintln(os.Stderr, "Error: -end must not be before -start")
		return subcommands.ExitUsageError
	}

	env, err := c.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}

	series, err := env.Quotes.FetchSeries(ctx, symbol, start, end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.json {
		if series == nil {
			series = models.PriceSeries{}
		}
		if err := json.NewEncoder(env.Out).Encode(series); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding series: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	printMarkdown(env, seriesMarkdown(symbol, series, env.Currency))
	return subcommands.ExitSuccess
}
