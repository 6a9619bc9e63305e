package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/subcommands"
	"github.com/kjannette/portfolio-backend/internal/valuation"
)

// valueCmd holds the flags for the 'value' subcommand.
type valueCmd struct {
	load Loader

	start   string
	end     string
	balance string
	anchor  string
	json    bool
}

func (*valueCmd) Name() string     { return "value" }
func (*valueCmd) Synopsis() string { return "value a portfolio over a date range" }
func (*valueCmd) Usage() string {
	return `portfolio value -start <date> -end <date> -balance <amount> [-anchor start|end] [-json] SYMBOL=ALLOCATION...

  Buys each symbol with its share of the balance at the purchase-anchor close
  and values it at the close on the other end of the range.
  Example: portfolio value -start 2023-05-01 -end 2023-05-22 -balance 1000 AAPL=60 MSFT=40
`
}

func (c *valueCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "start", "", "Start date (YYYY-MM-DD)")
	f.StringVar(&c.end, "end", "", "End date (YYYY-MM-DD)")
	f.StringVar(&c.balance, "balance", "", "Starting balance")
	f.StringVar(&c.anchor, "anchor", "", "Purchase anchor: start or end. Defaults to ANCHOR_PURCHASE_AT.")
	f.BoolVar(&c.json, "json", false, "Print the JSON result instead of a report")
}

func (c *valueCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	stocks, err := parseHoldings(f.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	payload := valuation.Payload{
		StartDate:        c.start,
		EndDate:          c.end,
		Balance:          json.RawMessage(strconv.Quote(c.balance)),
		Stocks:           stocks,
		AnchorPurchaseAt: c.anchor,
	}
	req, err := payload.Request()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	env, err := c.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}

	result, err := valuation.NewService(env.Quotes, env.Anchor).Value(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.json {
		enc := json.NewEncoder(env.Out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding result: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	printMarkdown(env, valuationMarkdown(result, env.Currency))
	return subcommands.ExitSuccess
}

// parseHoldings reads SYMBOL=ALLOCATION arguments in order.
func parseHoldings(args []string) ([]valuation.StockPayload, error) {
	if len(args) == 0 {
		return nil, errors.New("at least one SYMBOL=ALLOCATION argument is required")
	}
	out := make([]valuation.StockPayload, 0, len(args))
	for _, arg := range args {
		symbol, alloc, ok := strings.Cut(arg, "=")
		if !ok || symbol == "" || alloc == "" {
			return nil, fmt.Errorf("invalid holding %q, expected SYMBOL=ALLOCATION", arg)
		}
		out = append(out, valuation.StockPayload{
			Symbol:     symbol,
			Allocation: json.RawMessage(strconv.Quote(strings.TrimSuffix(alloc, "%"))),
		})
	}
	return out, nil
}

var _ subcommands.Command = (*valueCmd)(nil)
