// Package cli implements the portfolio command-line subcommands.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/kjannette/portfolio-backend/internal/config"
	"github.com/kjannette/portfolio-backend/internal/external"
	"github.com/kjannette/portfolio-backend/internal/models"
	"github.com/kjannette/portfolio-backend/internal/valuation"
)

// Env is what the subcommands need at run time.
type Env struct {
	Quotes   valuation.QuoteProvider
	Anchor   models.Anchor
	Currency string
	Out      io.Writer
	Render   func(md string) (string, error)
}

// Loader builds the Env lazily so that -help works without configuration.
type Loader func() (*Env, error)

// Register adds every subcommand to c.
func Register(c *subcommands.Commander, load Loader) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(&valueCmd{load: load}, "valuation")
	c.Register(&seriesCmd{load: load}, "valuation")
}

// LoadEnv reads the configuration the same way the server does.
func LoadEnv() (*Env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.TwelveDataAPIKey == "" {
		return nil, errors.New("TWELVEDATA_API_KEY is required")
	}
	anchor, err := models.ParseAnchor(cfg.AnchorPurchaseAt)
	if err != nil {
		return nil, err
	}

	return &Env{
		Quotes: external.NewTwelveDataClient(cfg.TwelveDataAPIKey, external.TwelveDataOptions{
			BaseURL:     cfg.TwelveDataBaseURL,
			Timeout:     cfg.ProviderTimeout(),
			MaxAttempts: cfg.ProviderMaxAttempts,
		}),
		Anchor:   anchor,
		Currency: cfg.Currency,
		Out:      os.Stdout,
		Render:   renderTerminal,
	}, nil
}

func renderTerminal(md string) (string, error) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

// printMarkdown renders md through env.Render, falling back to the raw text.
func printMarkdown(env *Env, md string) {
	if env.Render != nil {
		if out, err := env.Render(md); err == nil {
			fmt.Fprint(env.Out, out)
			return
		}
	}
	fmt.Fprint(env.Out, md)
}
