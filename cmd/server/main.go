package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kjannette/portfolio-backend/internal/api"
	"github.com/kjannette/portfolio-backend/internal/config"
	"github.com/kjannette/portfolio-backend/internal/external"
	"github.com/kjannette/portfolio-backend/internal/models"
	"github.com/kjannette/portfolio-backend/internal/notifications"
	"github.com/kjannette/portfolio-backend/internal/valuation"
)

const banner = `
╔══════════════════════════════════════╗
║     Portfolio Valuation Backend      ║
║                                      ║
╚══════════════════════════════════════╝
`

const alertCooldown = 5 * time.Minute

func main() {
	fmt.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	cfg.Print()

	anchor, err := models.ParseAnchor(cfg.AnchorPurchaseAt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	// Quote provider
	quotes := external.NewTwelveDataClient(cfg.TwelveDataAPIKey, external.TwelveDataOptions{
		BaseURL:     cfg.TwelveDataBaseURL,
		Timeout:     cfg.ProviderTimeout(),
		MaxAttempts: cfg.ProviderMaxAttempts,
	})

	valuer := valuation.NewService(quotes, anchor)
	notify := notifications.NewSender(cfg.WebhookURL, cfg.NotifyName, alertCooldown)

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := api.NewServer(valuer, notify, api.Options{
		Port:        cfg.APIPort,
		CORSOrigin:  cfg.CORSAllowOrigin,
		ProviderURL: cfg.TwelveDataBaseURL,
	})
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "[API] Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	fmt.Println("\nAll services started successfully")

	<-ctx.Done()
	fmt.Println("\nShutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "[API] Shutdown error: %v\n", err)
	}
	fmt.Println("[API] Server closed")
	fmt.Println("Shutdown complete")
}
