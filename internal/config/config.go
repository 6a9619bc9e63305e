package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Secrets (from .env)
	TwelveDataAPIKey string
	WebhookURL       string
	NotifyName       string
	CORSAllowOrigin  string

	// Quote provider
	TwelveDataBaseURL      string
	ProviderTimeoutSeconds int
	ProviderMaxAttempts    int

	// Valuation
	AnchorPurchaseAt string
	Currency         string

	// Server
	APIPort int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		// Secrets
		TwelveDataAPIKey: envStr("TWELVEDATA_API_KEY", ""),
		WebhookURL:       envStr("WEBHOOK_URL", ""),
		NotifyName:       envStr("NOTIFY_NAME", "PortfolioBackend"),
		CORSAllowOrigin:  envStr("CORS_ALLOW_ORIGIN", "*"),

		// Quote provider
		TwelveDataBaseURL:      strings.TrimRight(envStr("TWELVEDATA_BASE_URL", "https://api.twelvedata.com"), "/"),
		ProviderTimeoutSeconds: envInt("PROVIDER_TIMEOUT_SECONDS", 0),
		ProviderMaxAttempts:    envInt("PROVIDER_MAX_ATTEMPTS", 1),

		// Valuation
		AnchorPurchaseAt: strings.ToLower(envStr("ANCHOR_PURCHASE_AT", "start")),
		Currency:         strings.ToUpper(envStr("CURRENCY", "USD")),

		// Server
		APIPort: envInt("API_PORT", 5000),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	if c.TwelveDataAPIKey == "" {
		errs = append(errs, "TWELVEDATA_API_KEY is required")
	}
	if c.AnchorPurchaseAt != "start" && c.AnchorPurchaseAt != "end" {
		errs = append(errs, fmt.Sprintf("ANCHOR_PURCHASE_AT must be start or end, got %q", c.AnchorPurchaseAt))
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Sprintf("API_PORT out of range: %d", c.APIPort))
	}
	if c.ProviderTimeoutSeconds < 0 {
		errs = append(errs, "PROVIDER_TIMEOUT_SECONDS cannot be negative")
	}
	if c.ProviderMaxAttempts > 1 {
		fmt.Printf("[WARN] PROVIDER_MAX_ATTEMPTS=%d, provider calls will be retried on 5xx\n", c.ProviderMaxAttempts)
	}
	if c.WebhookURL == "" {
		fmt.Println("[WARN] WEBHOOK_URL not set, rate-limit alerts go to the console only")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func (c *Config) Print() {
	fmt.Println("=== Portfolio Backend Configuration ===")
	fmt.Printf("Quote Provider: %s\n", c.TwelveDataBaseURL)
	fmt.Printf("  API Key: %s\n", maskKey(c.TwelveDataAPIKey))
	fmt.Printf("  Timeout: %s\n", boolLabel(c.ProviderTimeoutSeconds > 0, c.ProviderTimeout().String(), "transport default"))
	fmt.Printf("  Max Attempts: %d\n", c.ProviderMaxAttempts)
	fmt.Println("--------------------------------------")
	fmt.Printf("Purchase Anchor: %s\n", c.AnchorPurchaseAt)
	fmt.Printf("Currency: %s\n", c.Currency)
	fmt.Printf("API Port: %d\n", c.APIPort)
	fmt.Printf("CORS Origin: %s\n", c.CORSAllowOrigin)
	fmt.Printf("Webhook: %s\n", boolLabel(c.WebhookURL != "", "configured", "not set"))
	fmt.Println("======================================")
}

// ProviderTimeout is zero when no client timeout is configured.
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.ProviderTimeoutSeconds) * time.Second
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func maskKey(key string) string {
	if key == "" {
		return "not set"
	}
	if len(key) <= 6 {
		return "******"
	}
	return key[:3] + "..." + key[len(key)-3:]
}

func boolLabel(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
