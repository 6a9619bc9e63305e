package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kjannette/portfolio-backend/internal/httputil"
)

type Sender struct {
	webhookURL string
	name       string
	httpClient *http.Client
	retry      httputil.RetryConfig
	cooldown   time.Duration

	mu       sync.Mutex
	lastSent map[string]time.Time
	now      func() time.Time
}

func NewSender(webhookURL, name string, cooldown time.Duration) *Sender {
	if name == "" {
		name = "PortfolioBackend"
	}
	return &Sender{
		webhookURL: webhookURL,
		name:       name,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retry: httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   1 * time.Second,
			MaxDelay:    5 * time.Second,
		},
		cooldown: cooldown,
		lastSent: make(map[string]time.Time),
		now:      time.Now,
	}
}

// Alert sends msg unless another alert with the same key went out within the
// cooldown. It reports whether the alert was sent.
func (s *Sender) Alert(key, msg string) bool {
	s.mu.Lock()
	now := s.now()
	if last, ok := s.lastSent[key]; ok && s.cooldown > 0 && now.Sub(last) < s.cooldown {
		s.mu.Unlock()
		return false
	}
	s.lastSent[key] = now
	s.mu.Unlock()

	s.Send(msg)
	return true
}

func (s *Sender) Send(msg string) {
	formatted := fmt.Sprintf("[%s] %s", s.name, msg)
	fmt.Printf("[NOTIFY] %s %s\n", time.Now().UTC().Format(time.RFC3339), formatted)

	if s.webhookURL == "" {
		return
	}

	body, err := json.Marshal(s.formatPayload(formatted))
	if err != nil {
		fmt.Printf("[NOTIFY] marshal: %v\n", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := httputil.Do(ctx, s.httpClient, s.retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		fmt.Printf("[NOTIFY] webhook failed: %v\n", err)
		return
	}
	resp.Body.Close()
}

func (s *Sender) formatPayload(msg string) map[string]string {
	if strings.Contains(s.webhookURL, "discord") {
		return map[string]string{
			"content":  msg,
			"username": s.name,
		}
	}
	return map[string]string{
		"text":     fmt.Sprintf("`%s`", msg),
		"username": s.name,
	}
}

func (s *Sender) Enabled() bool {
	return s.webhookURL != ""
}
