package external

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/kjannette/portfolio-backend/internal/httputil"
	"github.com/kjannette/portfolio-backend/internal/models"
	"github.com/shopspring/decimal"
)

const (
	defaultTwelveDataURL = "https://api.twelvedata.com"
	statusOK             = "ok"
	codeInvalidSymbol    = 400
)

type TwelveDataClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	retry      httputil.RetryConfig
}

type TwelveDataOptions struct {
	BaseURL     string
	Timeout     time.Duration // zero leaves the transport default in place
	MaxAttempts int
	HTTPClient  *http.Client
}

func NewTwelveDataClient(apiKey string, opts TwelveDataOptions) *TwelveDataClient {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultTwelveDataURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	return &TwelveDataClient{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		retry:      httputil.WithAttempts(opts.MaxAttempts),
	}
}

type timeSeriesResponse struct {
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Values  []struct {
		Datetime string `json:"datetime"`
		Close    string `json:"close"`
	} `json:"values"`
}

// FetchSeries returns the daily closes of symbol between start and end,
// newest first.
func (c *TwelveDataClient) FetchSeries(ctx context.Context, symbol string, start, end time.Time) (models.PriceSeries, error) {
	params := url.Values{
		"symbol":     {symbol},
		"interval":   {"1day"},
		"start_date": {start.Format(models.DateLayout)},
		"end_date":   {end.Format(models.DateLayout)},
		"apikey":     {c.apiKey},
	}

	var data timeSeriesResponse
	status, err := httputil.GetJSON(ctx, c.httpClient, c.retry, c.baseURL+"/time_series?"+params.Encode(), &data)
	if err != nil {
		return nil, fmt.Errorf("%w: time_series %s: %v", ErrProviderUnavailable, symbol, err)
	}

	if data.Status != statusOK {
		if data.Code == codeInvalidSymbol {
			return nil, &InvalidSymbolError{Symbol: symbol, Message: data.Message}
		}
		fmt.Printf("[QUOTES] %s rejected (HTTP %d, code %d): %s\n", symbol, status, data.Code, data.Message)
		return nil, fmt.Errorf("%w: %s", ErrRateLimited, data.Message)
	}

	series := make(models.PriceSeries, 0, len(data.Values))
	for _, v := range data.Values {
		d, err := parseDatetime(v.Datetime)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: bad datetime %q", ErrProviderUnavailable, symbol, v.Datetime)
		}
		closePrice, err := decimal.NewFromString(v.Close)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: bad close %q", ErrProviderUnavailable, symbol, v.Close)
		}
		series = append(series, models.PricePoint{Date: d, Close: closePrice})
	}

	// The provider already sends newest first; keep that guaranteed.
	slices.SortStableFunc(series, func(a, b models.PricePoint) int {
		return b.Date.Compare(a.Date)
	})

	fmt.Printf("[QUOTES] %s: %d closes %s..%s\n", symbol, len(series),
		start.Format(models.DateLayout), end.Format(models.DateLayout))
	return series, nil
}

func parseDatetime(s string) (time.Time, error) {
	if d, err := time.Parse(models.DateLayout, s); err == nil {
		return d, nil
	}
	return time.Parse(time.DateTime, s)
}
