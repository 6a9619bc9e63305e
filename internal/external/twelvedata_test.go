package external_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kjannette/portfolio-backend/internal/external"
	"github.com/kjannette/portfolio-backend/internal/testutil"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func TestFetchSeries_OK(t *testing.T) {
	stub := testutil.NewStubProvider(t)
	stub.AddSeries("AAPL",
		testutil.Close{Date: "2023-05-24", Close: "171.84"},
		testutil.Close{Date: "2023-05-23", Close: "171.56"},
		testutil.Close{Date: "2023-05-22", Close: "174.20"},
	)

	client := external.NewTwelveDataClient("test-key", external.TwelveDataOptions{BaseURL: stub.URL()})
	series, err := client.FetchSeries(context.Background(), "AAPL", mustDate(t, "2023-05-22"), mustDate(t, "2023-05-24"))
	if err != nil {
		t.Fatalf("FetchSeries: %v", err)
	}
	if len(series) != 3 {
		t.Fatalf("expected 3 closes, got %d", len(series))
	}

	latest, _ := series.Latest()
	if latest.Date.Format("2006-01-02") != "2023-05-24" || latest.Close.String() != "171.84" {
		t.Fatalf("unexpected latest close: %+v", latest)
	}
	earliest, _ := series.Earliest()
	if earliest.Close.String() != "174.2" {
		t.Fatalf("unexpected earliest close: %s", earliest.Close)
	}

	params := stub.LastParams()
	want := map[string]string{
		"symbol":     "AAPL",
		"interval":   "1day",
		"start_date": "2023-05-22",
		"end_date":   "2023-05-24",
		"apikey":     "test-key",
	}
	for k, v := range want {
		if params[k] != v {
			t.Fatalf("param %s: got %q, want %q", k, params[k], v)
		}
	}
}

func TestFetchSeries_SortsNewestFirst(t *testing.T) {
	stub := testutil.NewStubProvider(t)
	stub.AddSeries("MSFT",
		testutil.Close{Date: "2023-05-22", Close: "1"},
		testutil.Close{Date: "2023-05-24", Close: "3"},
		testutil.Close{Date: "2023-05-23", Close: "2"},
	)

	client := external.NewTwelveDataClient("k", external.TwelveDataOptions{BaseURL: stub.URL()})
	series, err := client.FetchSeries(context.Background(), "MSFT", mustDate(t, "2023-05-22"), mustDate(t, "2023-05-24"))
	if err != nil {
		t.Fatalf("FetchSeries: %v", err)
	}
	for i, want := range []string{"3", "2", "1"} {
		if series[i].Close.String() != want {
			t.Fatalf("series[%d] = %s, want %s", i, series[i].Close, want)
		}
	}
}

func TestFetchSeries_InvalidSymbol(t *testing.T) {
	stub := testutil.NewStubProvider(t)

	client := external.NewTwelveDataClient("k", external.TwelveDataOptions{BaseURL: stub.URL()})
	_, err := client.FetchSeries(context.Background(), "NOPE", mustDate(t, "2023-05-22"), mustDate(t, "2023-05-24"))
	if !errors.Is(err, external.ErrInvalidSymbol) {
		t.Fatalf("expected ErrInvalidSymbol, got %v", err)
	}

	var invalid *external.InvalidSymbolError
	if !errors.As(err, &invalid) || invalid.Symbol != "NOPE" {
		t.Fatalf("expected InvalidSymbolError for NOPE, got %v", err)
	}
}

func TestFetchSeries_RateLimited(t *testing.T) {
	stub := testutil.NewStubProvider(t)
	stub.Reject("AAPL", 429, "You have run out of API credits for the current minute.")

	client := external.NewTwelveDataClient("k", external.TwelveDataOptions{BaseURL: stub.URL()})
	_, err := client.FetchSeries(context.Background(), "AAPL", mustDate(t, "2023-05-22"), mustDate(t, "2023-05-24"))
	if !errors.Is(err, external.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if errors.Is(err, external.ErrInvalidSymbol) {
		t.Fatal("rate limit must not be reported as invalid symbol")
	}
}

func TestFetchSeries_AnyOtherErrorCodeIsRateLimited(t *testing.T) {
	stub := testutil.NewStubProvider(t)
	stub.Reject("AAPL", 401, "**apikey** parameter is incorrect")

	client := external.NewTwelveDataClient("k", external.TwelveDataOptions{BaseURL: stub.URL()})
	_, err := client.FetchSeries(context.Background(), "AAPL", mustDate(t, "2023-05-22"), mustDate(t, "2023-05-24"))
	if !errors.Is(err, external.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestFetchSeries_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := external.NewTwelveDataClient("k", external.TwelveDataOptions{BaseURL: srv.URL, Timeout: 2 * time.Second})
	_, err := client.FetchSeries(context.Background(), "AAPL", mustDate(t, "2023-05-22"), mustDate(t, "2023-05-24"))
	if !errors.Is(err, external.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestFetchSeries_ServerErrorWithProviderBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"code":500,"message":"internal error","status":"error"}`))
	}))
	defer srv.Close()

	client := external.NewTwelveDataClient("k", external.TwelveDataOptions{BaseURL: srv.URL})
	_, err := client.FetchSeries(context.Background(), "AAPL", mustDate(t, "2023-05-22"), mustDate(t, "2023-05-24"))
	if !errors.Is(err, external.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if errors.Is(err, external.ErrProviderUnavailable) {
		t.Fatalf("provider error body must not read as unavailable: %v", err)
	}
}

func TestFetchSeries_ServerErrorWithInvalidSymbolBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"code":400,"message":"symbol not found","status":"error"}`))
	}))
	defer srv.Close()

	client := external.NewTwelveDataClient("k", external.TwelveDataOptions{BaseURL: srv.URL})
	_, err := client.FetchSeries(context.Background(), "NOPE", mustDate(t, "2023-05-22"), mustDate(t, "2023-05-24"))
	if !errors.Is(err, external.ErrInvalidSymbol) {
		t.Fatalf("expected ErrInvalidSymbol, got %v", err)
	}
}

func TestFetchSeries_BadClose(t *testing.T) {
	stub := testutil.NewStubProvider(t)
	stub.AddSeries("AAPL", testutil.Close{Date: "2023-05-22", Close: "n/a"})

	client := external.NewTwelveDataClient("k", external.TwelveDataOptions{BaseURL: stub.URL()})
	_, err := client.FetchSeries(context.Background(), "AAPL", mustDate(t, "2023-05-22"), mustDate(t, "2023-05-22"))
	if !errors.Is(err, external.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}
