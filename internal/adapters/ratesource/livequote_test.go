package ratesource_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/moneta-app/moneta-backend/internal/adapters/ratesource"
	"github.com/moneta-app/moneta-backend/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tickerJSON = `{
	"USD": {"15m": 97130.12, "last": 97136.42, "symbol": "$"},
	"EUR": {"15m": 89200.00, "last": 89210.55, "symbol": "€"}
}`

func TestLiveQuote_FirstSuccessWins(t *testing.T) {
	var firstHits, secondHits, thirdHits atomic.Int32

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		firstHits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer failing.Close()

	working := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secondHits.Add(1)
		_, _ = w.Write([]byte(tickerJSON))
	}))
	defer working.Close()

	spare := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		thirdHits.Add(1)
		_, _ = w.Write([]byte(tickerJSON))
	}))
	defer spare.Close()

	src := ratesource.NewLiveQuoteSource(
		[]string{failing.URL, working.URL, spare.URL}, "http://unused/%s.csv", time.Second, testLogger())
	require.Equal(t, domain.LiveQuotePivot, src.Pivot())

	rates := src.FetchRates(context.Background(), domain.Today(), []domain.CurrencyUnit{"USD"})

	require.Len(t, rates, 1)
	assert.True(t, rates["USD"].Equal(decimal.RequireFromString("97136.42")), "got %s", rates["USD"].String())

	assert.Equal(t, int32(1), firstHits.Load())
	assert.Equal(t, int32(1), secondHits.Load())
	assert.Equal(t, int32(0), thirdHits.Load(), "endpoints after the first success must be skipped")
}

func TestLiveQuote_AllEndpointsFailIsNoData(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer failing.Close()

	src := ratesource.NewLiveQuoteSource([]string{failing.URL, failing.URL}, "http://unused/%s.csv", time.Second, testLogger())
	rates := src.FetchRates(context.Background(), domain.Today(), nil)

	assert.Empty(t, rates)
}

func TestLiveQuote_HistoricalCacheMemoized(t *testing.T) {
	yesterday := domain.Today().AddDays(-1)
	twoDaysAgo := domain.Today().AddDays(-2)

	var bulkFetches atomic.Int32
	history := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bulkFetches.Add(1)
		fmt.Fprintf(w, "date,price\n%s,96000.10\n%s,95000.55\n", yesterday, twoDaysAgo)
	}))
	defer history.Close()

	src := ratesource.NewLiveQuoteSource([]string{"http://unused"}, history.URL+"/BTC%s.csv", time.Second, testLogger())

	rates := src.FetchRates(context.Background(), yesterday, []domain.CurrencyUnit{"USD"})
	require.Len(t, rates, 1)
	assert.True(t, rates["USD"].Equal(decimal.RequireFromString("96000.10")))

	// Repeated requests for an already cached currency, including for other
	// days, must not refetch the bulk feed.
	rates = src.FetchRates(context.Background(), twoDaysAgo, []domain.CurrencyUnit{"USD"})
	require.Len(t, rates, 1)
	assert.True(t, rates["USD"].Equal(decimal.RequireFromString("95000.55")))

	_ = src.FetchRates(context.Background(), yesterday, []domain.CurrencyUnit{"USD"})

	assert.Equal(t, int32(1), bulkFetches.Load(), "at most one bulk fetch per currency per process day")
}

func TestLiveQuote_HistoricalMissingDay(t *testing.T) {
	history := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "date,price\n%s,96000.10\n", domain.Today().AddDays(-1))
	}))
	defer history.Close()

	src := ratesource.NewLiveQuoteSource([]string{"http://unused"}, history.URL+"/BTC%s.csv", time.Second, testLogger())
	rates := src.FetchRates(context.Background(), domain.Today().AddDays(-30), []domain.CurrencyUnit{"USD"})

	assert.Empty(t, rates)
}
