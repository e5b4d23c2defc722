package ratesource

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/moneta-app/moneta-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LiveQuoteSource fetches rates for the live-quote pivot (P2). "Today" always
// goes to one of several redundant live ticker endpoints, first success wins.
// Any other day is served from an in-process historical cache populated by a
// bulk per-currency CSV feed, loaded at most once per currency per process
// day.
type LiveQuoteSource struct {
	liveURLs   []string
	historyURL string // Per-currency feed; %s is replaced with the unit code
	fetcher    *fetcher
	logger     *slog.Logger

	mu       sync.Mutex
	history  map[domain.CurrencyUnit]map[string]decimal.Decimal // day string -> rate
	loadedOn map[domain.CurrencyUnit]domain.Day                 // last successful bulk load, per unit
}

// NewLiveQuoteSource creates a live-quote source. liveURLs are tried in order
// until one yields data; historyURL is a format string with one %s verb for
// the currency code.
func NewLiveQuoteSource(liveURLs []string, historyURL string, timeout time.Duration, logger *slog.Logger) *LiveQuoteSource {
	return &LiveQuoteSource{
		liveURLs:   liveURLs,
		historyURL: historyURL,
		fetcher:    newFetcher(timeout),
		logger:     logger.With(slog.String("rate_source", "live_quote")),
		history:    make(map[domain.CurrencyUnit]map[string]decimal.Decimal),
		loadedOn:   make(map[domain.CurrencyUnit]domain.Day),
	}
}

var _ Source = (*LiveQuoteSource)(nil)

// Pivot implements Source.
func (s *LiveQuoteSource) Pivot() domain.CurrencyUnit {
	return domain.LiveQuotePivot
}

// FetchRates implements Source. Failures degrade to an empty map.
func (s *LiveQuoteSource) FetchRates(ctx context.Context, day domain.Day, units []domain.CurrencyUnit) map[domain.CurrencyUnit]decimal.Decimal {
	if day.IsToday() {
		return s.fetchLive(ctx, units)
	}
	return s.fetchHistorical(ctx, day, units)
}

// tickerEntry is the per-currency shape of the live ticker JSON: an object
// keyed by currency code with a "last" price against the pivot.
type tickerEntry struct {
	Last json.Number `json:"last"`
}

func (s *LiveQuoteSource) fetchLive(ctx context.Context, units []domain.CurrencyUnit) map[domain.CurrencyUnit]decimal.Decimal {
	set := unitSet(units)

	for _, url := range s.liveURLs {
		body, err := s.fetcher.get(ctx, url)
		if err != nil {
			s.logger.Warn("Live quote endpoint failed, trying next",
				slog.String("url", url), slog.String("error", err.Error()))
			continue
		}

		var ticker map[string]tickerEntry
		if err := json.Unmarshal(body, &ticker); err != nil {
			s.logger.Warn("Live quote parse failed, trying next",
				slog.String("url", url), slog.String("error", err.Error()))
			continue
		}

		rates := make(map[domain.CurrencyUnit]decimal.Decimal, len(ticker))
		for code, entry := range ticker {
			unit := domain.CurrencyUnit(code)
			if !wanted(set, unit) {
				continue
			}
			rate, err := decimal.NewFromString(entry.Last.String())
			if err != nil || !rate.IsPositive() {
				continue
			}
			rates[unit] = rate
		}
		if len(rates) > 0 {
			// First success wins; remaining endpoints are skipped.
			return rates
		}
	}

	s.logger.Warn("All live quote endpoints failed, treating as no data")
	return map[domain.CurrencyUnit]decimal.Decimal{}
}

func (s *LiveQuoteSource) fetchHistorical(ctx context.Context, day domain.Day, units []domain.CurrencyUnit) map[domain.CurrencyUnit]decimal.Decimal {
	rates := make(map[domain.CurrencyUnit]decimal.Decimal, len(units))
	for _, unit := range units {
		s.ensureHistory(ctx, unit)

		s.mu.Lock()
		if rate, ok := s.history[unit][day.String()]; ok {
			rates[unit] = rate
		}
		s.mu.Unlock()
	}
	return rates
}

// ensureHistory populates the historical cache for one currency. The bulk
// feed is parsed at most once per currency per process day; the fetch itself
// runs outside the lock, so two concurrent callers may duplicate the work
// once, and the insert-if-absent merge keeps the cache consistent either way.
func (s *LiveQuoteSource) ensureHistory(ctx context.Context, unit domain.CurrencyUnit) {
	today := domain.Today()

	s.mu.Lock()
	if loaded, ok := s.loadedOn[unit]; ok && loaded.Equal(today) {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	url := fmt.Sprintf(s.historyURL, unit.String())
	body, err := s.fetcher.get(ctx, url)
	if err != nil {
		s.logger.Warn("Historical feed fetch failed, treating as no data",
			slog.String("unit", unit.String()), slog.String("error", err.Error()))
		return
	}

	parsed, err := parseHistoryCSV(body)
	if err != nil {
		s.logger.Warn("Historical feed parse failed, treating as no data",
			slog.String("unit", unit.String()), slog.String("error", err.Error()))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cached, ok := s.history[unit]
	if !ok {
		cached = make(map[string]decimal.Decimal, len(parsed))
		s.history[unit] = cached
	}
	for dayKey, rate := range parsed {
		if _, exists := cached[dayKey]; !exists {
			cached[dayKey] = rate
		}
	}
	s.loadedOn[unit] = today
}

// parseHistoryCSV parses "date,rate" rows. A leading header row and rows
// with unparsable fields are skipped.
func parseHistoryCSV(body []byte) (map[string]decimal.Decimal, error) {
	reader := csv.NewReader(strings.NewReader(string(body)))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read history CSV: %w", err)
	}

	out := make(map[string]decimal.Decimal, len(records))
	for _, rec := range records {
		if len(rec) < 2 {
			continue
		}
		day, err := domain.ParseDay(strings.TrimSpace(rec[0]))
		if err != nil {
			continue
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(rec[1]))
		if err != nil || !rate.IsPositive() {
			continue
		}
		out[day.String()] = rate
	}
	return out, nil
}
