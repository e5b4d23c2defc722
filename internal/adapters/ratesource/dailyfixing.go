package ratesource

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/moneta-app/moneta-backend/internal/core/domain"
	"github.com/moneta-app/moneta-backend/internal/utils/ratemath"
	"github.com/shopspring/decimal"
)

// fixingDateFormat is the date layout the fixing endpoint expects.
const fixingDateFormat = "02/01/2006"

// DailyFixingSource fetches the single-authority daily fixing table for the
// daily-fixing pivot (P1). One request per day returns the complete table;
// nothing is cached here beyond what the rate repository already persists.
type DailyFixingSource struct {
	url     string
	fetcher *fetcher
	logger  *slog.Logger
}

// NewDailyFixingSource creates a daily-fixing source against the given
// endpoint, which is parameterized by date via the date_req query parameter.
func NewDailyFixingSource(url string, timeout time.Duration, logger *slog.Logger) *DailyFixingSource {
	return &DailyFixingSource{
		url:     url,
		fetcher: newFetcher(timeout),
		logger:  logger.With(slog.String("rate_source", "daily_fixing")),
	}
}

var _ Source = (*DailyFixingSource)(nil)

// Pivot implements Source.
func (s *DailyFixingSource) Pivot() domain.CurrencyUnit {
	return domain.DailyFixingPivot
}

// fixingDocument mirrors the XML shape of the daily fixing feed.
type fixingDocument struct {
	XMLName xml.Name       `xml:"ValCurs"`
	Records []fixingRecord `xml:"Valute"`
}

type fixingRecord struct {
	CharCode string `xml:"CharCode"`
	Nominal  int64  `xml:"Nominal"`
	Value    string `xml:"Value"` // Decimal with a comma separator
}

// FetchRates implements Source. Failures degrade to an empty map.
func (s *DailyFixingSource) FetchRates(ctx context.Context, day domain.Day, units []domain.CurrencyUnit) map[domain.CurrencyUnit]decimal.Decimal {
	reqURL := fmt.Sprintf("%s?date_req=%s", s.url, day.Time().Format(fixingDateFormat))

	body, err := s.fetcher.get(ctx, reqURL)
	if err != nil {
		s.logger.Warn("Daily fixing fetch failed, treating as no data",
			slog.String("day", day.String()), slog.String("error", err.Error()))
		return map[domain.CurrencyUnit]decimal.Decimal{}
	}

	doc, err := parseFixing(body)
	if err != nil {
		s.logger.Warn("Daily fixing parse failed, treating as no data",
			slog.String("day", day.String()), slog.String("error", err.Error()))
		return map[domain.CurrencyUnit]decimal.Decimal{}
	}

	set := unitSet(units)
	rates := make(map[domain.CurrencyUnit]decimal.Decimal, len(doc.Records))
	for _, rec := range doc.Records {
		unit := domain.CurrencyUnit(rec.CharCode)
		if !wanted(set, unit) {
			continue
		}
		// Value is "pivot per Nominal units of the currency"; the
		// pivot->currency rate is therefore Nominal / Value.
		value, err := decimal.NewFromString(strings.ReplaceAll(rec.Value, ",", "."))
		if err != nil || value.IsZero() || rec.Nominal <= 0 {
			s.logger.Warn("Skipping malformed fixing record",
				slog.String("char_code", rec.CharCode), slog.String("value", rec.Value))
			continue
		}
		rates[unit] = decimal.NewFromInt(rec.Nominal).DivRound(value, ratemath.DivPrecision)
	}
	return rates
}

func parseFixing(body []byte) (*fixingDocument, error) {
	dec := xml.NewDecoder(strings.NewReader(string(body)))
	// The feed declares a legacy single-byte charset; the fields we read are
	// plain ASCII, so the bytes can be decoded as-is.
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	var doc fixingDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode fixing XML: %w", err)
	}
	return &doc, nil
}
