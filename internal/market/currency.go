package market

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dafibh/finbot/finbot-backend/internal/domain"
)

// DefaultCurrencyRatesURL is the Central Bank of Russia daily feed mirror
const DefaultCurrencyRatesURL = "https://www.cbr-xml-daily.ru/daily_json.js"

// CurrencyFetcher fetches fiat rates
type CurrencyFetcher interface {
	FetchCurrency(ctx context.Context) (domain.CurrencyRates, error)
}

// CurrencySource reads USD and EUR rates from a JSON endpoint. The paths make
// the provider schema a matter of configuration.
type CurrencySource struct {
	URL         string
	USDRatePath string
	USDPrevPath string
	EURRatePath string
	EURPrevPath string
	DatePath    string
	Client      *http.Client
	now         func() time.Time
}

// NewCurrencySource creates a CurrencySource with the CBR daily JSON layout
func NewCurrencySource(url string, client *http.Client) *CurrencySource {
	if url == "" {
		url = DefaultCurrencyRatesURL
	}
	if client == nil {
		client = &http.Client{}
	}
	return &CurrencySource{
		URL:         url,
		USDRatePath: "$.Valute.USD.Value",
		USDPrevPath: "$.Valute.USD.Previous",
		EURRatePath: "$.Valute.EUR.Value",
		EURPrevPath: "$.Valute.EUR.Previous",
		DatePath:    "$.Date",
		Client:      client,
		now:         time.Now,
	}
}

// FetchCurrency implements CurrencyFetcher
func (s *CurrencySource) FetchCurrency(ctx context.Context) (domain.CurrencyRates, error) {
	doc, err := getJSON(ctx, s.Client, s.URL)
	if err != nil {
		return domain.CurrencyRates{}, err
	}

	usd, err := s.quote(doc, s.USDRatePath, s.USDPrevPath)
	if err != nil {
		return domain.CurrencyRates{}, fmt.Errorf("USD: %w", err)
	}
	eur, err := s.quote(doc, s.EURRatePath, s.EURPrevPath)
	if err != nil {
		return domain.CurrencyRates{}, fmt.Errorf("EUR: %w", err)
	}

	return domain.CurrencyRates{
		USD:  usd,
		EUR:  eur,
		AsOf: lookupTime(doc, s.DatePath, s.now()),
	}, nil
}

func (s *CurrencySource) quote(doc any, ratePath, prevPath string) (domain.CurrencyQuote, error) {
	rate, err := lookupDecimal(doc, ratePath)
	if err != nil {
		return domain.CurrencyQuote{}, err
	}
	if !rate.IsPositive() {
		return domain.CurrencyQuote{}, fmt.Errorf("non-positive rate %s", rate)
	}
	prev, err := lookupDecimal(doc, prevPath)
	if err != nil {
		return domain.CurrencyQuote{}, err
	}
	return domain.CurrencyQuote{
		Rate:               rate,
		ChangeFromPrevious: rate.Sub(prev),
	}, nil
}
