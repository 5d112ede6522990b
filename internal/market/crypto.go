package market

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dafibh/finbot/finbot-backend/internal/domain"
)

// DefaultCryptoRatesURL is the CoinGecko simple price endpoint for the tracked coins
const DefaultCryptoRatesURL = "https://api.coingecko.com/api/v3/simple/price?ids=bitcoin,ethereum,solana&vs_currencies=usd&include_24hr_change=true"

// CryptoFetcher fetches coin prices
type CryptoFetcher interface {
	FetchCrypto(ctx context.Context) (domain.CryptoRates, error)
}

// CoinPaths locates one coin's price and 24h change in a provider response
type CoinPaths struct {
	Price  string
	Change string
}

// CryptoSource reads BTC, ETH and SOL prices from a JSON endpoint
type CryptoSource struct {
	URL    string
	BTC    CoinPaths
	ETH    CoinPaths
	SOL    CoinPaths
	Client *http.Client
	now    func() time.Time
}

// NewCryptoSource creates a CryptoSource with the CoinGecko simple price layout
func NewCryptoSource(url string, client *http.Client) *CryptoSource {
	if url == "" {
		url = DefaultCryptoRatesURL
	}
	if client == nil {
		client = &http.Client{}
	}
	return &CryptoSource{
		URL:    url,
		BTC:    coinGeckoPaths("bitcoin"),
		ETH:    coinGeckoPaths("ethereum"),
		SOL:    coinGeckoPaths("solana"),
		Client: client,
		now:    time.Now,
	}
}

func coinGeckoPaths(id string) CoinPaths {
	return CoinPaths{
		Price:  "$." + id + ".usd",
		Change: "$." + id + ".usd_24h_change",
	}
}

// FetchCrypto implements CryptoFetcher
func (s *CryptoSource) FetchCrypto(ctx context.Context) (domain.CryptoRates, error) {
	doc, err := getJSON(ctx, s.Client, s.URL)
	if err != nil {
		return domain.CryptoRates{}, err
	}

	btc, err := coinQuote(doc, s.BTC)
	if err != nil {
		return domain.CryptoRates{}, fmt.Errorf("BTC: %w", err)
	}
	eth, err := coinQuote(doc, s.ETH)
	if err != nil {
		return domain.CryptoRates{}, fmt.Errorf("ETH: %w", err)
	}
	sol, err := coinQuote(doc, s.SOL)
	if err != nil {
		return domain.CryptoRates{}, fmt.Errorf("SOL: %w", err)
	}

	return domain.CryptoRates{
		BTC:  btc,
		ETH:  eth,
		SOL:  sol,
		AsOf: s.now(),
	}, nil
}

func coinQuote(doc any, paths CoinPaths) (domain.CryptoQuote, error) {
	price, err := lookupDecimal(doc, paths.Price)
	if err != nil {
		return domain.CryptoQuote{}, err
	}
	if !price.IsPositive() {
		return domain.CryptoQuote{}, fmt.Errorf("non-positive price %s", price)
	}
	change, err := lookupDecimal(doc, paths.Change)
	if err != nil {
		return domain.CryptoQuote{}, err
	}
	return domain.CryptoQuote{
		PriceUSD:         price,
		Change24hPercent: change,
	}, nil
}
