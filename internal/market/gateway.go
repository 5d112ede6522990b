package market

import (
	"context"
	"sync"
	"time"

	"github.com/dafibh/finbot/finbot-backend/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// DefaultTimeout bounds every outbound quote request
const DefaultTimeout = 5 * time.Second

// CurrencyResult is the outcome of a currency fetch. Rates is always usable;
// Err records why live data could not be used.
type CurrencyResult struct {
	Rates  domain.CurrencyRates
	Source domain.QuoteSource
	Err    error
}

// CryptoResult is the outcome of a crypto fetch
type CryptoResult struct {
	Rates  domain.CryptoRates
	Source domain.QuoteSource
	Err    error
}

// SnapshotResult combines both feeds
type SnapshotResult struct {
	Snapshot       domain.MarketSnapshot
	CurrencySource domain.QuoteSource
	CryptoSource   domain.QuoteSource
}

// GatewayConfig holds the gateway's tunables
type GatewayConfig struct {
	Timeout    time.Duration // per request, defaults to DefaultTimeout
	MinRefresh time.Duration // minimum spacing between live calls per feed, 0 disables
}

// Gateway fetches market quotes and never fails: transient provider errors
// degrade to the last known good value, then to a static fallback, both marked
// stale.
type Gateway struct {
	currency CurrencyFetcher
	crypto   CryptoFetcher
	logger   zerolog.Logger
	timeout  time.Duration

	currencyLimiter *rate.Limiter
	cryptoLimiter   *rate.Limiter

	mu           sync.RWMutex
	lastCurrency *domain.CurrencyRates
	lastCrypto   *domain.CryptoRates
}

// NewGateway creates a new Gateway
func NewGateway(currency CurrencyFetcher, crypto CryptoFetcher, logger zerolog.Logger, config GatewayConfig) *Gateway {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}

	g := &Gateway{
		currency: currency,
		crypto:   crypto,
		logger:   logger.With().Str("component", "market_gateway").Logger(),
		timeout:  config.Timeout,
	}
	if config.MinRefresh > 0 {
		g.currencyLimiter = rate.NewLimiter(rate.Every(config.MinRefresh), 1)
		g.cryptoLimiter = rate.NewLimiter(rate.Every(config.MinRefresh), 1)
	}
	return g
}

// FetchCurrencyRates returns USD and EUR rates
func (g *Gateway) FetchCurrencyRates(ctx context.Context) CurrencyResult {
	g.mu.RLock()
	last := g.lastCurrency
	g.mu.RUnlock()

	// Every live attempt spends a token, including the first one
	allowed := g.currencyLimiter == nil || g.currencyLimiter.Allow()
	if !allowed && last != nil {
		return CurrencyResult{Rates: *last, Source: domain.QuoteSourceCached}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	rates, err := g.currency.FetchCurrency(fetchCtx)
	if err == nil {
		rates.Stale = false
		g.mu.Lock()
		g.lastCurrency = &rates
		g.mu.Unlock()
		return CurrencyResult{Rates: rates, Source: domain.QuoteSourceLive}
	}

	g.mu.RLock()
	last = g.lastCurrency
	g.mu.RUnlock()

	if last != nil {
		g.logger.Warn().Err(err).Time("as_of", last.AsOf).Msg("Currency rates unavailable, serving last known good")
		stale := *last
		stale.Stale = true
		return CurrencyResult{Rates: stale, Source: domain.QuoteSourceCached, Err: err}
	}

	g.logger.Warn().Err(err).Msg("Currency rates unavailable, serving static fallback")
	return CurrencyResult{Rates: FallbackCurrencyRates(), Source: domain.QuoteSourceFallback, Err: err}
}

// FetchCryptoRates returns BTC, ETH and SOL prices
func (g *Gateway) FetchCryptoRates(ctx context.Context) CryptoResult {
	g.mu.RLock()
	last := g.lastCrypto
	g.mu.RUnlock()

	// Every live attempt spends a token, including the first one
	allowed := g.cryptoLimiter == nil || g.cryptoLimiter.Allow()
	if !allowed && last != nil {
		return CryptoResult{Rates: *last, Source: domain.QuoteSourceCached}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	rates, err := g.crypto.FetchCrypto(fetchCtx)
	if err == nil {
		rates.Stale = false
		g.mu.Lock()
		g.lastCrypto = &rates
		g.mu.Unlock()
		return CryptoResult{Rates: rates, Source: domain.QuoteSourceLive}
	}

	g.mu.RLock()
	last = g.lastCrypto
	g.mu.RUnlock()

	if last != nil {
		g.logger.Warn().Err(err).Time("as_of", last.AsOf).Msg("Crypto rates unavailable, serving last known good")
		stale := *last
		stale.Stale = true
		return CryptoResult{Rates: stale, Source: domain.QuoteSourceCached, Err: err}
	}

	g.logger.Warn().Err(err).Msg("Crypto rates unavailable, serving static fallback")
	return CryptoResult{Rates: FallbackCryptoRates(), Source: domain.QuoteSourceFallback, Err: err}
}

// Snapshot fetches both feeds concurrently
func (g *Gateway) Snapshot(ctx context.Context) SnapshotResult {
	var (
		wg       sync.WaitGroup
		currency CurrencyResult
		crypto   CryptoResult
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		currency = g.FetchCurrencyRates(ctx)
	}()
	go func() {
		defer wg.Done()
		crypto = g.FetchCryptoRates(ctx)
	}()
	wg.Wait()

	return SnapshotResult{
		Snapshot: domain.MarketSnapshot{
			Currency: currency.Rates,
			Crypto:   crypto.Rates,
		},
		CurrencySource: currency.Source,
		CryptoSource:   crypto.Source,
	}
}
