package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// MarketWorker periodically refreshes market quotes so chat requests are
// served from a warm gateway cache
type MarketWorker struct {
	market   MarketProvider
	logger   zerolog.Logger
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	mu       sync.Mutex
	running  bool
}

// MarketWorkerConfig holds configuration for the market worker
type MarketWorkerConfig struct {
	Interval time.Duration // How often to refresh quotes
}

// DefaultMarketWorkerConfig returns sensible defaults
func DefaultMarketWorkerConfig() MarketWorkerConfig {
	return MarketWorkerConfig{
		Interval: 10 * time.Minute,
	}
}

// NewMarketWorker creates a new market worker
func NewMarketWorker(marketProvider MarketProvider, logger zerolog.Logger, config MarketWorkerConfig) *MarketWorker {
	if config.Interval <= 0 {
		config.Interval = DefaultMarketWorkerConfig().Interval
	}

	return &MarketWorker{
		market:   marketProvider,
		logger:   logger.With().Str("component", "market_worker").Logger(),
		interval: config.Interval,
	}
}

// Start begins the background refresh. A stopped worker can be started again.
func (w *MarketWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	w.logger.Info().Dur("interval", w.interval).Msg("Starting market worker")

	go w.run(ctx, stopCh, doneCh)
}

// Stop gracefully stops the worker and waits for the loop to exit
func (w *MarketWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	w.logger.Info().Msg("Stopping market worker")
	close(stopCh)
	<-doneCh
	w.logger.Info().Msg("Market worker stopped")
}

func (w *MarketWorker) run(ctx context.Context, stopCh <-chan struct{}, doneCh chan struct{}) {
	defer close(doneCh)
	defer func() {
		w.mu.Lock()
		// Only the current run may clear the flag after a restart
		if w.doneCh == doneCh {
			w.running = false
		}
		w.mu.Unlock()
	}()

	w.refresh(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *MarketWorker) refresh(ctx context.Context) {
	start := time.Now()
	result := w.market.Snapshot(ctx)
	w.logger.Debug().
		Str("currency_source", string(result.CurrencySource)).
		Str("crypto_source", string(result.CryptoSource)).
		Dur("elapsed", time.Since(start)).
		Msg("Market quotes refreshed")
}

// IsRunning returns whether the worker is currently running
func (w *MarketWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
