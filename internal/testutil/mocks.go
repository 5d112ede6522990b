package testutil

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dafibh/finbot/finbot-backend/internal/domain"
	"github.com/dafibh/finbot/finbot-backend/internal/market"
	"github.com/dafibh/finbot/finbot-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// PublishedEvent is one event captured by MockEventPublisher
type PublishedEvent struct {
	UserID string
	Event  websocket.Event
}

// MockEventPublisher records every published event
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
}

// NewMockEventPublisher creates a new MockEventPublisher
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

// Publish records the event
func (m *MockEventPublisher) Publish(userID string, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{UserID: userID, Event: event})
}

// Types returns the combined type of every recorded event, in order
func (m *MockEventPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Events))
	for i, e := range m.Events {
		out[i] = e.Event.Type
	}
	return out
}

// MockStatementRepository is an in-memory storage.StatementRepository
type MockStatementRepository struct {
	mu        sync.Mutex
	Objects   map[string][]byte
	Types     map[string]string
	UploadErr error
	PresignFn func(objectKey string) (string, error)
}

// NewMockStatementRepository creates a new MockStatementRepository
func NewMockStatementRepository() *MockStatementRepository {
	return &MockStatementRepository{
		Objects: make(map[string][]byte),
		Types:   make(map[string]string),
	}
}

// Upload stores the object in memory
func (m *MockStatementRepository) Upload(ctx context.Context, objectKey string, data io.Reader, contentType string, size int64) (string, error) {
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	buf, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[objectKey] = buf
	m.Types[objectKey] = contentType
	return objectKey, nil
}

// GeneratePresignedURL returns a fake link for the object
func (m *MockStatementRepository) GeneratePresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	if m.PresignFn != nil {
		return m.PresignFn(objectKey)
	}
	return fmt.Sprintf("https://storage.test/%s?expires=%d", objectKey, int(expiry.Seconds())), nil
}

// MockMarketProvider returns a fixed snapshot and counts calls
type MockMarketProvider struct {
	mu     sync.Mutex
	Result market.SnapshotResult
	Calls  int
}

// NewMockMarketProvider creates a provider serving live quotes with the given
// USD and EUR changes
func NewMockMarketProvider(usdChange, eurChange float64) *MockMarketProvider {
	asOf := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &MockMarketProvider{
		Result: market.SnapshotResult{
			Snapshot: domain.MarketSnapshot{
				Currency: domain.CurrencyRates{
					USD:  domain.CurrencyQuote{Rate: decimal.NewFromFloat(91.5), ChangeFromPrevious: decimal.NewFromFloat(usdChange)},
					EUR:  domain.CurrencyQuote{Rate: decimal.NewFromFloat(99.2), ChangeFromPrevious: decimal.NewFromFloat(eurChange)},
					AsOf: asOf,
				},
				Crypto: domain.CryptoRates{
					BTC:  domain.CryptoQuote{PriceUSD: decimal.NewFromInt(65000), Change24hPercent: decimal.NewFromFloat(1.2)},
					ETH:  domain.CryptoQuote{PriceUSD: decimal.NewFromInt(3400), Change24hPercent: decimal.NewFromFloat(-0.8)},
					SOL:  domain.CryptoQuote{PriceUSD: decimal.NewFromInt(150), Change24hPercent: decimal.NewFromFloat(3.1)},
					AsOf: asOf,
				},
			},
			CurrencySource: domain.QuoteSourceLive,
			CryptoSource:   domain.QuoteSourceLive,
		},
	}
}

// Snapshot returns the configured result
func (m *MockMarketProvider) Snapshot(ctx context.Context) market.SnapshotResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	return m.Result
}

// CallCount returns how many snapshots were requested
func (m *MockMarketProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}
