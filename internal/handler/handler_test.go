package handler

import (
	"github.com/dafibh/finbot/finbot-backend/internal/middleware"
	"github.com/dafibh/finbot/finbot-backend/internal/render"
	"github.com/dafibh/finbot/finbot-backend/internal/repository/memory"
	"github.com/dafibh/finbot/finbot-backend/internal/repository/storage"
	"github.com/dafibh/finbot/finbot-backend/internal/service"
	"github.com/dafibh/finbot/finbot-backend/internal/testutil"
	"github.com/dafibh/finbot/finbot-backend/internal/websocket"
	"github.com/labstack/echo/v4"
)

// testServices wires the full service graph over in-memory repositories
type testServices struct {
	ledger     *service.LedgerService
	analysis   *service.AnalysisService
	advice     *service.AdviceService
	entry      *service.EntryService
	report     *service.ReportService
	chat       *service.ChatService
	market     *testutil.MockMarketProvider
	publisher  *testutil.MockEventPublisher
	statements *testutil.MockStatementRepository
}

func newTestServices(exportEnabled bool) *testServices {
	ledgerRepo := memory.NewLedgerRepository()
	publisher := testutil.NewMockEventPublisher()
	provider := testutil.NewMockMarketProvider(0.1, -0.1)

	ledger := service.NewLedgerService(ledgerRepo, publisher, 5)
	analysis := service.NewAnalysisService(ledgerRepo)
	advice := service.NewAdviceService(analysis, provider)
	entry := service.NewEntryService(memory.NewSessionRepository(), ledger, publisher, service.EntryConfig{})

	var statements *testutil.MockStatementRepository
	var statementRepo storage.StatementRepository
	if exportEnabled {
		statements = testutil.NewMockStatementRepository()
		statementRepo = statements
	}
	report := service.NewReportService(analysis, statementRepo, publisher)

	chat := service.NewChatService(ledger, analysis, advice, entry, provider, render.NewRenderer("USD"), service.ChatConfig{})

	return &testServices{
		ledger:     ledger,
		analysis:   analysis,
		advice:     advice,
		entry:      entry,
		report:     report,
		chat:       chat,
		market:     provider,
		publisher:  publisher,
		statements: statements,
	}
}

const testBotToken = "123456:test-token"

// newTestServer builds an echo instance with every route registered
func newTestServer(s *testServices, limiter *middleware.RateLimiter, secret string) *echo.Echo {
	e := echo.New()
	RegisterRoutes(
		e,
		limiter,
		testBotToken,
		secret,
		NewWebhookHandler(s.chat, limiter),
		NewLedgerHandler(s.ledger, s.analysis, s.advice, s.report),
		NewMarketHandler(s.market),
		NewWebSocketHandler(websocket.NewHub(nil), secret, nil),
	)
	return e
}
