package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dafibh/finbot/finbot-backend/internal/config"
	"github.com/dafibh/finbot/finbot-backend/internal/handler"
	"github.com/dafibh/finbot/finbot-backend/internal/market"
	"github.com/dafibh/finbot/finbot-backend/internal/middleware"
	"github.com/dafibh/finbot/finbot-backend/internal/render"
	"github.com/dafibh/finbot/finbot-backend/internal/repository/memory"
	"github.com/dafibh/finbot/finbot-backend/internal/repository/storage"
	"github.com/dafibh/finbot/finbot-backend/internal/service"
	"github.com/dafibh/finbot/finbot-backend/internal/websocket"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log.Info().
		Str("env", cfg.Env).
		Str("currency", cfg.Currency).
		Str("bot_token", maskToken(cfg.BotToken)).
		Msg("Configuration loaded")

	// Initialize repositories
	ledgerRepo := memory.NewLedgerRepository()
	sessionRepo := memory.NewSessionRepository()

	var statementRepo storage.StatementRepository
	if cfg.S3.Enabled() {
		s3Repo, err := storage.NewS3StatementRepository(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize statement storage")
		}
		statementRepo = s3Repo
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Statement export enabled")
	} else {
		log.Info().Msg("Statement export disabled: S3_BUCKET not set")
	}

	// Ledger feed hub doubles as the event publisher; new subscribers get a history snapshot
	hub := websocket.NewHub(nil)

	// Market data gateway
	httpClient := &http.Client{Timeout: cfg.Market.Timeout}
	gateway := market.NewGateway(
		market.NewCurrencySource(cfg.Market.CurrencyURL, httpClient),
		market.NewCryptoSource(cfg.Market.CryptoURL, httpClient),
		log.Logger,
		market.GatewayConfig{
			Timeout:    cfg.Market.Timeout,
			MinRefresh: cfg.Market.MinRefresh,
		},
	)

	// Initialize services
	ledgerService := service.NewLedgerService(ledgerRepo, hub, cfg.HistorySize)
	hub.SetHistory(ledgerService)
	analysisService := service.NewAnalysisService(ledgerRepo)
	adviceService := service.NewAdviceService(analysisService, gateway)
	entryService := service.NewEntryService(sessionRepo, ledgerService, hub, service.EntryConfig{
		SkipToken: cfg.SkipToken,
		TTL:       cfg.SessionTTL,
	})
	reportService := service.NewReportService(analysisService, statementRepo, hub)
	chatService := service.NewChatService(
		ledgerService,
		analysisService,
		adviceService,
		entryService,
		gateway,
		render.NewRenderer(cfg.Currency),
		service.ChatConfig{CancelToken: cfg.CancelToken},
	)

	// Optional background refresh keeps the market cache warm
	var marketWorker *service.MarketWorker
	if cfg.Market.WarmEvery > 0 {
		marketWorker = service.NewMarketWorker(gateway, log.Logger, service.MarketWorkerConfig{
			Interval: cfg.Market.WarmEvery,
		})
		marketWorker.Start(context.Background())
	}

	// Per-user rate limiter shared by the webhook and the API
	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimitPerMinute, cfg.RateLimitBurst)

	// Initialize handlers
	webhookHandler := handler.NewWebhookHandler(chatService, rateLimiter)
	ledgerHandler := handler.NewLedgerHandler(ledgerService, analysisService, adviceService, reportService)
	marketHandler := handler.NewMarketHandler(gateway)
	wsHandler := handler.NewWebSocketHandler(hub, cfg.WebhookSecret, cfg.CORSOrigins)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, middleware.WebhookSecretHeader},
		MaxAge:       86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"status":            "ok",
			"users":             ledgerRepo.Users(),
			"activeSessions":    sessionRepo.Len(),
			"websocketClients":  hub.TotalSubscribers(),
			"statementExport":   reportService.IsEnabled(),
			"marketWarmRunning": marketWorker != nil && marketWorker.IsRunning(),
		})
	})

	// Register API routes
	handler.RegisterRoutes(e, rateLimiter, cfg.BotToken, cfg.WebhookSecret, webhookHandler, ledgerHandler, marketHandler, wsHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	if marketWorker != nil {
		marketWorker.Stop()
	}
	rateLimiter.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// maskToken keeps only the last four characters for logging
func maskToken(token string) string {
	if len(token) <= 4 {
		return "****"
	}
	return "****" + token[len(token)-4:]
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			event := log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID))
			if userID := middleware.GetUserID(c); userID != "" {
				event = event.Str("user_id", userID)
			}
			event.Msg("request")

			return nil
		}
	}
}
