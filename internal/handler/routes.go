package handler

import (
	"github.com/dafibh/finbot/finbot-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, rateLimiter *middleware.RateLimiter, botToken, webhookSecret string, webhookHandler *WebhookHandler, ledgerHandler *LedgerHandler, marketHandler *MarketHandler, wsHandler *WebSocketHandler) {
	// Chat adapter entry point, registered with the platform as /webhook/<bot token>.
	// Rate limited per user inside the handler.
	e.POST("/webhook/:token", webhookHandler.HandleEvent,
		middleware.BotToken(botToken, "token"),
		middleware.WebhookSecret(webhookSecret),
	)

	// Live ledger events
	e.GET("/ws", wsHandler.HandleWS)

	// API version 1
	api := e.Group("/api/v1")

	// Market routes (shared, no user)
	api.GET("/market", marketHandler.GetMarket)

	// Per-user routes
	users := api.Group("/users/:userId")
	users.Use(middleware.WebhookSecret(webhookSecret))
	users.Use(middleware.UserFromPath("userId"))
	if rateLimiter != nil {
		users.Use(middleware.RateLimitMiddleware(rateLimiter))
	}
	users.GET("/transactions", ledgerHandler.GetTransactions)
	users.GET("/analysis", ledgerHandler.GetAnalysis)
	users.GET("/advice", ledgerHandler.GetAdvice)
	users.POST("/statements", ledgerHandler.ExportStatement)
}
