package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/dafibh/finbot/finbot-backend/internal/middleware"
	"github.com/dafibh/finbot/finbot-backend/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub            *websocket.Hub
	secret         string
	allowedOrigins map[string]bool
	upgrader       ws.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler. An empty secret
// accepts any subscriber.
func NewWebSocketHandler(hub *websocket.Hub, secret string, allowedOrigins []string) *WebSocketHandler {
	originMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		originMap[origin] = true
	}

	h := &WebSocketHandler{
		hub:            hub,
		secret:         secret,
		allowedOrigins: originMap,
	}

	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	return h
}

// checkOrigin validates the request origin against allowed origins
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Non-browser clients
		return true
	}

	if h.allowedOrigins[origin] {
		return true
	}

	log.Warn().
		Str("origin", origin).
		Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// authorized checks the token query parameter or the secret header
func (h *WebSocketHandler) authorized(c echo.Context) bool {
	if h.secret == "" {
		return true
	}
	token := c.QueryParam("token")
	if token == "" {
		token = c.Request().Header.Get(middleware.WebhookSecretHeader)
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) == 1
}

// HandleWS streams a user's ledger feed at GET /ws?userId=...
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	userID := strings.TrimSpace(c.QueryParam("userId"))
	if userID == "" {
		log.Debug().Msg("WebSocket connection rejected: missing user id")
		return echo.NewHTTPError(http.StatusBadRequest, "missing userId")
	}
	if len(userID) > middleware.MaxUserIDLength {
		return echo.NewHTTPError(http.StatusBadRequest, "userId is too long")
	}

	if !h.authorized(c) {
		log.Debug().Str("user_id", userID).Msg("WebSocket connection rejected: invalid token")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return err
	}

	feed := websocket.NewConn(conn, userID, h.hub)
	log.Info().
		Str("user_id", userID).
		Str("conn_id", feed.ID()).
		Msg("Ledger feed connected")

	// Serve sends the history snapshot before any live event
	go feed.Serve()

	return nil
}
