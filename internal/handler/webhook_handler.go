package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dafibh/finbot/finbot-backend/internal/domain"
	"github.com/dafibh/finbot/finbot-backend/internal/middleware"
	"github.com/dafibh/finbot/finbot-backend/internal/render"
	"github.com/dafibh/finbot/finbot-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// MaxMessageLength bounds the text of one inbound chat message
const MaxMessageLength = 4096

// WebhookHandler accepts chat events from the messaging adapter
type WebhookHandler struct {
	chatService *service.ChatService
	limiter     *middleware.RateLimiter
}

// NewWebhookHandler creates a new WebhookHandler. A nil limiter disables rate limiting.
func NewWebhookHandler(chatService *service.ChatService, limiter *middleware.RateLimiter) *WebhookHandler {
	return &WebhookHandler{
		chatService: chatService,
		limiter:     limiter,
	}
}

// WebhookRequest is one inbound chat message
type WebhookRequest struct {
	UserID string `json:"userId"`
	Text   string `json:"text"`
}

// WebhookResponse is the bot's answer to one message
type WebhookResponse struct {
	Text     string     `json:"text"`
	HTML     string     `json:"html,omitempty"`
	Keyboard [][]string `json:"keyboard,omitempty"`
	Ignored  bool       `json:"ignored"`
}

// HandleEvent handles POST /webhook
func (h *WebhookHandler) HandleEvent(c echo.Context) error {
	var req WebhookRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	req.UserID = strings.TrimSpace(req.UserID)
	var validationErrors []ValidationError
	if req.UserID == "" {
		validationErrors = append(validationErrors, ValidationError{Field: "userId", Message: "User ID is required"})
	} else if len(req.UserID) > middleware.MaxUserIDLength {
		validationErrors = append(validationErrors, ValidationError{Field: "userId", Message: "User ID is too long"})
	}
	if len(req.Text) > MaxMessageLength {
		validationErrors = append(validationErrors, ValidationError{Field: "text", Message: "Message is too long"})
	}
	if len(validationErrors) > 0 {
		return NewValidationError(c, "Validation failed", validationErrors)
	}

	if h.limiter != nil {
		allowed, err := h.limiter.Check(c, req.UserID)
		if !allowed {
			return err
		}
	}

	reply, err := h.chatService.HandleEvent(c.Request().Context(), service.Event{UserID: req.UserID, Text: req.Text})
	if err != nil {
		if errors.Is(err, domain.ErrUserRequired) {
			return NewValidationError(c, "User ID is required", nil)
		}
		log.Error().Err(err).Str("user_id", req.UserID).Msg("Failed to handle chat event")
		return NewInternalError(c, "Failed to handle message")
	}

	resp := WebhookResponse{
		Text:     reply.Text,
		Keyboard: reply.Keyboard,
		Ignored:  reply.Ignored,
	}
	if !reply.Ignored {
		html, err := render.ToHTML(reply.Text)
		if err != nil {
			log.Warn().Err(err).Str("user_id", req.UserID).Msg("Failed to render reply as HTML")
		} else {
			resp.HTML = html
		}
	}

	return c.JSON(http.StatusOK, resp)
}
