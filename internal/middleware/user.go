package middleware

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// UserIDKey is the context key for the chat user identifier
	UserIDKey contextKey = "user_id"

	// WebhookSecretHeader carries the shared secret of the chat adapter
	WebhookSecretHeader = "X-Webhook-Secret"

	// MaxUserIDLength bounds the opaque user identifier
	MaxUserIDLength = 128
)

// UserFromPath reads the user identifier from the named path parameter and
// stores it in the request context
func UserFromPath(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := strings.TrimSpace(c.Param(param))
			if userID == "" {
				return badRequestError(c, "user id is required")
			}
			if len(userID) > MaxUserIDLength {
				return badRequestError(c, "user id is too long")
			}
			SetUserID(c, userID)
			return next(c)
		}
	}
}

// SetUserID stores the user identifier in the request context
func SetUserID(c echo.Context, userID string) {
	ctx := context.WithValue(c.Request().Context(), UserIDKey, userID)
	c.SetRequest(c.Request().WithContext(ctx))
}

// GetUserID extracts the user identifier from the echo context
func GetUserID(c echo.Context) string {
	if id, ok := c.Request().Context().Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}

// BotToken rejects requests whose path parameter does not carry the bot token.
// The chat platform is given a webhook URL ending in the token, so only it
// can reach the endpoint.
func BotToken(token, param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			got := c.Param(param)
			if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				log.Warn().Str("remote_ip", c.RealIP()).Msg("Webhook bot token mismatch")
				return unauthorizedError(c, "invalid bot token")
			}
			return next(c)
		}
	}
}

// WebhookSecret rejects requests whose secret header does not match. An empty
// secret disables the check.
func WebhookSecret(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if secret == "" {
				return next(c)
			}
			got := c.Request().Header.Get(WebhookSecretHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				log.Warn().Str("path", c.Request().URL.Path).Str("remote_ip", c.RealIP()).Msg("Webhook secret mismatch")
				return unauthorizedError(c, "invalid webhook secret")
			}
			return next(c)
		}
	}
}
