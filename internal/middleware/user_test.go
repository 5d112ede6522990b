package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserFromPath(t *testing.T) {
	tests := []struct {
		name         string
		userID       string
		expectedCode int
	}{
		{"valid user", "tg-42", http.StatusOK},
		{"blank user", "  ", http.StatusBadRequest},
		{"too long", strings.Repeat("x", MaxUserIDLength+1), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetParamNames("userId")
			c.SetParamValues(tt.userID)

			var seen string
			handler := func(c echo.Context) error {
				seen = GetUserID(c)
				return c.NoContent(http.StatusOK)
			}

			err := UserFromPath("userId")(handler)(c)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedCode, rec.Code)
			if tt.expectedCode == http.StatusOK {
				assert.Equal(t, tt.userID, seen)
			}
		})
	}
}

func TestGetUserID_Missing(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	assert.Equal(t, "", GetUserID(c))
}

func TestWebhookSecret(t *testing.T) {
	tests := []struct {
		name         string
		secret       string
		header       string
		expectedCode int
	}{
		{"disabled", "", "", http.StatusOK},
		{"matching", "s3cret", "s3cret", http.StatusOK},
		{"missing header", "s3cret", "", http.StatusUnauthorized},
		{"wrong header", "s3cret", "guess", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/webhook", nil)
			if tt.header != "" {
				req.Header.Set(WebhookSecretHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler := func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			}

			err := WebhookSecret(tt.secret)(handler)(c)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedCode, rec.Code)

			if tt.expectedCode == http.StatusUnauthorized {
				var body problemDetails
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, errorTypeUnauthorized, body.Type)
				assert.Equal(t, "/webhook", body.Instance)
			}
		})
	}
}

func TestBotToken(t *testing.T) {
	tests := []struct {
		name         string
		token        string
		pathToken    string
		expectedCode int
	}{
		{"matching", "123:abc", "123:abc", http.StatusOK},
		{"wrong token", "123:abc", "123:abd", http.StatusUnauthorized},
		{"empty path token", "123:abc", "", http.StatusUnauthorized},
		{"unconfigured token", "", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/webhook/x", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetParamNames("token")
			c.SetParamValues(tt.pathToken)

			handler := func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			}

			err := BotToken(tt.token, "token")(handler)(c)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedCode, rec.Code)

			if tt.expectedCode == http.StatusUnauthorized {
				var body problemDetails
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, errorTypeUnauthorized, body.Type)
				assert.NotContains(t, rec.Body.String(), "123:abc")
			}
		})
	}
}
