package middleware

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const FlashCookieName = "traders_flash"

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Level   string
	Message string
}

const (
	FlashSuccess = "success"
	FlashWarning = "warning"
	FlashError   = "danger"
)

// SetFlash queues a message for the next page view.
func SetFlash(c echo.Context, level, message string) {
	value := base64.RawURLEncoding.EncodeToString([]byte(level + "\n" + message))
	c.SetCookie(&http.Cookie{
		Name:     FlashCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash returns the pending message, if any, and clears it.
func PopFlash(c echo.Context) *Flash {
	cookie, err := c.Cookie(FlashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	c.SetCookie(&http.Cookie{
		Name:     FlashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	level, message, ok := strings.Cut(string(raw), "\n")
	if !ok {
		return nil
	}
	return &Flash{Level: level, Message: message}
}
