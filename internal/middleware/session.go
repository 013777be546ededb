package middleware

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"traders/internal/common"
)

const (
	SessionCookieName = "traders_session"
	sessionIssuer     = "traders"
)

// SessionConfig configures the signed session cookie.
type SessionConfig struct {
	Secret []byte
	TTL    time.Duration
	Secure bool
	Now    func() time.Time
}

// Sessions attaches an opaque session id to every request. The id travels in
// a cookie holding an HS256 token whose jti is the id. Missing, tampered or
// expired cookies get a fresh session.
func Sessions(cfg SessionConfig) echo.MiddlewareFunc {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			now := cfg.Now()

			var sessionID string
			var expiresAt time.Time
			if cookie, err := c.Cookie(SessionCookieName); err == nil {
				sessionID, expiresAt, _ = ParseSessionToken(cookie.Value, cfg.Secret, now)
			}

			// Slide the expiry once half of the lifetime has passed
			if sessionID == "" || expiresAt.Sub(now) < cfg.TTL/2 {
				if sessionID == "" {
					sessionID = uuid.NewString()
				}
				token, err := SignSessionToken(sessionID, cfg.Secret, cfg.TTL, now)
				if err != nil {
					return echo.NewHTTPError(http.StatusInternalServerError, "Could not start session")
				}
				c.SetCookie(&http.Cookie{
					Name:     SessionCookieName,
					Value:    token,
					Path:     "/",
					Expires:  now.Add(cfg.TTL),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			c.Set(string(common.SessionIDKey), sessionID)
			ctx := common.WithSessionID(c.Request().Context(), sessionID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// SignSessionToken mints the cookie value for sessionID.
func SignSessionToken(sessionID string, secret []byte, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        sessionID,
		Issuer:    sessionIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseSessionToken verifies token and returns its session id and expiry.
func ParseSessionToken(token string, secret []byte, now time.Time) (string, time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return "", time.Time{}, err
	}
	if _, err := uuid.Parse(claims.ID); err != nil {
		return "", time.Time{}, err
	}
	return claims.ID, claims.ExpiresAt.Time, nil
}

// SessionID returns the session id set by Sessions
func SessionID(c echo.Context) string {
	sid, _ := common.GetSessionIDFromContext(c.Request().Context())
	return sid
}
