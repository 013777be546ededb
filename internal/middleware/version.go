package middleware

import (
	"github.com/labstack/echo/v4"
)

const VersionHeaderName = "X-Traders-Version"

// VersionHeader adds the server version to every response
func VersionHeader(version string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set(VersionHeaderName, version)
			return next(c)
		}
	}
}
