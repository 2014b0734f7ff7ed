package middleware

import (
	"github.com/labstack/echo/v4"
)

// Version is reported by /health and the X-App-Version header.
var Version = "dev"

// VersionHeader stamps every response with the API and build versions.
func VersionHeader(apiVersion string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-API-Version", apiVersion)
			h.Set("X-App-Version", Version)
			return next(c)
		}
	}
}
