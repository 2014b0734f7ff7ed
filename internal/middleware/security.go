package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"invoiceflow/internal/common"
	"invoiceflow/internal/logger"

	"github.com/go-chi/httprate"
	"github.com/labstack/echo/v4"
	"github.com/unrolled/secure"
)

// SecureHeaders sets the standard hardening headers.
func SecureHeaders(production bool) echo.MiddlewareFunc {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLRedirect:        production,
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:      !production,
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := secureMiddleware.Process(c.Response(), c.Request()); err != nil {
				log := logger.WithComponent("http")
				log.Warn().Err(err).Str("path", c.Request().URL.Path).Msg("secure headers blocked request")
				return common.SendClientError(c, "Request blocked")
			}
			// a redirect has already been written
			if c.Response().Committed {
				return nil
			}
			return next(c)
		}
	}
}

// RateLimit limits each client IP to perMinute requests.
func RateLimit(perMinute int) echo.MiddlewareFunc {
	if perMinute <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return echo.WrapMiddleware(httprate.Limit(
		perMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(common.CreateErrorResponse("TOO_MANY_REQUESTS", "Too many requests, slow down", nil))
		}),
	))
}
