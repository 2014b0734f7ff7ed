package middleware

import (
	"context"
	"errors"

	"invoiceflow/internal/caching"
	"invoiceflow/internal/common"
	"invoiceflow/internal/logger"
	"invoiceflow/internal/models"
	"invoiceflow/internal/services"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const sessionContextKey = "session"

var errSessionRevoked = errors.New("session has ended")

// TokenValidator is the part of the auth service the session middleware needs.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*services.TokenClaims, error)
}

// SessionMiddleware resolves the bearer token (or the access_token query
// parameter used by event streams) to its redis session. Requests without a
// valid session continue unauthenticated; the auth gate decides what they see.
func SessionMiddleware(validator TokenValidator, cacheSvc caching.CacheService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  sessionContextKey,
		TokenLookup: "header:Authorization:Bearer ,query:access_token",
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			ctx := c.Request().Context()
			claims, err := validator.ValidateToken(ctx, auth)
			if err != nil {
				return nil, err
			}
			session, err := cacheSvc.GetSession(ctx, claims.SessionID)
			if err != nil {
				return nil, err
			}
			if session == nil {
				return nil, errSessionRevoked
			}
			return session, nil
		},
		SuccessHandler: func(c echo.Context) {
			session, ok := c.Get(sessionContextKey).(*models.Session)
			if !ok {
				return
			}
			c.SetRequest(c.Request().WithContext(common.WithSession(c.Request().Context(), session)))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			log := logger.WithComponent("session")
			log.Debug().Err(err).Str("path", c.Request().URL.Path).Msg("continuing without session")
			return nil
		},
		ContinueOnIgnoredError: true,
	})
}
