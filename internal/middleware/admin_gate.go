package middleware

import (
	"net/http"

	"invoiceflow/internal/authgate"
	"invoiceflow/internal/common"
	"invoiceflow/internal/logger"

	"github.com/labstack/echo/v4"
)

// AdminGate lets only allow-listed admins through. Everyone else gets the
// route the client should navigate to: 401 with /login for anonymous
// callers, 403 with /login?error=unauthorized for signed-in non-admins. The
// access-denied notice is attached once per session.
func AdminGate(policy *authgate.Policy, tracker authgate.NoticeTracker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			session, _ := common.GetSessionFromContext(ctx)
			state := authgate.StateFor(policy, session)

			sid := ""
			if session != nil {
				sid = session.ID
			}
			d, err := authgate.Decide(ctx, tracker, state, sid, c.Request().URL.Path)
			if err != nil {
				log := logger.WithComponent("authgate")
				log.Warn().Err(err).Str("session", sid).Msg("access-denied notice tracking failed")
			}
			if d.Render {
				return next(c)
			}

			if state == authgate.StateUnauthenticated {
				return common.SendRedirectError(c, http.StatusUnauthorized, "UNAUTHENTICATED", "Sign in to continue", d.Redirect)
			}

			details := map[string]string{"redirect": d.Redirect}
			if d.Notice != nil {
				details["notice"] = d.Notice.Message
			}
			return c.JSON(http.StatusForbidden, common.CreateErrorResponse("FORBIDDEN", authgate.AccessDeniedMessage, details))
		}
	}
}
