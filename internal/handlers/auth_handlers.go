package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"invoiceflow/internal/authgate"
	"invoiceflow/internal/caching"
	"invoiceflow/internal/common"
	"invoiceflow/internal/logger"
	"invoiceflow/internal/models"
	"invoiceflow/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandlers serves sign-in, sign-out, password reset and the auth gate.
type AuthHandlers struct {
	authService services.AuthService
	cacheSvc    caching.CacheService
	policy      *authgate.Policy
	tracker     authgate.NoticeTracker
}

func NewAuthHandlers(authService services.AuthService, cacheSvc caching.CacheService, policy *authgate.Policy, tracker authgate.NoticeTracker) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		cacheSvc:    cacheSvc,
		policy:      policy,
		tracker:     tracker,
	}
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// OAuthLoginRequest carries the ID token returned by the identity provider.
type OAuthLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type PasswordResetConfirmRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// Login godoc
// @Summary Sign in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "credentials"
// @Success 200 {object} models.TokenResponse
// @Router /auth/login [post]
func (h *AuthHandlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Password == "" {
		return common.SendValidationError(c, "password", "is required")
	}

	token, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return sendAuthError(c, err)
	}
	return c.JSON(http.StatusOK, token)
}

// LoginOAuth godoc
// @Summary Sign in with an identity provider ID token
// @Tags auth
// @Accept json
// @Produce json
// @Param body body OAuthLoginRequest true "ID token"
// @Success 200 {object} models.TokenResponse
// @Router /auth/oauth [post]
func (h *AuthHandlers) LoginOAuth(c echo.Context) error {
	var req OAuthLoginRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return common.SendValidationErrors(c, err)
	}

	token, err := h.authService.LoginOAuth(c.Request().Context(), req.IDToken)
	if err != nil {
		return sendAuthError(c, err)
	}
	return c.JSON(http.StatusOK, token)
}

// Logout ends the caller's session.
// @Summary Sign out
// @Tags auth
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandlers) Logout(c echo.Context) error {
	session, ok := common.GetSessionFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	if err := h.authService.Logout(c.Request().Context(), session.ID); err != nil {
		return sendAuthError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RequestPasswordReset answers 202 whether or not the account exists.
// @Summary Request a password reset mail
// @Tags auth
// @Accept json
// @Param body body PasswordResetRequest true "account email"
// @Success 202
// @Router /auth/password-reset [post]
func (h *AuthHandlers) RequestPasswordReset(c echo.Context) error {
	var req PasswordResetRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := h.authService.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return sendAuthError(c, err)
	}
	return c.JSON(http.StatusAccepted, map[string]string{
		"message": "If an account exists for this email, a reset link has been sent.",
	})
}

// ConfirmPasswordReset godoc
// @Summary Set a new password with a reset token
// @Tags auth
// @Accept json
// @Param body body PasswordResetConfirmRequest true "token and new password"
// @Success 204
// @Router /auth/password-reset/confirm [post]
func (h *AuthHandlers) ConfirmPasswordReset(c echo.Context) error {
	var req PasswordResetConfirmRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return common.SendValidationErrors(c, err)
	}
	if err := h.authService.ConfirmPasswordReset(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		return sendAuthError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SessionDecision is the gate's answer for one route.
type SessionDecision struct {
	authgate.Decision
	Email string `json:"email,omitempty"`
}

// Session evaluates the gate for ?route= against the caller's session.
// @Summary Evaluate the auth gate for a route
// @Tags auth
// @Produce json
// @Param route query string false "client route" default(/)
// @Success 200 {object} SessionDecision
// @Router /auth/session [get]
func (h *AuthHandlers) Session(c echo.Context) error {
	ctx := c.Request().Context()
	route := routeParam(c)
	session, _ := common.GetSessionFromContext(ctx)

	state := authgate.StateFor(h.policy, session)
	sid := ""
	if session != nil {
		sid = session.ID
	}
	d, err := authgate.Decide(ctx, h.tracker, state, sid, route)
	if err != nil {
		log := logger.WithComponent("authgate")
		log.Warn().Err(err).Str("session", sid).Msg("access-denied notice tracking failed")
	}

	resp := SessionDecision{Decision: d}
	if session != nil {
		resp.Email = session.Email
	}
	return c.JSON(http.StatusOK, resp)
}

// SessionStream pushes a gate decision for ?route= every time the caller's
// session changes, as server-sent events. The stream ends after sign-out.
// @Summary Stream auth gate decisions
// @Tags auth
// @Produce text/event-stream
// @Param route query string false "client route" default(/)
// @Param access_token query string false "access token"
// @Router /auth/session/stream [get]
func (h *AuthHandlers) SessionStream(c echo.Context) error {
	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	route := routeParam(c)
	session, _ := common.GetSessionFromContext(ctx)
	gate := authgate.New(h.policy, h.tracker)
	log := logger.WithComponent("authgate")

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	send := func(d authgate.Decision) {
		data, err := json.Marshal(d)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "event: decision\ndata: %s\n\n", data)
		w.Flush()
	}

	if session == nil {
		gate.Observe(nil)
		d, _ := gate.Decide(ctx, route)
		send(d)
		return nil
	}

	events, closeSub := h.cacheSvc.SubscribeSessions(ctx)
	defer func() {
		if err := closeSub(); err != nil {
			log.Debug().Err(err).Msg("closing session subscription")
		}
	}()

	sessions := make(chan *models.Session, 1)
	sessions <- session
	go forwardSessionEvents(ctx, session.ID, events, sessions)

	err := gate.Watch(ctx, sessions, route, func(d authgate.Decision) {
		send(d)
		if d.State == authgate.StateUnauthenticated {
			cancel()
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Warn().Err(err).Str("session", session.ID).Msg("session stream ended")
	}
	return nil
}

// forwardSessionEvents passes on the events of one session and closes out
// when the subscription ends.
func forwardSessionEvents(ctx context.Context, sessionID string, events <-chan caching.SessionEvent, out chan<- *models.Session) {
	defer close(out)
	for ev := range events {
		if ev.SessionID != sessionID {
			continue
		}
		select {
		case out <- ev.Session:
		case <-ctx.Done():
			return
		}
	}
}

func routeParam(c echo.Context) string {
	if route := c.QueryParam("route"); route != "" {
		return route
	}
	return authgate.HomeRoute
}
