package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"invoiceflow/internal/common"
	"invoiceflow/internal/enrichment"
	"invoiceflow/internal/repositories"
	"invoiceflow/internal/services"
	"invoiceflow/internal/workspace"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendServiceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"insufficient stock", fmt.Errorf("%w: only 2 left", workspace.ErrInsufficientStock), http.StatusBadRequest, "CLIENT_ERROR"},
		{"empty sale", services.ErrEmptySale, http.StatusBadRequest, "CLIENT_ERROR"},
		{"missing line", workspace.ErrLineNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"missing row", fmt.Errorf("invoice: %w", repositories.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"in flight", common.ErrInFlight, http.StatusConflict, "CONFLICT"},
		{"reserved item", workspace.ErrItemReserved, http.StatusConflict, "CONFLICT"},
		{"finalizing", fmt.Errorf("%w: invoice", workspace.ErrFinalizing), http.StatusConflict, "CONFLICT"},
		{"generation failed", enrichment.ErrGenerationFailed, http.StatusBadGateway, "UPSTREAM_ERROR"},
		{"unknown", errors.New("connection reset by peer"), http.StatusInternalServerError, "SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho()
			c, rec := newJSONContext(e, http.MethodGet, "/", "")

			require.NoError(t, sendServiceError(c, "load things", tt.err))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Error.Code)
		})
	}
}

func TestSendServiceError_HidesInternalDetail(t *testing.T) {
	e := newTestEcho()
	c, rec := newJSONContext(e, http.MethodGet, "/", "")

	require.NoError(t, sendServiceError(c, "load things", errors.New("pq: password authentication failed")))

	resp := decodeError(t, rec)
	assert.Equal(t, "failed to load things: operation could not be completed", resp.Error.Message)
	assert.NotContains(t, rec.Body.String(), "password authentication")
}

func TestSendAuthError(t *testing.T) {
	e := newTestEcho()
	c, rec := newJSONContext(e, http.MethodPost, "/", "")

	err := &services.AuthError{Code: services.AuthCodeTooManyRequests}
	require.NoError(t, sendAuthError(c, fmt.Errorf("login: %w", err)))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, services.AuthCodeTooManyRequests, resp.Error.Code)
	assert.Equal(t, services.AuthErrorMessage(services.AuthCodeTooManyRequests), resp.Error.Message)
}

func TestSendAuthError_UnknownFailure(t *testing.T) {
	e := newTestEcho()
	c, rec := newJSONContext(e, http.MethodPost, "/", "")

	require.NoError(t, sendAuthError(c, errors.New("boom")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Login failed. Please try again.", decodeError(t, rec).Error.Message)
}
