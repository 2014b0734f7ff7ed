package handlers

import (
	"errors"
	"net/http"

	"invoiceflow/internal/common"
	"invoiceflow/internal/enrichment"
	"invoiceflow/internal/logger"
	"invoiceflow/internal/reports"
	"invoiceflow/internal/repositories"
	"invoiceflow/internal/services"
	"invoiceflow/internal/shortcuts"
	"invoiceflow/internal/workspace"

	"github.com/labstack/echo/v4"
)

var clientErrors = []error{
	workspace.ErrUnknownKind,
	workspace.ErrInvalidQuantity,
	workspace.ErrInsufficientStock,
	workspace.ErrNegativeStock,
	services.ErrEmptySale,
	services.ErrSaleDateRequired,
	services.ErrInvalidBackup,
	services.ErrInvalidPayment,
	enrichment.ErrInvalidInput,
	reports.ErrUnknownWindow,
	reports.ErrCustomRange,
	shortcuts.ErrUnboundShortcut,
}

var notFoundErrors = []error{
	workspace.ErrItemNotFound,
	workspace.ErrLineNotFound,
	repositories.ErrNotFound,
	services.ErrPDFUnavailable,
}

var conflictErrors = []error{
	common.ErrInFlight,
	workspace.ErrItemReserved,
	workspace.ErrFinalizing,
	workspace.ErrDuplicateItem,
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// sendServiceError maps domain sentinels to the error envelope. Anything
// unrecognized is logged and answered with a generic message.
func sendServiceError(c echo.Context, operation string, err error) error {
	switch {
	case isAny(err, clientErrors):
		return common.SendClientError(c, err.Error())
	case isAny(err, notFoundErrors):
		return c.JSON(http.StatusNotFound, common.CreateErrorResponse("NOT_FOUND", err.Error(), nil))
	case isAny(err, conflictErrors):
		return common.SendConflictError(c, err.Error())
	case errors.Is(err, enrichment.ErrGenerationFailed):
		return common.SendBadGatewayError(c, err.Error())
	}

	log := logger.WithRequestID(c.Response().Header().Get(echo.HeaderXRequestID))
	log.Error().Err(err).Str("component", "api").Str("operation", operation).Str("path", c.Path()).Msg("request failed")
	return common.SendServerError(c, common.SecureErrorMessage(operation, err).Error())
}

// authStatus is the HTTP status of each identity error code.
var authStatus = map[string]int{
	services.AuthCodeInvalidEmail:       http.StatusBadRequest,
	services.AuthCodeWeakPassword:       http.StatusBadRequest,
	services.AuthCodeExpiredActionCode:  http.StatusBadRequest,
	services.AuthCodeInvalidCredential:  http.StatusUnauthorized,
	services.AuthCodeInvalidIDToken:     http.StatusUnauthorized,
	services.AuthCodeUserDisabled:       http.StatusForbidden,
	services.AuthCodeEmailAlreadyExists: http.StatusConflict,
	services.AuthCodeTooManyRequests:    http.StatusTooManyRequests,
	services.AuthCodeNetworkFailed:      http.StatusBadGateway,
}

func sendAuthError(c echo.Context, err error) error {
	var authErr *services.AuthError
	if !errors.As(err, &authErr) {
		log := logger.WithComponent("auth")
		log.Error().Err(err).Str("path", c.Path()).Msg("auth request failed")
		return common.SendServerError(c, services.AuthErrorMessage(""))
	}
	status, ok := authStatus[authErr.Code]
	if !ok {
		status = http.StatusBadRequest
	}
	return c.JSON(status, common.CreateErrorResponse(authErr.Code, authErr.Error(), nil))
}
