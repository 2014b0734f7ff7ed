package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"invoiceflow/internal/models"

	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	SessionKey contextKey = "session"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// CreateErrorResponse creates a standardized error response
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// SendValidationError sends a validation error response
func SendValidationError(c echo.Context, field, message string) error {
	details := map[string]string{
		field: message,
	}
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("VALIDATION_ERROR", "Validation failed", details))
}

// SendValidationErrors converts validator failures into one envelope.
func SendValidationErrors(c echo.Context, err error) error {
	details := ValidationDetails(err)
	if len(details) == 0 {
		return SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("VALIDATION_ERROR", "Validation failed", details))
}

// SendClientError sends a client error response
func SendClientError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("CLIENT_ERROR", message, nil))
}

// SendServerError sends a server error response
func SendServerError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, CreateErrorResponse("SERVER_ERROR", message, nil))
}

// SendBadGatewayError reports a failed call to an upstream collaborator.
func SendBadGatewayError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadGateway, CreateErrorResponse("UPSTREAM_ERROR", message, nil))
}

// SendConflictError is returned while the same operation is still running.
func SendConflictError(c echo.Context, message string) error {
	return c.JSON(http.StatusConflict, CreateErrorResponse("CONFLICT", message, nil))
}

// SendUnauthorizedError sends an unauthorized error response
func SendUnauthorizedError(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, CreateErrorResponse("UNAUTHORIZED", "Unauthorized access", nil))
}

// SendRedirectError carries the route the client should navigate to.
func SendRedirectError(c echo.Context, status int, code, message, redirect string) error {
	return c.JSON(status, CreateErrorResponse(code, message, map[string]string{"redirect": redirect}))
}

// ValidateDateFormat validates date strings
func ValidateDateFormat(dateStr, fieldName string) error {
	if strings.TrimSpace(dateStr) == "" {
		return nil // Empty is allowed, will be handled elsewhere
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return fmt.Errorf("%s must be in YYYY-MM-DD format", fieldName)
	}

	// Check for reasonable date bounds
	if date.After(time.Now().AddDate(10, 0, 0)) {
		return fmt.Errorf("%s cannot be more than 10 years in the future", fieldName)
	}
	if date.Before(time.Now().AddDate(-100, 0, 0)) {
		return fmt.Errorf("%s cannot be more than 100 years ago", fieldName)
	}

	return nil
}

var gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][A-Z0-9]Z[A-Z0-9]$`)

// ValidateGSTIN validates GSTIN format. Placeholder values such as "URP"
// are accepted; they mark an unregistered buyer.
func ValidateGSTIN(gstin, fieldName string) error {
	buyer := models.BuyerAddress{GSTIN: gstin}
	if !buyer.HasRealGSTIN() {
		return nil
	}

	normalized := models.NormalizeGSTIN(gstin)
	if len(normalized) != 15 {
		return fmt.Errorf("%s must be exactly 15 characters", fieldName)
	}
	if !gstinPattern.MatchString(normalized) {
		return fmt.Errorf("%s has invalid GSTIN format", fieldName)
	}

	return nil
}

// ValidateRequiredString validates required string fields
func ValidateRequiredString(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// SanitizeSearchQuery trims a free-text query and bounds its length.
func SanitizeSearchQuery(query string) string {
	query = strings.TrimSpace(query)
	if len(query) > 100 {
		query = query[:100]
	}
	return query
}

// SecureErrorMessage creates standardized error messages to prevent information leakage
func SecureErrorMessage(operation string, err error) error {
	if err == nil {
		return nil
	}

	// Log the full error details internally (caller should handle logging)
	// Return a generic message to the user
	return fmt.Errorf("failed to %s: operation could not be completed", operation)
}

// ValidatePaginationParams validates pagination parameters
func ValidatePaginationParams(limit, offset int) (int, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}

	if offset < 0 {
		offset = 0
	}
	if offset > 1000000 {
		return 0, 0, errors.New("offset cannot exceed 1,000,000")
	}

	return limit, offset, nil
}

// ValidateDateRange validates date ranges to prevent abuse
func ValidateDateRange(startDate, endDate time.Time) error {
	if endDate.Before(startDate) {
		return fmt.Errorf("end date cannot be before start date")
	}

	duration := endDate.Sub(startDate)
	maxDuration := time.Hour * 24 * 365 * 10 // 10 years
	if duration > maxDuration {
		return fmt.Errorf("date range cannot exceed 10 years")
	}

	return nil
}

// WithSession stores the authenticated session on the context.
func WithSession(ctx context.Context, s *models.Session) context.Context {
	return context.WithValue(ctx, SessionKey, s)
}

// GetSessionFromContext extracts the session from the request context
func GetSessionFromContext(ctx context.Context) (*models.Session, bool) {
	s, ok := ctx.Value(SessionKey).(*models.Session)
	return s, ok && s != nil
}
