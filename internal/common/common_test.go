package common

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInflightGuard(t *testing.T) {
	g := NewInflightGuard()

	release, err := g.Acquire("finalize:invoice")
	require.NoError(t, err)
	assert.True(t, g.Busy("finalize:invoice"))

	_, err = g.Acquire("finalize:invoice")
	assert.ErrorIs(t, err, ErrInFlight)

	other, err := g.Acquire("finalize:direct_sale")
	require.NoError(t, err)
	other()

	release()
	release()
	assert.False(t, g.Busy("finalize:invoice"))

	again, err := g.Acquire("finalize:invoice")
	require.NoError(t, err)
	again()
}

func TestValidateGSTIN(t *testing.T) {
	assert.NoError(t, ValidateGSTIN("", "gstin"))
	assert.NoError(t, ValidateGSTIN("URP", "gstin"))
	assert.NoError(t, ValidateGSTIN("29abcde1234f1z5", "gstin"))
	assert.Error(t, ValidateGSTIN("29ABCDE1234", "gstin"))
	assert.Error(t, ValidateGSTIN("2XABCDE1234F1Z5", "gstin"))
}

func TestValidatorDetails(t *testing.T) {
	type input struct {
		Name  string  `validate:"required"`
		Price float64 `validate:"gt=0"`
	}
	v := NewValidator()
	err := v.Validate(&input{})
	require.Error(t, err)

	details := ValidationDetails(err)
	assert.Equal(t, "is required", details["name"])
	assert.Equal(t, "must be greater than 0", details["price"])
}

func TestSendConflictError_Envelope(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	require.NoError(t, SendConflictError(c, "finalize already running"))
	assert.Equal(t, http.StatusConflict, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "CONFLICT", body.Error.Code)
	assert.Equal(t, "finalize already running", body.Error.Message)
}

func TestValidatePaginationParams(t *testing.T) {
	limit, offset, err := ValidatePaginationParams(0, -3)
	require.NoError(t, err)
	assert.Equal(t, 50, limit)
	assert.Equal(t, 0, offset)

	_, _, err = ValidatePaginationParams(10, 2000000)
	assert.Error(t, err)
}
