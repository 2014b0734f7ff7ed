package handlers

import (
	"net/http"

	"invoiceflow/internal/common"
	"invoiceflow/internal/models"
	"invoiceflow/internal/services"

	"github.com/labstack/echo/v4"
)

// SettingsHandlers serve the counters, the default buyer and saved buyers.
type SettingsHandlers struct {
	settingsService services.SettingsService
}

func NewSettingsHandlers(settingsService services.SettingsService) *SettingsHandlers {
	return &SettingsHandlers{settingsService: settingsService}
}

// GetSettings handles GET /settings
// @Summary Counters and default buyer address
// @Tags settings
// @Produce json
// @Success 200 {object} services.SettingsView
// @Router /settings [get]
func (h *SettingsHandlers) GetSettings(c echo.Context) error {
	view, err := h.settingsService.Get(c.Request().Context())
	if err != nil {
		return sendServiceError(c, "load settings", err)
	}
	return c.JSON(http.StatusOK, view)
}

// UpdateBuyerAddress handles PUT /settings/buyer-address
func (h *SettingsHandlers) UpdateBuyerAddress(c echo.Context) error {
	var req models.BuyerAddress
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return common.SendValidationErrors(c, err)
	}
	if err := common.ValidateGSTIN(req.GSTIN, "gstin"); err != nil {
		return common.SendValidationError(c, "gstin", err.Error())
	}

	ctx := c.Request().Context()
	if err := h.settingsService.SetBuyerAddress(ctx, req); err != nil {
		return sendServiceError(c, "save buyer address", err)
	}
	view, err := h.settingsService.Get(ctx)
	if err != nil {
		return sendServiceError(c, "load settings", err)
	}
	return c.JSON(http.StatusOK, view)
}

// ListBuyers handles GET /buyers
func (h *SettingsHandlers) ListBuyers(c echo.Context) error {
	buyers, err := h.settingsService.ListBuyers(c.Request().Context())
	if err != nil {
		return sendServiceError(c, "list buyers", err)
	}
	return c.JSON(http.StatusOK, buyers)
}

// GetBuyer handles GET /buyers/:gstin
// @Summary Look up a saved buyer by GSTIN
// @Tags settings
// @Produce json
// @Param gstin path string true "GSTIN"
// @Success 200 {object} models.BuyerProfile
// @Failure 404 {object} common.ErrorResponse
// @Router /buyers/{gstin} [get]
func (h *SettingsHandlers) GetBuyer(c echo.Context) error {
	buyer, err := h.settingsService.LookupBuyer(c.Request().Context(), c.Param("gstin"))
	if err != nil {
		return sendServiceError(c, "look up buyer", err)
	}
	return c.JSON(http.StatusOK, buyer)
}
