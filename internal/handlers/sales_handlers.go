package handlers

import (
	"net/http"

	"invoiceflow/internal/common"
	"invoiceflow/internal/models"
	"invoiceflow/internal/services"
	"invoiceflow/internal/workspace"

	"github.com/labstack/echo/v4"
)

// SalesHandlers drive the pending invoice and direct sale.
type SalesHandlers struct {
	saleService services.SaleService
}

func NewSalesHandlers(saleService services.SaleService) *SalesHandlers {
	return &SalesHandlers{saleService: saleService}
}

type AddLineRequest struct {
	ItemID   string `json:"itemId" validate:"required"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}

type SaleDateRequest struct {
	SaleDate string `json:"saleDate" validate:"required"`
}

func kindParam(c echo.Context) (workspace.Kind, error) {
	return workspace.ParseKind(c.Param("kind"))
}

// GetPending handles GET /sales/:kind
// @Summary Pending invoice or direct sale with totals
// @Tags sales
// @Produce json
// @Param kind path string true "invoice or direct-sale"
// @Success 200 {object} services.PendingView
// @Router /sales/{kind} [get]
func (h *SalesHandlers) GetPending(c echo.Context) error {
	kind, err := kindParam(c)
	if err != nil {
		return sendServiceError(c, "load sale", err)
	}
	view, err := h.saleService.Pending(c.Request().Context(), kind)
	if err != nil {
		return sendServiceError(c, "load sale", err)
	}
	return c.JSON(http.StatusOK, view)
}

// AddLine handles POST /sales/:kind/lines
// @Summary Add an item, reserving its stock
// @Tags sales
// @Accept json
// @Produce json
// @Param kind path string true "invoice or direct-sale"
// @Param body body AddLineRequest true "item and quantity"
// @Success 201 {object} workspace.Result
// @Router /sales/{kind}/lines [post]
func (h *SalesHandlers) AddLine(c echo.Context) error {
	kind, err := kindParam(c)
	if err != nil {
		return sendServiceError(c, "add line", err)
	}
	var req AddLineRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return common.SendValidationErrors(c, err)
	}

	result, err := h.saleService.AddLine(c.Request().Context(), kind, req.ItemID, req.Quantity)
	if err != nil {
		return sendServiceError(c, "add line", err)
	}
	return c.JSON(http.StatusCreated, result)
}

// RemoveLine handles DELETE /sales/:kind/lines/:lineId
func (h *SalesHandlers) RemoveLine(c echo.Context) error {
	kind, err := kindParam(c)
	if err != nil {
		return sendServiceError(c, "remove line", err)
	}
	result, err := h.saleService.RemoveLine(c.Request().Context(), kind, c.Param("lineId"))
	if err != nil {
		return sendServiceError(c, "remove line", err)
	}
	return c.JSON(http.StatusOK, result)
}

// ClearSale handles DELETE /sales/:kind and puts every reserved unit back.
func (h *SalesHandlers) ClearSale(c echo.Context) error {
	kind, err := kindParam(c)
	if err != nil {
		return sendServiceError(c, "clear sale", err)
	}
	result, err := h.saleService.Clear(c.Request().Context(), kind)
	if err != nil {
		return sendServiceError(c, "clear sale", err)
	}
	return c.JSON(http.StatusOK, result)
}

// Finalize handles POST /sales/:kind/finalize
// @Summary Finalize the pending sale
// @Tags sales
// @Produce json
// @Param kind path string true "invoice or direct-sale"
// @Success 201 {object} services.FinalizeResult
// @Failure 409 {object} common.ErrorResponse
// @Router /sales/{kind}/finalize [post]
func (h *SalesHandlers) Finalize(c echo.Context) error {
	kind, err := kindParam(c)
	if err != nil {
		return sendServiceError(c, "finalize sale", err)
	}
	result, err := h.saleService.Finalize(c.Request().Context(), kind)
	if err != nil {
		return sendServiceError(c, "finalize sale", err)
	}
	return c.JSON(http.StatusCreated, result)
}

// NewInvoice handles POST /sales/invoice/new
func (h *SalesHandlers) NewInvoice(c echo.Context) error {
	view, err := h.saleService.NewInvoice(c.Request().Context())
	if err != nil {
		return sendServiceError(c, "start new invoice", err)
	}
	return c.JSON(http.StatusOK, view)
}

// SetBuyer handles PUT /sales/invoice/buyer for the pending invoice only.
func (h *SalesHandlers) SetBuyer(c echo.Context) error {
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

	if err := h.saleService.SetBuyer(c.Request().Context(), req); err != nil {
		return sendServiceError(c, "set buyer", err)
	}
	return h.pending(c, workspace.KindInvoice)
}

// SetSaleDate handles PUT /sales/direct-sale/sale-date
func (h *SalesHandlers) SetSaleDate(c echo.Context) error {
	var req SaleDateRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return common.SendValidationErrors(c, err)
	}
	if err := common.ValidateDateFormat(req.SaleDate, "saleDate"); err != nil {
		return common.SendValidationError(c, "saleDate", err.Error())
	}

	if err := h.saleService.SetSaleDate(c.Request().Context(), req.SaleDate); err != nil {
		return sendServiceError(c, "set sale date", err)
	}
	return h.pending(c, workspace.KindDirectSale)
}

func (h *SalesHandlers) pending(c echo.Context, kind workspace.Kind) error {
	view, err := h.saleService.Pending(c.Request().Context(), kind)
	if err != nil {
		return sendServiceError(c, "load sale", err)
	}
	return c.JSON(http.StatusOK, view)
}
