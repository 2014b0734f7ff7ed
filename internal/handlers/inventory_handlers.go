package handlers

import (
	"net/http"
	"strconv"

	"invoiceflow/internal/common"
	"invoiceflow/internal/enrichment"
	"invoiceflow/internal/models"
	"invoiceflow/internal/services"

	"github.com/labstack/echo/v4"
)

// InventoryHandlers handles HTTP requests for the catalog
type InventoryHandlers struct {
	inventoryService services.InventoryService
}

func NewInventoryHandlers(inventoryService services.InventoryService) *InventoryHandlers {
	return &InventoryHandlers{inventoryService: inventoryService}
}

// ItemRequest is the create and full-update payload.
type ItemRequest struct {
	models.InventoryItem
	GenerateDescription bool `json:"generateDescription"`
}

type AdjustStockRequest struct {
	Delta int `json:"delta"`
}

// ListItems handles GET /inventory
// @Summary List catalog items with stock badges
// @Tags inventory
// @Produce json
// @Param q query string false "name contains"
// @Param category query string false "category"
// @Param status query string false "out_of_stock, low_stock or in_stock"
// @Success 200 {array} models.InventoryItemView
// @Router /inventory [get]
func (h *InventoryHandlers) ListItems(c echo.Context) error {
	status := c.QueryParam("status")
	switch status {
	case "", models.StockStatusOut, models.StockStatusLow, models.StockStatusIn:
	default:
		return common.SendValidationError(c, "status", "must be out_of_stock, low_stock or in_stock")
	}

	filter := &models.InventorySearchFilter{
		Query:    common.SanitizeSearchQuery(c.QueryParam("q")),
		Category: c.QueryParam("category"),
		Status:   status,
	}
	items := h.inventoryService.List(c.Request().Context(), filter)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"items": items,
		"total": len(items),
	})
}

// SearchItems handles GET /inventory/search against the persisted catalog.
// @Summary Name-prefix search
// @Tags inventory
// @Produce json
// @Param prefix query string true "name prefix"
// @Param limit query int false "max results" default(20)
// @Success 200 {array} models.InventoryItem
// @Router /inventory/search [get]
func (h *InventoryHandlers) SearchItems(c echo.Context) error {
	prefix := c.QueryParam("prefix")
	if err := common.ValidateRequiredString(prefix, "prefix"); err != nil {
		return common.SendValidationError(c, "prefix", err.Error())
	}
	limit := 20
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return common.SendValidationError(c, "limit", "must be a number")
		}
		limit = n
	}
	limit, _, err := common.ValidatePaginationParams(limit, 0)
	if err != nil {
		return common.SendValidationError(c, "limit", err.Error())
	}

	items, err := h.inventoryService.SearchByPrefix(c.Request().Context(), prefix, limit)
	if err != nil {
		return sendServiceError(c, "search inventory", err)
	}
	return c.JSON(http.StatusOK, items)
}

// GetItem handles GET /inventory/:id
func (h *InventoryHandlers) GetItem(c echo.Context) error {
	item, err := h.inventoryService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return sendServiceError(c, "get item", err)
	}
	return c.JSON(http.StatusOK, item)
}

// CreateItem handles POST /inventory
// @Summary Add a catalog item
// @Tags inventory
// @Accept json
// @Produce json
// @Param body body ItemRequest true "item"
// @Success 201 {object} services.ItemResult
// @Router /inventory [post]
func (h *InventoryHandlers) CreateItem(c echo.Context) error {
	var req ItemRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := c.Validate(&req.InventoryItem); err != nil {
		return common.SendValidationErrors(c, err)
	}
	if err := common.ValidateDateFormat(req.PurchaseDate, "purchaseDate"); err != nil {
		return common.SendValidationError(c, "purchaseDate", err.Error())
	}

	result, err := h.inventoryService.Create(c.Request().Context(), services.ItemInput{
		Item:                req.InventoryItem,
		GenerateDescription: req.GenerateDescription,
	})
	if err != nil {
		return sendServiceError(c, "create item", err)
	}
	return c.JSON(http.StatusCreated, result)
}

// UpdateItem handles PUT /inventory/:id
func (h *InventoryHandlers) UpdateItem(c echo.Context) error {
	var req ItemRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := c.Validate(&req.InventoryItem); err != nil {
		return common.SendValidationErrors(c, err)
	}
	if err := common.ValidateDateFormat(req.PurchaseDate, "purchaseDate"); err != nil {
		return common.SendValidationError(c, "purchaseDate", err.Error())
	}

	result, err := h.inventoryService.Update(c.Request().Context(), c.Param("id"), services.ItemInput{
		Item:                req.InventoryItem,
		GenerateDescription: req.GenerateDescription,
	})
	if err != nil {
		return sendServiceError(c, "update item", err)
	}
	return c.JSON(http.StatusOK, result)
}

// AdjustStock handles POST /inventory/:id/adjust
// @Summary Move stock by a signed delta
// @Tags inventory
// @Accept json
// @Produce json
// @Param id path string true "item id"
// @Param body body AdjustStockRequest true "delta"
// @Success 200 {object} services.ItemResult
// @Router /inventory/{id}/adjust [post]
func (h *InventoryHandlers) AdjustStock(c echo.Context) error {
	var req AdjustStockRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Delta == 0 {
		return common.SendValidationError(c, "delta", "must not be zero")
	}

	result, err := h.inventoryService.AdjustStock(c.Request().Context(), c.Param("id"), req.Delta)
	if err != nil {
		return sendServiceError(c, "adjust stock", err)
	}
	return c.JSON(http.StatusOK, result)
}

// DeleteItem handles DELETE /inventory/:id
func (h *InventoryHandlers) DeleteItem(c echo.Context) error {
	if err := h.inventoryService.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return sendServiceError(c, "delete item", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DescribeItem handles POST /inventory/describe
// @Summary Generate a catalog description
// @Tags inventory
// @Accept json
// @Produce json
// @Param body body enrichment.Input true "category, item name and price"
// @Success 200 {object} map[string]string
// @Failure 502 {object} common.ErrorResponse
// @Router /inventory/describe [post]
func (h *InventoryHandlers) DescribeItem(c echo.Context) error {
	var req enrichment.Input
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	description, err := h.inventoryService.Describe(c.Request().Context(), req)
	if err != nil {
		return sendServiceError(c, "generate description", err)
	}
	return c.JSON(http.StatusOK, map[string]string{"description": description})
}
