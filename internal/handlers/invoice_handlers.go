package handlers

import (
	"net/http"
	"strconv"
	"time"

	"invoiceflow/internal/common"
	"invoiceflow/internal/models"
	"invoiceflow/internal/services"

	"github.com/labstack/echo/v4"
)

// InvoiceHandlers handles HTTP requests for finalized invoices and direct sales
type InvoiceHandlers struct {
	invoiceService services.InvoiceService
}

// NewInvoiceHandlers creates a new invoice handlers instance
func NewInvoiceHandlers(invoiceService services.InvoiceService) *InvoiceHandlers {
	return &InvoiceHandlers{invoiceService: invoiceService}
}

type PaymentRequest struct {
	AmountPaid float64    `json:"amountPaid" validate:"gte=0"`
	PaidAt     *time.Time `json:"paidAt,omitempty"`
}

func pagination(c echo.Context) (int, int, error) {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	return common.ValidatePaginationParams(limit, offset)
}

func dateParam(c echo.Context, name string) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	if err := common.ValidateDateFormat(raw, name); err != nil {
		return nil, err
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetInvoices handles GET /invoices
// @Summary List invoices, newest first
// @Tags invoices
// @Produce json
// @Param status query string false "Unpaid, Partial or Paid"
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD"
// @Param limit query int false "page size" default(50)
// @Param offset query int false "offset"
// @Success 200 {array} models.Invoice
// @Router /invoices [get]
func (h *InvoiceHandlers) GetInvoices(c echo.Context) error {
	limit, offset, err := pagination(c)
	if err != nil {
		return common.SendValidationError(c, "pagination", err.Error())
	}
	filter := &models.InvoiceListFilter{Limit: limit, Offset: offset}

	switch status := models.InvoiceStatus(c.QueryParam("status")); status {
	case "", models.InvoiceStatusUnpaid, models.InvoiceStatusPartial, models.InvoiceStatusPaid:
		filter.Status = status
	default:
		return common.SendValidationError(c, "status", "must be Unpaid, Partial or Paid")
	}
	if filter.From, err = dateParam(c, "from"); err != nil {
		return common.SendValidationError(c, "from", err.Error())
	}
	if filter.To, err = dateParam(c, "to"); err != nil {
		return common.SendValidationError(c, "to", err.Error())
	}
	if filter.From != nil && filter.To != nil {
		if err := common.ValidateDateRange(*filter.From, *filter.To); err != nil {
			return common.SendValidationError(c, "to", err.Error())
		}
	}

	invoices, err := h.invoiceService.List(c.Request().Context(), filter)
	if err != nil {
		return sendServiceError(c, "list invoices", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"invoices": invoices,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetInvoice handles GET /invoices/:number
func (h *InvoiceHandlers) GetInvoice(c echo.Context) error {
	invoice, err := h.invoiceService.Get(c.Request().Context(), c.Param("number"))
	if err != nil {
		return sendServiceError(c, "get invoice", err)
	}
	return c.JSON(http.StatusOK, invoice)
}

// RecordPayment handles PUT /invoices/:number/payment
// @Summary Record the amount paid
// @Tags invoices
// @Accept json
// @Produce json
// @Param number path string true "invoice number"
// @Param body body PaymentRequest true "payment"
// @Success 200 {object} models.Invoice
// @Router /invoices/{number}/payment [put]
func (h *InvoiceHandlers) RecordPayment(c echo.Context) error {
	var req PaymentRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return common.SendValidationErrors(c, err)
	}

	invoice, err := h.invoiceService.RecordPayment(c.Request().Context(), c.Param("number"), req.AmountPaid, req.PaidAt)
	if err != nil {
		return sendServiceError(c, "record payment", err)
	}
	return c.JSON(http.StatusOK, invoice)
}

// GetInvoicePDF handles GET /invoices/:number/pdf. With ?redirect=true the
// client is sent straight to the presigned object URL.
func (h *InvoiceHandlers) GetInvoicePDF(c echo.Context) error {
	url, err := h.invoiceService.PDFURL(c.Request().Context(), c.Param("number"))
	if err != nil {
		return sendServiceError(c, "get invoice pdf", err)
	}
	if c.QueryParam("redirect") == "true" {
		return c.Redirect(http.StatusFound, url)
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}

// GetDirectSales handles GET /direct-sales
func (h *InvoiceHandlers) GetDirectSales(c echo.Context) error {
	limit, offset, err := pagination(c)
	if err != nil {
		return common.SendValidationError(c, "pagination", err.Error())
	}
	entries, err := h.invoiceService.ListDirectSales(c.Request().Context(), limit, offset)
	if err != nil {
		return sendServiceError(c, "list direct sales", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"directSales": entries,
		"limit":       limit,
		"offset":      offset,
	})
}

// GetDirectSale handles GET /direct-sales/:number
func (h *InvoiceHandlers) GetDirectSale(c echo.Context) error {
	entry, err := h.invoiceService.GetDirectSale(c.Request().Context(), c.Param("number"))
	if err != nil {
		return sendServiceError(c, "get direct sale", err)
	}
	return c.JSON(http.StatusOK, entry)
}
