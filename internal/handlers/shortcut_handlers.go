package handlers

import (
	"net/http"

	"invoiceflow/internal/common"
	"invoiceflow/internal/services"
	"invoiceflow/internal/shortcuts"

	"github.com/labstack/echo/v4"
)

type ShortcutHandlers struct {
	shortcutService services.ShortcutService
}

func NewShortcutHandlers(shortcutService services.ShortcutService) *ShortcutHandlers {
	return &ShortcutHandlers{shortcutService: shortcutService}
}

// ShortcutRequest is either a key event or a combo such as "Ctrl+P".
type ShortcutRequest struct {
	shortcuts.KeyEvent
	Combo string `json:"combo,omitempty"`
}

// Dispatch handles POST /shortcuts
// @Summary Run the action bound to a keyboard shortcut
// @Tags shortcuts
// @Accept json
// @Produce json
// @Param body body ShortcutRequest true "key event or combo"
// @Success 200 {object} services.ShortcutOutcome
// @Router /shortcuts [post]
func (h *ShortcutHandlers) Dispatch(c echo.Context) error {
	var req ShortcutRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	ev := req.KeyEvent
	if req.Combo != "" {
		parsed, err := shortcuts.Parse(req.Combo)
		if err != nil {
			return common.SendValidationError(c, "combo", err.Error())
		}
		ev = parsed
	}

	outcome, err := h.shortcutService.Dispatch(c.Request().Context(), ev)
	if err != nil {
		return sendServiceError(c, "run shortcut", err)
	}
	return c.JSON(http.StatusOK, outcome)
}
