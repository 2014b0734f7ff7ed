package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"invoiceflow/internal/common"
	"invoiceflow/internal/models"
	"invoiceflow/internal/services"

	"github.com/labstack/echo/v4"
)

// maxBackupSize bounds an uploaded backup file.
const maxBackupSize = 10 << 20

// BackupHandlers export and import the catalog with the invoice counter.
type BackupHandlers struct {
	backupService services.BackupService
	loc           *time.Location
}

func NewBackupHandlers(backupService services.BackupService, loc *time.Location) *BackupHandlers {
	if loc == nil {
		loc = time.UTC
	}
	return &BackupHandlers{backupService: backupService, loc: loc}
}

// Export handles GET /backup/export
// @Summary Download the catalog and invoice counter
// @Tags backup
// @Produce json
// @Success 200 {object} models.BackupDocument
// @Router /backup/export [get]
func (h *BackupHandlers) Export(c echo.Context) error {
	doc, err := h.backupService.Export(c.Request().Context())
	if err != nil {
		return sendServiceError(c, "export data", err)
	}
	filename := services.BackupFilename(time.Now().In(h.loc))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", filename))
	return c.JSONPretty(http.StatusOK, doc, "  ")
}

// Import handles POST /backup/import. The file comes either as the "file"
// field of a multipart form or as the raw JSON body. A malformed file leaves
// everything unchanged.
// @Summary Replace the catalog from a backup
// @Tags backup
// @Accept json,mpfd
// @Produce json
// @Param file formData file false "backup file"
// @Success 200 {object} models.ImportResult
// @Failure 400 {object} common.ErrorResponse
// @Router /backup/import [post]
func (h *BackupHandlers) Import(c echo.Context) error {
	data, err := readBackup(c)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	doc, err := h.backupService.ParseBackup(data)
	if err != nil {
		return sendServiceError(c, "import data", err)
	}
	result, err := h.backupService.Import(c.Request().Context(), doc)
	if err != nil {
		return sendServiceError(c, "import data", err)
	}
	return c.JSON(http.StatusOK, struct {
		*models.ImportResult
		Notices []models.Notice `json:"notices"`
	}{
		ImportResult: result,
		Notices: []models.Notice{{
			Level:   models.NoticeSuccess,
			Message: fmt.Sprintf("Imported %d items", result.ItemsImported),
		}},
	})
}

func readBackup(c echo.Context) ([]byte, error) {
	req := c.Request()
	if strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("backup file is required")
		}
		if fh.Size > maxBackupSize {
			return nil, fmt.Errorf("backup file is too large")
		}
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("backup file could not be read")
		}
		defer f.Close()
		return io.ReadAll(io.LimitReader(f, maxBackupSize))
	}

	data, err := io.ReadAll(io.LimitReader(req.Body, maxBackupSize+1))
	if err != nil {
		return nil, fmt.Errorf("backup file could not be read")
	}
	if len(data) > maxBackupSize {
		return nil, fmt.Errorf("backup file is too large")
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("backup file is required")
	}
	return data, nil
}
