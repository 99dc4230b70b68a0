package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"vaultbook/internal/services"
)

// ExportHandler streams a user's ledger as a spreadsheet download.
type ExportHandler struct {
	export *services.ExportService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(export *services.ExportService) *ExportHandler {
	return &ExportHandler{export: export}
}

// Download builds the two-sheet workbook for the authenticated user and
// writes it as an attachment.
func (h *ExportHandler) Download(c *gin.Context) {
	username, err := getUsername(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	export, err := h.export.BuildExport(username)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filename := fmt.Sprintf("%s_ledger.xlsx", export.Username)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Status(http.StatusOK)

	if err := h.export.WriteXLSX(export, c.Writer); err != nil {
		// Headers are already written; log and abort the stream.
		_ = c.Error(err)
	}
}
