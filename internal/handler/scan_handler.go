package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"docscan/internal/errors"
	"docscan/internal/service"
)

// ScanHandler handles document uploads.
type ScanHandler struct {
	service  service.ScanService
	maxBytes int64
}

// NewScanHandler builds a ScanHandler. Uploads larger than maxBytes are rejected.
func NewScanHandler(svc service.ScanService, maxBytes int64) *ScanHandler {
	return &ScanHandler{service: svc, maxBytes: maxBytes}
}

// Scan godoc
// @Summary Upload a text document and find its closest match
// @Description Costs one credit. The upload is compared with every stored document by Levenshtein similarity.
// @Tags scan
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param document formData file true "Plain text document"
// @Success 200 {object} service.ScanResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 413 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /scan [post]
func (h *ScanHandler) Scan(c echo.Context) error {
	claims, err := ClaimsFrom(c)
	if err != nil {
		return toHTTPError(c, err)
	}

	header, err := c.FormFile("document")
	if err != nil {
		return toHTTPError(c, errors.ErrMissingDocument)
	}
	if header.Size > h.maxBytes {
		return toHTTPError(c, errors.ErrDocumentTooLarge)
	}

	file, err := header.Open()
	if err != nil {
		return toHTTPError(c, errors.ErrMissingDocument)
	}
	defer file.Close()

	// One byte past the cap is enough for the service to reject the upload.
	content, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		return toHTTPError(c, errors.Storage("read upload", err))
	}

	result, err := h.service.Scan(c.Request().Context(), claims.UserID, header.Filename, content)
	if err != nil {
		return toHTTPError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}
