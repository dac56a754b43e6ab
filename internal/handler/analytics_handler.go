package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"docscan/internal/service"
)

// AnalyticsHandler serves the admin dashboard figures.
type AnalyticsHandler struct {
	service service.AnalyticsService
}

// NewAnalyticsHandler builds an AnalyticsHandler.
func NewAnalyticsHandler(svc service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: svc}
}

// Summary godoc
// @Summary Usage analytics
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.Analytics
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/analytics [get]
func (h *AnalyticsHandler) Summary(c echo.Context) error {
	summary, err := h.service.Summary(c.Request().Context())
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}
