package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"docscan/internal/errors"
	"docscan/internal/model"
	"docscan/internal/service"
)

// CreditHandler handles the credit request workflow.
type CreditHandler struct {
	service service.CreditRequestService
}

// NewCreditHandler builds a CreditHandler.
func NewCreditHandler(svc service.CreditRequestService) *CreditHandler {
	return &CreditHandler{service: svc}
}

// CreditRequestRequest is the body of POST /credits/request.
type CreditRequestRequest struct {
	Reason string `json:"reason" example:"Grading the midterm essays"`
}

// ResolveRequest is the body of POST /admin/credit-requests/:id.
type ResolveRequest struct {
	Approved *bool `json:"approved" validate:"required"`
}

// CreditRequestsResponse wraps the admin queue.
type CreditRequestsResponse struct {
	Requests []model.CreditRequestView `json:"requests"`
}

// Request godoc
// @Summary Ask an admin for more credits
// @Tags credits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreditRequestRequest true "Reason for the request"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /credits/request [post]
func (h *CreditHandler) Request(c echo.Context) error {
	claims, err := ClaimsFrom(c)
	if err != nil {
		return toHTTPError(c, err)
	}

	var req CreditRequestRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}

	if _, err := h.service.Create(c.Request().Context(), claims.UserID, req.Reason); err != nil {
		return toHTTPError(c, err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Credit request submitted"})
}

// List godoc
// @Summary List credit requests
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved or denied" default(pending)
// @Success 200 {object} CreditRequestsResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/credit-requests [get]
func (h *CreditHandler) List(c echo.Context) error {
	status := model.CreditRequestStatus(c.QueryParam("status"))

	requests, err := h.service.List(c.Request().Context(), status)
	if err != nil {
		return toHTTPError(c, err)
	}
	if requests == nil {
		requests = []model.CreditRequestView{}
	}

	return c.JSON(http.StatusOK, CreditRequestsResponse{Requests: requests})
}

// Resolve godoc
// @Summary Approve or deny a pending credit request
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Credit request ID"
// @Param request body ResolveRequest true "Decision"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/credit-requests/{id} [post]
func (h *CreditHandler) Resolve(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return toHTTPError(c, errors.ErrInvalidID)
	}

	var req ResolveRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	if err := c.Validate(&req); err != nil {
		return toHTTPError(c, err)
	}

	if _, err := h.service.Resolve(c.Request().Context(), uint(id), *req.Approved); err != nil {
		return toHTTPError(c, err)
	}

	message := "Credit request denied"
	if *req.Approved {
		message = "Credit request approved"
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: message})
}
