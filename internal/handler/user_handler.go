package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"docscan/internal/service"
)

// UserHandler handles profile endpoints.
type UserHandler struct {
	service service.UserService
}

// NewUserHandler builds a UserHandler.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{service: svc}
}

// Profile godoc
// @Summary Current user's profile and credit balance
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /user/profile [get]
func (h *UserHandler) Profile(c echo.Context) error {
	claims, err := ClaimsFrom(c)
	if err != nil {
		return toHTTPError(c, err)
	}

	user, err := h.service.GetProfile(c.Request().Context(), claims.UserID)
	if err != nil {
		return toHTTPError(c, err)
	}

	return c.JSON(http.StatusOK, UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Credits:  user.Credits,
		IsAdmin:  user.IsAdmin,
	})
}
