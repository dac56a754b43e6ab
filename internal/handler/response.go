package handler

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"docscan/internal/auth"
	"docscan/internal/errors"
	"docscan/internal/logger"
)

// MessageResponse is the body of endpoints that only acknowledge.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Credits  int    `json:"credits"`
	IsAdmin  bool   `json:"is_admin"`
}

// toHTTPError maps a service error to an echo error carrying an ErrorResponse.
// Server-side failures are logged with the request id; clients see only the message.
func toHTTPError(c echo.Context, err error) *echo.HTTPError {
	httpErr := errors.MapErrorToHTTP(err)
	if httpErr.StatusCode >= 500 {
		logger.Error("request failed",
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err))
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse()).SetInternal(err)
}

// ClaimsFrom returns the claims set by the JWT middleware.
func ClaimsFrom(c echo.Context) (*auth.Claims, error) {
	token, _ := c.Get("user").(*jwt.Token)
	claims, ok := auth.ClaimsFromToken(token)
	if !ok {
		return nil, errors.ErrUnauthorized
	}
	return claims, nil
}

func bindError(c echo.Context) *echo.HTTPError {
	return toHTTPError(c, errors.Validation("invalid request body"))
}
