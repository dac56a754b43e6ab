package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"docscan/internal/events"
	"docscan/internal/logger"
)

// EventsHandler upgrades admin connections to the live event stream.
type EventsHandler struct {
	hub *events.Hub
}

// NewEventsHandler builds an EventsHandler.
func NewEventsHandler(hub *events.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Subscribe godoc
// @Summary Live admin events over websocket
// @Description Browsers cannot set headers on websocket upgrades, so the token travels in the query string.
// @Tags admin
// @Param token query string true "Bearer token"
// @Success 101
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/events [get]
func (h *EventsHandler) Subscribe(c echo.Context) error {
	claims, err := ClaimsFrom(c)
	if err != nil {
		return toHTTPError(c, err)
	}

	conn, err := events.Upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader already wrote the failure response.
		logger.Warn("websocket upgrade failed", zap.Uint("user_id", claims.UserID), zap.Error(err))
		return nil
	}

	client := events.NewClient(h.hub, conn, claims.UserID)
	if !h.hub.Attach(client) {
		_ = conn.Close()
		return nil
	}

	go client.WritePump()
	client.ReadPump()
	return nil
}
