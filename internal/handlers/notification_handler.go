package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/anonto42/social-graph/backend/internal/apperrors"
	"github.com/anonto42/social-graph/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// NotificationService is the notification use-case surface the handler needs
type NotificationService interface {
	List(ctx context.Context, actor *models.User) ([]models.NotificationView, error)
	Delete(ctx context.Context, actor *models.User, notificationID uint) error
}

// NotificationHandler handles HTTP requests related to notifications
type NotificationHandler struct {
	notifications NotificationService
	actors        ActorResolver
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications NotificationService, actors ActorResolver) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, actors: actors}
}

// RegisterNotificationRoutes registers notification-related routes
func (h *NotificationHandler) RegisterNotificationRoutes(auth *echo.Group) {
	auth.GET("/notifications", h.GetNotifications)
	auth.DELETE("/notifications/:notificationId", h.DeleteNotification)
}

// GetNotifications lists the caller's notifications, newest first
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	actor, err := currentActor(c, h.actors)
	if err != nil {
		return err
	}
	notifications, err := h.notifications.List(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"notifications": notifications})
}

// DeleteNotification deletes one of the caller's notifications
func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	actor, err := currentActor(c, h.actors)
	if err != nil {
		return err
	}

	id, err := strconv.ParseUint(c.Param("notificationId"), 10, 64)
	if err != nil || id == 0 {
		return apperrors.Validation("Invalid notification id")
	}

	if err := h.notifications.Delete(c.Request().Context(), actor, uint(id)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, message("Notification deleted successfully"))
}
