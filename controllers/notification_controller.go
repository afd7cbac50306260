package controllers

import (
	"net/http"

	"github.com/ducali/ducali-api/config"
	"github.com/ducali/ducali-api/services"
	"github.com/gin-gonic/gin"
)

// ListNotifications handles GET /api/v1/notifications - newest first, ?unread=true for unread only
func ListNotifications(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	page, limit := pageParams(c)
	unreadOnly := c.Query("unread") == "true"
	notifications, total, err := services.NewNotificationService(config.GetDB()).
		List(c.Request.Context(), actor.UserID, unreadOnly, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, notifications, page, limit, total)
}

// MarkNotificationRead handles PUT /api/v1/notifications/:id/read
func MarkNotificationRead(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	notification, err := services.NewNotificationService(config.GetDB()).MarkRead(c.Request.Context(), actor.UserID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, notification)
}
