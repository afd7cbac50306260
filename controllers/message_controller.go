package controllers

import (
	"net/http"

	"github.com/ducali/ducali-api/config"
	"github.com/ducali/ducali-api/services"
	"github.com/gin-gonic/gin"
)

// SendMessageRequest represents the request body for sending a message
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// SendMessage handles POST /api/v1/orders/:id/messages - sends a message to the other party
func SendMessage(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	message, err := services.NewMessageService(config.GetDB(), services.GetNotifier()).
		Send(c.Request.Context(), actor, orderID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, message)
}

// ListMessages handles GET /api/v1/orders/:id/messages - lists messages for an order
func ListMessages(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	messages, err := services.NewMessageService(config.GetDB(), services.GetNotifier()).
		List(c.Request.Context(), actor, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, messages)
}
