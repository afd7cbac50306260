package controllers

import (
	"net/http"

	"github.com/ducali/ducali-api/config"
	"github.com/ducali/ducali-api/services"
	"github.com/gin-gonic/gin"
)

// CreateReviewRequest represents the request body for reviewing a completed order
type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment" binding:"max=5000"`
}

func reviewService() *services.ReviewService {
	return services.NewReviewService(config.GetDB(), services.GetNotifier())
}

// CreateReview handles POST /api/v1/orders/:id/review
func CreateReview(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	review, err := reviewService().Create(c.Request.Context(), actor, orderID, req.Rating, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, review)
}

// ListArtisanReviews handles GET /api/v1/artisans/:id/reviews - public, most helpful first
func ListArtisanReviews(c *gin.Context) {
	artisanID, ok := idParam(c, "id")
	if !ok {
		return
	}

	page, limit := pageParams(c)
	reviews, total, err := reviewService().ListForArtisan(c.Request.Context(), artisanID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, reviews, page, limit, total)
}

// MarkReviewHelpful handles POST /api/v1/reviews/:id/helpful
func MarkReviewHelpful(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	reviewID, ok := idParam(c, "id")
	if !ok {
		return
	}

	review, err := reviewService().MarkHelpful(c.Request.Context(), actor, reviewID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, review)
}
