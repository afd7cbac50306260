package controllers

import (
	"net/http"

	"github.com/ducali/ducali-api/config"
	"github.com/ducali/ducali-api/services"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateServiceRequest represents the request body for a new service listing
type CreateServiceRequest struct {
	Title       string          `json:"title" binding:"required,max=200"`
	Description string          `json:"description" binding:"max=5000"`
	Category    string          `json:"category" binding:"max=64"`
	BasePrice   decimal.Decimal `json:"base_price"`
}

// CreatePortfolioItemRequest represents the request body for a new portfolio piece.
// ImageKey names an object already uploaded to the portfolio bucket.
type CreatePortfolioItemRequest struct {
	Title       string  `json:"title" binding:"required,max=200"`
	Description string  `json:"description" binding:"max=5000"`
	Category    string  `json:"category" binding:"max=64"`
	ImageKey    *string `json:"image_key"`
	Featured    bool    `json:"featured"`
}

func catalogService() *services.CatalogService {
	return services.NewCatalogService(config.GetDB(), services.GetImageService())
}

// CreateService handles POST /api/v1/services
func CreateService(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	offering, err := catalogService().CreateService(c.Request.Context(), actor, services.ServiceInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		BasePrice:   req.BasePrice,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, offering)
}

// CreatePortfolioItem handles POST /api/v1/portfolio
func CreatePortfolioItem(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req CreatePortfolioItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := catalogService().CreatePortfolioItem(c.Request.Context(), actor, services.PortfolioInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		ImageKey:    req.ImageKey,
		Featured:    req.Featured,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, item)
}

// GetPortfolioItem handles GET /api/v1/portfolio/:id - counts the view and signs the image URL
func GetPortfolioItem(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	item, err := catalogService().ViewPortfolioItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, item)
}
