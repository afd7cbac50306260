package controllers

import (
	"net/http"

	"github.com/ducali/ducali-api/config"
	"github.com/ducali/ducali-api/services"
	"github.com/gin-gonic/gin"
)

// UpdateArtisanProfileRequest holds the storefront fields an artisan may edit. Omitted fields are kept.
type UpdateArtisanProfileRequest struct {
	Bio      *string `json:"bio" binding:"omitempty,max=5000"`
	Category *string `json:"category" binding:"omitempty,max=64"`
	Location *string `json:"location" binding:"omitempty,max=120"`
	Skills   *string `json:"skills" binding:"omitempty,max=500"`
}

// GetArtisan handles GET /api/v1/artisans/:id - public storefront with derived stats
func GetArtisan(c *gin.Context) {
	artisanID, ok := idParam(c, "id")
	if !ok {
		return
	}

	detail, err := services.NewArtisanService(config.GetDB(), services.GetImageService()).Get(c.Request.Context(), artisanID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, detail)
}

// UpdateMyArtisanProfile handles PUT /api/v1/artisans/me
func UpdateMyArtisanProfile(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req UpdateArtisanProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	profile, err := services.NewArtisanService(config.GetDB(), services.GetImageService()).
		UpsertProfile(c.Request.Context(), actor, services.ProfileInput{
			Bio:      req.Bio,
			Category: req.Category,
			Location: req.Location,
			Skills:   req.Skills,
		})
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, profile)
}
