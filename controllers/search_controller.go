package controllers

import (
	"net/http"
	"strconv"

	"github.com/ducali/ducali-api/apperrors"
	"github.com/ducali/ducali-api/config"
	"github.com/ducali/ducali-api/services"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Search handles GET /api/v1/search - artisans, services and portfolio pieces, each paginated
func Search(c *gin.Context) {
	params := services.SearchParams{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Location: c.Query("location"),
	}
	params.Page, params.Limit = pageParams(c)

	if raw := c.Query("minRating"); raw != "" {
		minRating, err := strconv.ParseFloat(raw, 64)
		if err != nil || minRating < 0 || minRating > services.MaxRating {
			respondError(c, apperrors.Validation("INVALID_REQUEST", "minRating must be a number between 0 and 5"))
			return
		}
		params.MinRating = &minRating
	}
	if raw := c.Query("maxPrice"); raw != "" {
		maxPrice, err := decimal.NewFromString(raw)
		if err != nil || maxPrice.IsNegative() {
			respondError(c, apperrors.Validation("INVALID_REQUEST", "maxPrice must be a non-negative number"))
			return
		}
		params.MaxPrice = &maxPrice
	}

	results, err := services.NewSearchService(config.GetDB(), services.GetImageService()).Search(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, results)
}
