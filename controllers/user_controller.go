package controllers

import (
	"net/http"

	"github.com/ducali/ducali-api/config"
	"github.com/ducali/ducali-api/logger"
	"github.com/ducali/ducali-api/middleware"
	"github.com/ducali/ducali-api/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UpdateUserRequest represents the request body for updating a user profile
type UpdateUserRequest struct {
	Name  string `json:"name" binding:"omitempty,max=120"`
	Email string `json:"email" binding:"omitempty,email"`
}

// Signup handles POST /api/v1/auth/signup - creates the caller's account from Auth0 userinfo
// The role comes from the token's custom claim and defaults to customer
func Signup(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user ID from token",
			},
		})
		return
	}

	accessToken, err := middleware.GetAccessToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_TOKEN",
				"message": "Access token not found",
			},
		})
		return
	}

	userInfo, err := services.NewAuth0Service(config.GetConfig()).GetUserInfo(c.Request.Context(), accessToken)
	if err != nil {
		logger.L().Warn("auth0 userinfo failed", zap.String("auth0_id", auth0ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "AUTH0_ERROR",
				"message": "Failed to fetch user information from Auth0",
			},
		})
		return
	}

	user, err := services.NewUserService(config.GetDB()).Signup(c.Request.Context(), auth0ID, middleware.GetRole(c), userInfo)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, user)
}

// Login handles POST /api/v1/auth/login - returns the caller's profile for a valid token
func Login(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	respondData(c, http.StatusOK, user)
}

// GetMyProfile handles GET /api/v1/users/me - gets current user's profile
func GetMyProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	respondData(c, http.StatusOK, user)
}

// UpdateMyProfile handles PUT /api/v1/users/me - updates current user's profile
func UpdateMyProfile(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, ok := currentUser(c)
	if !ok {
		return
	}

	updated, err := services.NewUserService(config.GetDB()).UpdateProfile(c.Request.Context(), user, req.Name, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, updated)
}
