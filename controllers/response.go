package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ducali/ducali-api/apperrors"
	"github.com/ducali/ducali-api/config"
	"github.com/ducali/ducali-api/lifecycle"
	"github.com/ducali/ducali-api/logger"
	"github.com/ducali/ducali-api/middleware"
	"github.com/ducali/ducali-api/models"
	"github.com/ducali/ducali-api/services"
	"github.com/ducali/ducali-api/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// respondError renders err in the standard error envelope with the status its kind maps to
func respondError(c *gin.Context, err error) {
	appErr := apperrors.From(err)
	status := apperrors.HTTPStatus(appErr)

	if status >= http.StatusInternalServerError {
		logger.L().Error("request failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("code", appErr.Code),
			zap.Error(err))
	}

	body := gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
	}
	if appErr.Retryable {
		body["retryable"] = true
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   body,
	})
}

// respondBindError renders a request body that failed binding, listing the failed fields
func respondBindError(c *gin.Context, err error) {
	body := gin.H{
		"code":    "VALIDATION_ERROR",
		"message": "Invalid request data",
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		details := make([]gin.H, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			details = append(details, gin.H{"field": fe.Field(), "rule": fe.Tag()})
		}
		body["details"] = details
	} else {
		body["details"] = err.Error()
	}

	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   body,
	})
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondPage(c *gin.Context, data interface{}, page, limit int, total int64) {
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       data,
		"pagination": utils.NewPagination(page, limit, total),
	})
}

// pageParams reads the page and limit query parameters
func pageParams(c *gin.Context) (int, int) {
	return utils.ParsePage(c.Query("page"), c.Query("limit"))
}

// idParam parses a positive numeric path parameter
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, apperrors.Validation("INVALID_REQUEST", "Invalid "+name))
		return 0, false
	}
	return uint(id), true
}

// currentUser loads the account behind the token, writing the error response when it cannot
func currentUser(c *gin.Context) (models.User, bool) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return models.User{}, false
	}

	user, err := services.NewUserService(config.GetDB()).FindByAuth0ID(c.Request.Context(), auth0ID)
	if err != nil {
		respondError(c, err)
		return models.User{}, false
	}
	return user, true
}

// currentActor is currentUser reduced to what the services authorize on
func currentActor(c *gin.Context) (lifecycle.Actor, bool) {
	user, ok := currentUser(c)
	if !ok {
		return lifecycle.Actor{}, false
	}
	return lifecycle.Actor{UserID: user.ID, Role: user.Role}, true
}
