package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ducali/ducali-api/models"
	"github.com/ducali/ducali-api/services"
	"github.com/ducali/ducali-api/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// controllerFixture is a router with every handler mounted over a fresh database
type controllerFixture struct {
	db       *gorm.DB
	notifier *services.MockNotifier
	router   *gin.Engine
}

func newControllerFixture(t *testing.T) *controllerFixture {
	t.Helper()

	testutil.TestConfig()
	db := testutil.NewTestDB(t)
	notifier := services.NewMockNotifier()
	notifier.SetAsMockForTesting()
	services.SetImageService(nil)
	t.Cleanup(func() { services.SetNotifier(services.NewLogNotifier()) })

	router := setupTestRouter()
	router.GET("/artisans/:id", GetArtisan)
	router.GET("/artisans/:id/reviews", ListArtisanReviews)
	router.GET("/portfolio/:id", GetPortfolioItem)
	router.GET("/search", Search)

	authed := router.Group("", testutil.AuthHeaderMiddleware())
	authed.POST("/auth/login", Login)
	authed.GET("/users/me", GetMyProfile)
	authed.PUT("/users/me", UpdateMyProfile)
	authed.POST("/orders", CreateOrder)
	authed.GET("/orders", ListOrders)
	authed.GET("/orders/:id", GetOrder)
	authed.PUT("/orders/:id", UpdateOrder)
	authed.DELETE("/orders/:id", CancelOrder)
	authed.GET("/orders/:id/messages", ListMessages)
	authed.POST("/orders/:id/messages", SendMessage)
	authed.POST("/orders/:id/review", CreateReview)
	authed.PUT("/artisans/me", UpdateMyArtisanProfile)
	authed.POST("/services", CreateService)
	authed.POST("/portfolio", CreatePortfolioItem)
	authed.POST("/reviews/:id/helpful", MarkReviewHelpful)
	authed.GET("/notifications", ListNotifications)
	authed.PUT("/notifications/:id/read", MarkNotificationRead)
	authed.GET("/admin/orders", SearchOrders)

	return &controllerFixture{db: db, notifier: notifier, router: router}
}

// do sends a request as user (nil for anonymous). body may be nil, a raw string, or a value to encode as JSON.
func (f *controllerFixture) do(t *testing.T, method, path string, user *models.User, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req.Header.Set("X-Test-User", user.Auth0ID)
		req.Header.Set("X-Test-Role", string(user.Role))
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), "Response should be valid JSON: %s", w.Body.String())
	}
	return w, response
}

func errorCode(response map[string]interface{}) string {
	errBody, ok := response["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	code, _ := errBody["code"].(string)
	return code
}

func dataOf(t *testing.T, response map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok, "Response data should be an object: %v", response)
	return data
}

func listOf(t *testing.T, response map[string]interface{}) []interface{} {
	t.Helper()
	data, ok := response["data"].([]interface{})
	require.True(t, ok, "Response data should be a list: %v", response)
	return data
}

// setupMockAuth0Server simulates Auth0's /userinfo endpoint, keyed by access token
func setupMockAuth0Server(userInfoMap map[string]*services.Auth0UserInfo) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/userinfo" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		userInfo, exists := userInfoMap[token]
		if !exists {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(userInfo)
	}))
}
