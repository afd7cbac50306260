package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ducali/ducali-api/apperrors"
	"github.com/ducali/ducali-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth0Service_GetUserInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/userinfo", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_token"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sub":"auth0|123","email":"maker@example.com","name":"Mara Maker"}`))
	}))
	defer server.Close()

	cfg := testutil.TestConfig()
	cfg.Auth0Domain = server.URL
	service := NewAuth0Service(cfg)

	info, err := service.GetUserInfo(context.Background(), "good-token")
	require.NoError(t, err)
	assert.Equal(t, &Auth0UserInfo{Sub: "auth0|123", Email: "maker@example.com", Name: "Mara Maker"}, info)

	_, err = service.GetUserInfo(context.Background(), "bad-token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestUserService(t *testing.T) {
	db := testutil.NewTestDB(t)
	service := NewUserService(db)
	ctx := context.Background()

	user, err := service.Signup(ctx, "auth0|maker", "artisan", &Auth0UserInfo{Name: "Mara Maker", Email: "mara@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "artisan", string(user.Role))

	_, err = service.Signup(ctx, "auth0|maker", "artisan", &Auth0UserInfo{Name: "Mara Maker", Email: "mara@example.com"})
	require.Error(t, err)
	assert.Equal(t, 409, apperrors.HTTPStatus(err))

	_, err = service.Signup(ctx, "auth0|nomail", "", &Auth0UserInfo{Name: "No Mail"})
	require.Error(t, err)

	fallback, err := service.Signup(ctx, "auth0|odd", "superuser", &Auth0UserInfo{Name: "Odd Role", Email: "odd@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "customer", string(fallback.Role), "unknown roles fall back to customer")

	found, err := service.FindByAuth0ID(ctx, "auth0|maker")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = service.FindByAuth0ID(ctx, "auth0|ghost")
	assert.Equal(t, 404, apperrors.HTTPStatus(err))

	updated, err := service.UpdateProfile(ctx, found, "Mara M.", "")
	require.NoError(t, err)
	assert.Equal(t, "Mara M.", updated.Name)
	assert.Equal(t, "mara@example.com", updated.Email)

	_, err = service.UpdateProfile(ctx, updated, "", "odd@example.com")
	assert.Equal(t, 409, apperrors.HTTPStatus(err))
}
