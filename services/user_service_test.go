package services

import (
	"context"
	"testing"

	"github.com/ducali/ducali-api/apperrors"
	"github.com/ducali/ducali-api/models"
	"github.com/ducali/ducali-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_SignupRole(t *testing.T) {
	tests := []struct {
		name     string
		claim    models.Role
		expected models.Role
	}{
		{name: "customer claim kept", claim: models.RoleCustomer, expected: models.RoleCustomer},
		{name: "artisan claim kept", claim: models.RoleArtisan, expected: models.RoleArtisan},
		{name: "admin claim downgraded", claim: models.RoleAdmin, expected: models.RoleCustomer},
		{name: "unknown claim downgraded", claim: models.Role("superuser"), expected: models.RoleCustomer},
		{name: "missing claim downgraded", claim: "", expected: models.RoleCustomer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.NewTestDB(t)
			service := NewUserService(db)

			user, err := service.Signup(context.Background(), "auth0|signup", tt.claim,
				&Auth0UserInfo{Sub: "auth0|signup", Email: "signup@example.com", Name: "Sam Signup"})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, user.Role)

			var stored models.User
			require.NoError(t, db.First(&stored, user.ID).Error)
			assert.Equal(t, tt.expected, stored.Role)
		})
	}
}

func TestUserService_SignupMissingIdentity(t *testing.T) {
	service := NewUserService(testutil.NewTestDB(t))

	_, err := service.Signup(context.Background(), "auth0|nobody", models.RoleCustomer, &Auth0UserInfo{Name: "No Email"})
	require.Error(t, err)
	assert.Equal(t, "MISSING_EMAIL", apperrors.From(err).Code)
}
