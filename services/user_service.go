package services

import (
	"context"
	"strings"

	"github.com/ducali/ducali-api/apperrors"
	"github.com/ducali/ducali-api/logger"
	"github.com/ducali/ducali-api/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserService manages marketplace accounts keyed by their Auth0 subject
type UserService struct {
	db *gorm.DB
}

// NewUserService creates a user service
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Signup creates the account for auth0ID from the identity Auth0 vouches for
func (s *UserService) Signup(ctx context.Context, auth0ID string, role models.Role, info *Auth0UserInfo) (models.User, error) {
	if info == nil || strings.TrimSpace(info.Email) == "" {
		return models.User{}, apperrors.Validation("MISSING_EMAIL", "Email not provided by Auth0")
	}
	if strings.TrimSpace(info.Name) == "" {
		return models.User{}, apperrors.Validation("MISSING_NAME", "Name not provided by Auth0")
	}
	// admins are provisioned out of band, never through signup
	if !role.Valid() || role == models.RoleAdmin {
		role = models.RoleCustomer
	}

	user := models.User{
		Auth0ID: auth0ID,
		Name:    strings.TrimSpace(info.Name),
		Email:   strings.TrimSpace(info.Email),
		Role:    role,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return models.User{}, apperrors.Conflict("USER_EXISTS", "A user with this Auth0 ID or email already exists")
		}
		return models.User{}, dbError(err, "create user", nil)
	}

	logger.L().Info("user signed up", zap.Uint("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// FindByAuth0ID loads the account behind a token subject
func (s *UserService) FindByAuth0ID(ctx context.Context, auth0ID string) (models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		return models.User{}, dbError(err, "find user",
			apperrors.NotFound("USER_NOT_FOUND", "User profile not found. Please create a profile first."))
	}
	return user, nil
}

// UpdateProfile changes the non-empty fields among name and email
func (s *UserService) UpdateProfile(ctx context.Context, user models.User, name, email string) (models.User, error) {
	updates := make(map[string]interface{})
	if name = strings.TrimSpace(name); name != "" {
		updates["name"] = name
	}
	if email = strings.TrimSpace(email); email != "" {
		updates["email"] = email
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		if isUniqueViolation(err) {
			return models.User{}, apperrors.Conflict("EMAIL_EXISTS", "A user with this email already exists")
		}
		return models.User{}, dbError(err, "update user profile", nil)
	}
	return s.FindByAuth0ID(ctx, user.Auth0ID)
}
