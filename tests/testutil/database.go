package testutil

import (
	"strings"
	"testing"
	"time"

	"github.com/ducali/ducali-api/config"
	"github.com/ducali/ducali-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewTestDB opens a migrated in-memory sqlite database and installs it as config.DB
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "Failed to connect to test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every new :memory: connection would be an empty database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.Migrate(db), "Failed to migrate test database")

	config.SetDB(db)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// CreateUser inserts a user with the given Auth0 subject and role
func CreateUser(t *testing.T, db *gorm.DB, auth0ID, name string, role models.Role) *models.User {
	t.Helper()

	user := &models.User{
		Auth0ID: auth0ID,
		Name:    name,
		Email:   strings.ReplaceAll(auth0ID, "|", "-") + "@example.com",
		Role:    role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateArtisan inserts an artisan user with a storefront profile
func CreateArtisan(t *testing.T, db *gorm.DB, auth0ID, name, category, location string) *models.User {
	t.Helper()

	user := CreateUser(t, db, auth0ID, name, models.RoleArtisan)
	profile := &models.ArtisanProfile{
		UserID:   user.ID,
		Category: category,
		Location: location,
		Bio:      name + " makes " + category,
	}
	require.NoError(t, db.Create(profile).Error)
	return user
}

// CreateOrder inserts an order directly in the given status
func CreateOrder(t *testing.T, db *gorm.DB, customer, artisan *models.User, status models.OrderStatus) *models.Order {
	t.Helper()

	order := &models.Order{
		CustomerID:  customer.ID,
		ArtisanID:   artisan.ID,
		Description: "Custom piece for " + customer.Name,
		Status:      status,
		Version:     1,
	}
	switch status {
	case models.StatusQuoteRequested, models.StatusCancelled:
	default:
		price := decimal.NewFromInt(150)
		order.QuotedPrice = &price
		order.QuoteTimeline = "2 weeks"
		order.QuoteRevision = 1
	}
	if status == models.StatusInProgress || status == models.StatusCompleted || status == models.StatusDisputed {
		accepted := time.Now().Add(-time.Hour)
		order.AcceptedAt = &accepted
		order.StartedAt = &accepted
	}
	if status == models.StatusCompleted {
		done := time.Now()
		order.CompletedAt = &done
		order.ProgressPercentage = 100
		order.FinalPrice = order.QuotedPrice
	}
	require.NoError(t, db.Create(order).Error)
	return order
}
