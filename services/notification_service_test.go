package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ducali/ducali-api/apperrors"
	"github.com/ducali/ducali-api/models"
	"github.com/ducali/ducali-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreNotifier_WritesInbox(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "auth0|customer", "Casey Customer", models.RoleCustomer)

	err := NewStoreNotifier(db).Notify(context.Background(), user.ID, "order.quote_sent", map[string]interface{}{
		"order_id":     7,
		"quoted_price": "150",
	})
	require.NoError(t, err)

	var stored models.Notification
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&stored).Error)
	assert.Equal(t, "order.quote_sent", stored.Kind)
	assert.Len(t, stored.EventID, 36)
	assert.Nil(t, stored.ReadAt)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(stored.Payload, &payload))
	assert.Equal(t, "150", payload["quoted_price"])
}

func TestFanoutNotifier_SharesEventIDAndJoinsErrors(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "auth0|customer", "Casey Customer", models.RoleCustomer)

	healthy := NewMockNotifier()
	broken := NewMockNotifier()
	broken.Err = errors.New("broker down")
	fanout := NewFanoutNotifier(NewStoreNotifier(db), healthy, broken)

	payload := map[string]interface{}{"order_id": 1}
	err := fanout.Notify(context.Background(), user.ID, "order.cancelled", payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	assert.NotContains(t, payload, "event_id", "caller's payload is not modified")

	sent := healthy.Sent()
	require.Len(t, sent, 1)
	eventID := sent[0].Payload["event_id"]
	assert.Equal(t, eventID, broken.Sent()[0].Payload["event_id"])

	var stored models.Notification
	require.NoError(t, db.First(&stored).Error)
	assert.Equal(t, eventID, stored.EventID)

	assert.NoError(t, fanout.Close())
}

func TestNewEnvelope_ReusesEventID(t *testing.T) {
	env := NewEnvelope(3, "order.completed", map[string]interface{}{"event_id": "fixed-id"})
	assert.Equal(t, "fixed-id", env.EventID)
	assert.Equal(t, uint(3), env.UserID)

	fresh := NewEnvelope(3, "order.completed", map[string]interface{}{})
	assert.Len(t, fresh.EventID, 36)
}

func TestNotificationService_ListAndMarkRead(t *testing.T) {
	db := testutil.NewTestDB(t)
	service := NewNotificationService(db)
	inbox := NewStoreNotifier(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "auth0|customer", "Casey Customer", models.RoleCustomer)
	other := testutil.CreateUser(t, db, "auth0|other", "Other Customer", models.RoleCustomer)
	for _, kind := range []string{"order.quote_sent", "order.work_started", "order.completed"} {
		require.NoError(t, inbox.Notify(ctx, user.ID, kind, map[string]interface{}{}))
	}
	require.NoError(t, inbox.Notify(ctx, other.ID, "order.cancelled", map[string]interface{}{}))

	all, total, err := service.List(ctx, user.ID, false, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, all, 3)
	assert.Equal(t, "order.completed", all[0].Kind, "newest first")

	read, err := service.MarkRead(ctx, user.ID, all[0].ID)
	require.NoError(t, err)
	require.NotNil(t, read.ReadAt)

	again, err := service.MarkRead(ctx, user.ID, all[0].ID)
	require.NoError(t, err)
	assert.True(t, read.ReadAt.Equal(*again.ReadAt), "first read time is kept")

	unread, total, err := service.List(ctx, user.ID, true, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, unread, 2)

	_, err = service.MarkRead(ctx, other.ID, all[0].ID)
	assert.Equal(t, "NOTIFICATION_NOT_FOUND", apperrors.From(err).Code)
}

func TestInitNotifier_LogDriver(t *testing.T) {
	db := testutil.NewTestDB(t)
	previous := GetNotifier()
	defer SetNotifier(previous)

	cfg := testutil.TestConfig()
	notifier, err := InitNotifier(cfg, db)
	require.NoError(t, err)
	assert.Equal(t, "fanout", notifier.Name())
	assert.Same(t, notifier, GetNotifier())

	cfg.NotifierDriver = "pigeon"
	_, err = InitNotifier(cfg, db)
	assert.Error(t, err)
}
