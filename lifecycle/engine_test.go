package lifecycle

import (
	"testing"
	"time"

	"github.com/ducali/ducali-api/apperrors"
	"github.com/ducali/ducali-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	customerID uint = 10
	artisanID  uint = 20
	strangerID uint = 30
	adminID    uint = 99
)

var (
	customer      = Actor{UserID: customerID, Role: models.RoleCustomer}
	artisan       = Actor{UserID: artisanID, Role: models.RoleArtisan}
	otherCustomer = Actor{UserID: strangerID, Role: models.RoleCustomer}
	otherArtisan  = Actor{UserID: strangerID, Role: models.RoleArtisan}
	admin         = Actor{UserID: adminID, Role: models.RoleAdmin}
	now           = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
)

func newOrder(status models.OrderStatus) models.Order {
	return models.Order{
		ID:          1,
		CustomerID:  customerID,
		ArtisanID:   artisanID,
		Description: "Hand-bound leather journal",
		Status:      status,
		Version:     1,
	}
}

func price(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func intPtr(v int) *int {
	return &v
}

func TestSendQuoteThenAccept(t *testing.T) {
	order := newOrder(models.StatusQuoteRequested)

	quoted, event, err := Apply(order, artisan, Command{Transition: SendQuote, Price: price("150"), Timeline: "2 weeks"}, now)
	require.NoError(t, err)
	assert.Equal(t, models.StatusQuoteSent, quoted.Status)
	assert.True(t, quoted.QuotedPrice.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, "2 weeks", quoted.QuoteTimeline)
	assert.Equal(t, 1, quoted.QuoteRevision)
	assert.Equal(t, KindQuoteSent, event.Kind)
	assert.Equal(t, []uint{customerID}, event.Recipients)

	accepted, event, err := Apply(quoted, customer, Command{Transition: AcceptQuote}, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, accepted.Status)
	assert.Equal(t, 0, accepted.ProgressPercentage)
	require.NotNil(t, accepted.AcceptedAt)
	require.NotNil(t, accepted.StartedAt)
	assert.Equal(t, now.Add(time.Hour), *accepted.AcceptedAt)
	assert.Equal(t, KindQuoteAccepted, event.Kind)
	assert.Equal(t, []uint{artisanID}, event.Recipients)
}

func TestCancelInProgressRejected(t *testing.T) {
	order := newOrder(models.StatusInProgress)

	next, _, err := Apply(order, customer, Command{Transition: Cancel}, now)

	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
	assert.Contains(t, err.Error(), "Cannot cancel order that has been accepted or is in progress")
	assert.Equal(t, models.Order{}, next)
	assert.Equal(t, models.StatusInProgress, order.Status, "input order must not change")
	assert.Nil(t, order.CancelledAt)
}

func TestUpdateProgressOutOfRange(t *testing.T) {
	for _, value := range []int{150, 101, -1} {
		order := newOrder(models.StatusInProgress)
		_, _, err := Apply(order, artisan, Command{Transition: UpdateProgress, Progress: intPtr(value)}, now)

		require.Error(t, err, "progress %d", value)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
		assert.Equal(t, 0, order.ProgressPercentage)
	}
}

func TestCompleteDefaultsFinalPrice(t *testing.T) {
	order := newOrder(models.StatusInProgress)
	order.QuotedPrice = price("150")
	order.ProgressPercentage = 60

	done, event, err := Apply(order, artisan, Command{Transition: Complete}, now)

	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done.Status)
	assert.Equal(t, 100, done.ProgressPercentage)
	require.NotNil(t, done.CompletedAt)
	require.NotNil(t, done.FinalPrice)
	assert.True(t, done.FinalPrice.Equal(decimal.NewFromInt(150)))
	assert.NotSame(t, order.QuotedPrice, done.FinalPrice)
	assert.Equal(t, KindOrderCompleted, event.Kind)
}

func TestComplete_ExplicitFinalPrice(t *testing.T) {
	order := newOrder(models.StatusInProgress)
	order.QuotedPrice = price("150")

	done, _, err := Apply(order, artisan, Command{Transition: Complete, FinalPrice: price("175.50")}, now)

	require.NoError(t, err)
	assert.Equal(t, "175.5", done.FinalPrice.String())

	_, _, err = Apply(order, artisan, Command{Transition: Complete, FinalPrice: price("-1")}, now)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

// Every (transition, status) pair outside the table must fail and leave the order untouched.
func TestOnlyTableEdgesSucceed(t *testing.T) {
	actorFor := map[Transition]Actor{
		SendQuote:      artisan,
		AcceptQuote:    customer,
		RequestChanges: customer,
		StartWork:      artisan,
		UpdateProgress: artisan,
		Complete:       artisan,
		Cancel:         customer,
		Dispute:        customer,
		ResolveDispute: admin,
	}
	validCommand := func(tr Transition) Command {
		return Command{
			Transition: tr,
			Price:      price("80"),
			Progress:   intPtr(10),
			Reason:     "Item arrived damaged",
			Resolution: models.StatusCancelled,
		}
	}
	edges := map[Transition]map[models.OrderStatus]models.OrderStatus{
		SendQuote:      {models.StatusQuoteRequested: models.StatusQuoteSent},
		AcceptQuote:    {models.StatusQuoteSent: models.StatusInProgress, models.StatusPendingReview: models.StatusInProgress},
		RequestChanges: {models.StatusQuoteSent: models.StatusQuoteRequested, models.StatusPendingReview: models.StatusQuoteRequested},
		StartWork:      {models.StatusQuoteAccepted: models.StatusInProgress},
		UpdateProgress: {models.StatusInProgress: models.StatusInProgress},
		Complete:       {models.StatusInProgress: models.StatusCompleted},
		Cancel: {
			models.StatusQuoteRequested: models.StatusCancelled,
			models.StatusQuoteSent:      models.StatusCancelled,
			models.StatusPendingReview:  models.StatusCancelled,
		},
		Dispute:        {models.StatusInProgress: models.StatusDisputed},
		ResolveDispute: {models.StatusDisputed: models.StatusCancelled},
	}

	for _, tr := range Transitions {
		for _, status := range models.Statuses {
			t.Run(string(tr)+"/"+string(status), func(t *testing.T) {
				order := newOrder(status)
				next, _, err := Apply(order, actorFor[tr], validCommand(tr), now)

				want, isEdge := edges[tr][status]
				if isEdge {
					require.NoError(t, err)
					assert.Equal(t, want, next.Status)
					return
				}
				require.Error(t, err)
				assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState), "got %v", err)
				assert.Equal(t, status, order.Status)
			})
		}
	}
}

func TestAuthorization(t *testing.T) {
	tests := []struct {
		name   string
		status models.OrderStatus
		actor  Actor
		cmd    Command
	}{
		{"customer cannot send quote", models.StatusQuoteRequested, customer, Command{Transition: SendQuote, Price: price("10")}},
		{"customer cannot update progress", models.StatusInProgress, customer, Command{Transition: UpdateProgress, Progress: intPtr(5)}},
		{"customer cannot complete", models.StatusInProgress, customer, Command{Transition: Complete}},
		{"artisan cannot accept quote", models.StatusQuoteSent, artisan, Command{Transition: AcceptQuote}},
		{"artisan cannot cancel", models.StatusQuoteRequested, artisan, Command{Transition: Cancel}},
		{"other customer cannot cancel", models.StatusQuoteRequested, otherCustomer, Command{Transition: Cancel}},
		{"other artisan cannot quote", models.StatusQuoteRequested, otherArtisan, Command{Transition: SendQuote, Price: price("10")}},
		{"stranger cannot dispute", models.StatusInProgress, otherCustomer, Command{Transition: Dispute, Reason: "x"}},
		{"admin cannot cancel for customer", models.StatusQuoteRequested, admin, Command{Transition: Cancel}},
		{"customer cannot resolve dispute", models.StatusDisputed, customer, Command{Transition: ResolveDispute, Resolution: models.StatusCompleted}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Apply(newOrder(tt.status), tt.actor, tt.cmd, now)
			require.Error(t, err)
			assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden), "got %v", err)
		})
	}
}

func TestAuthorizationCheckedBeforeState(t *testing.T) {
	// an artisan cancelling a completed order is told it is not theirs to cancel, not that the state is wrong
	_, _, err := Apply(newOrder(models.StatusCompleted), artisan, Command{Transition: Cancel}, now)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}

func TestCancel(t *testing.T) {
	for _, status := range []models.OrderStatus{models.StatusQuoteRequested, models.StatusQuoteSent} {
		t.Run(string(status), func(t *testing.T) {
			next, event, err := Apply(newOrder(status), customer, Command{Transition: Cancel}, now)
			require.NoError(t, err)
			assert.Equal(t, models.StatusCancelled, next.Status)
			require.NotNil(t, next.CancelledAt)
			assert.Equal(t, now, *next.CancelledAt)
			assert.Equal(t, []uint{artisanID}, event.Recipients)
		})
	}

	_, _, err := Apply(newOrder(models.StatusCancelled), customer, Command{Transition: Cancel}, now)
	assert.EqualError(t, err, "Order is already cancelled")
	_, _, err = Apply(newOrder(models.StatusCompleted), customer, Command{Transition: Cancel}, now)
	assert.EqualError(t, err, "Cannot cancel order that has been completed")
}

func TestUpdateProgress(t *testing.T) {
	order := newOrder(models.StatusInProgress)

	for _, value := range []int{0, 40, 40, 100} {
		next, event, err := Apply(order, artisan, Command{Transition: UpdateProgress, Progress: intPtr(value)}, now)
		require.NoError(t, err)
		assert.Equal(t, value, next.ProgressPercentage)
		assert.Equal(t, models.StatusInProgress, next.Status)
		assert.Equal(t, value, event.Payload["progress_percentage"])
		order = next
	}

	_, _, err := Apply(order, artisan, Command{Transition: UpdateProgress, Progress: intPtr(99)}, now)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation), "progress must not decrease")

	_, _, err = Apply(order, artisan, Command{Transition: UpdateProgress}, now)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation), "progress is required")
}

func TestProgressOnlyMutableInProgress(t *testing.T) {
	for _, status := range models.Statuses {
		if status == models.StatusInProgress {
			continue
		}
		_, _, err := Apply(newOrder(status), artisan, Command{Transition: UpdateProgress, Progress: intPtr(50)}, now)
		assert.Error(t, err, status)
	}
}

func TestSendQuote_Validation(t *testing.T) {
	order := newOrder(models.StatusQuoteRequested)

	_, _, err := Apply(order, artisan, Command{Transition: SendQuote}, now)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation), "price is required")

	_, _, err = Apply(order, artisan, Command{Transition: SendQuote, Price: price("-5")}, now)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation), "price must not be negative")

	next, _, err := Apply(order, artisan, Command{Transition: SendQuote, Price: price("0")}, now)
	require.NoError(t, err)
	assert.True(t, next.QuotedPrice.IsZero())
}

func TestRequestChanges_ArtisanMayRequote(t *testing.T) {
	eta := now.Add(14 * 24 * time.Hour)
	order := newOrder(models.StatusQuoteRequested)

	quoted, _, err := Apply(order, artisan, Command{Transition: SendQuote, Price: price("300"), Timeline: "3 weeks", EstimatedCompletion: &eta, Notes: "walnut"}, now)
	require.NoError(t, err)

	reopened, event, err := Apply(quoted, customer, Command{Transition: RequestChanges, Notes: "Could you use oak instead?"}, now)
	require.NoError(t, err)
	assert.Equal(t, models.StatusQuoteRequested, reopened.Status)
	assert.Nil(t, reopened.QuotedPrice)
	assert.Nil(t, reopened.EstimatedCompletion)
	assert.Empty(t, reopened.QuoteTimeline)
	assert.Equal(t, "Could you use oak instead?", reopened.ChangeRequest)
	assert.Equal(t, KindChangesRequested, event.Kind)

	requoted, _, err := Apply(reopened, artisan, Command{Transition: SendQuote, Price: price("260")}, now)
	require.NoError(t, err)
	assert.Equal(t, 2, requoted.QuoteRevision)
	assert.NotNil(t, quoted.QuotedPrice, "earlier value must be untouched")
}

func TestStartWork_FromLegacyAcceptedState(t *testing.T) {
	order := newOrder(models.StatusQuoteAccepted)
	accepted := now.Add(-time.Hour)
	order.AcceptedAt = &accepted

	next, _, err := Apply(order, artisan, Command{Transition: StartWork}, now)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, next.Status)
	assert.Equal(t, accepted, *next.AcceptedAt)
	assert.Equal(t, now, *next.StartedAt)
}

func TestDisputeAndResolve(t *testing.T) {
	order := newOrder(models.StatusInProgress)
	order.QuotedPrice = price("90")

	_, _, err := Apply(order, artisan, Command{Transition: Dispute}, now)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation), "reason required")

	disputed, event, err := Apply(order, artisan, Command{Transition: Dispute, Reason: "Customer stopped responding"}, now)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDisputed, disputed.Status)
	assert.Equal(t, []uint{customerID}, event.Recipients)

	_, _, err = Apply(disputed, admin, Command{Transition: ResolveDispute, Resolution: models.StatusInProgress}, now)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	resolved, event, err := Apply(disputed, admin, Command{Transition: ResolveDispute, Resolution: models.StatusCompleted, Notes: "Delivered per photos"}, now)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, resolved.Status)
	assert.Equal(t, 100, resolved.ProgressPercentage)
	assert.True(t, resolved.FinalPrice.Equal(decimal.NewFromInt(90)))
	assert.Equal(t, "Delivered per photos", resolved.ResolutionNote)
	assert.ElementsMatch(t, []uint{customerID, artisanID}, event.Recipients)
}

func TestTimestampsNeverOverwritten(t *testing.T) {
	earlier := now.Add(-48 * time.Hour)
	order := newOrder(models.StatusInProgress)
	order.AcceptedAt = &earlier
	order.StartedAt = &earlier

	done, _, err := Apply(order, artisan, Command{Transition: Complete}, now)
	require.NoError(t, err)
	assert.Equal(t, earlier, *done.AcceptedAt)
	assert.Equal(t, earlier, *done.StartedAt)
	assert.Equal(t, now, *done.CompletedAt)
	assert.Nil(t, done.CancelledAt)

	stamped := now.Add(-time.Minute)
	field := &stamped
	stampOnce(&field, now)
	assert.Equal(t, stamped, *field)
}

func TestExactlyTheTransitionTimestampIsStamped(t *testing.T) {
	cases := []struct {
		status models.OrderStatus
		actor  Actor
		cmd    Command
		stamps func(o models.Order) []*time.Time
	}{
		{models.StatusQuoteRequested, customer, Command{Transition: Cancel}, func(o models.Order) []*time.Time { return []*time.Time{o.CancelledAt} }},
		{models.StatusInProgress, artisan, Command{Transition: Complete}, func(o models.Order) []*time.Time { return []*time.Time{o.CompletedAt} }},
		{models.StatusInProgress, customer, Command{Transition: Dispute, Reason: "late"}, func(o models.Order) []*time.Time { return []*time.Time{o.DisputedAt} }},
		{models.StatusQuoteSent, customer, Command{Transition: AcceptQuote}, func(o models.Order) []*time.Time { return []*time.Time{o.AcceptedAt, o.StartedAt} }},
	}

	for _, tc := range cases {
		t.Run(string(tc.cmd.Transition), func(t *testing.T) {
			next, _, err := Apply(newOrder(tc.status), tc.actor, tc.cmd, now)
			require.NoError(t, err)

			all := []*time.Time{next.AcceptedAt, next.StartedAt, next.CompletedAt, next.CancelledAt, next.DisputedAt}
			set := 0
			for _, ts := range all {
				if ts != nil {
					set++
				}
			}
			assert.Equal(t, len(tc.stamps(next)), set)
			for _, ts := range tc.stamps(next) {
				require.NotNil(t, ts)
			}
		})
	}
}

func TestUnknownTransitionAndStatus(t *testing.T) {
	_, _, err := Apply(newOrder(models.StatusQuoteRequested), customer, Command{Transition: "teleport"}, now)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	_, _, err = Apply(newOrder("SHIPPED"), customer, Command{Transition: Cancel}, now)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
}

func TestAllowedFrom(t *testing.T) {
	assert.Equal(t, []models.OrderStatus{models.StatusQuoteRequested, models.StatusQuoteSent}, AllowedFrom(Cancel))
	assert.Nil(t, AllowedFrom("teleport"))

	from := AllowedFrom(Cancel)
	from[0] = models.StatusCompleted
	assert.Equal(t, models.StatusQuoteRequested, AllowedFrom(Cancel)[0], "callers get a copy")
}

func TestNewQuoteRequest(t *testing.T) {
	order, event, err := NewQuoteRequest(customer, QuoteRequest{
		ArtisanID:          artisanID,
		Description:        "  Custom ceramic dinner set  ",
		BudgetRange:        "$200-$400",
		TimelinePreference: "1 month",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusQuoteRequested, order.Status)
	assert.Equal(t, "Custom ceramic dinner set", order.Description)
	assert.Nil(t, order.QuotedPrice)
	assert.Equal(t, 1, order.Version)
	assert.Equal(t, KindQuoteRequested, event.Kind)
	assert.Equal(t, []uint{artisanID}, event.Recipients)

	_, _, err = NewQuoteRequest(artisan, QuoteRequest{ArtisanID: 5, Description: "x"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	_, _, err = NewQuoteRequest(customer, QuoteRequest{ArtisanID: artisanID})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	_, _, err = NewQuoteRequest(customer, QuoteRequest{ArtisanID: customerID, Description: "x"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}
