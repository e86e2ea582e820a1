package subscription

import (
	"context"
	"testing"
	"time"

	profileRepo "velora/database/repository/profile"
	"velora/models"
	"velora/services/notification"
	"velora/services/wallet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProfiles struct {
	profileRepo.ProfileRepository
	profile *models.ModelProfile
}

func (f *fakeProfiles) GetByUserID(userID string) (*models.ModelProfile, error) {
	if f.profile != nil && f.profile.UserID == userID {
		cp := *f.profile
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeProfiles) SetPremiumUntil(userID string, until *time.Time) error {
	f.profile.PremiumUntil = until
	f.profile.PremiumLapsed = false
	return nil
}

func (f *fakeProfiles) MarkPremiumLapsed(userID string, until time.Time) (bool, error) {
	if f.profile.PremiumUntil == nil || !f.profile.PremiumUntil.Equal(until) || f.profile.PremiumLapsed {
		return false, nil
	}
	f.profile.PremiumLapsed = true
	return true, nil
}

type fakeSubWallet struct {
	wallet.WalletService
	charges   []float64
	chargeErr error
}

func (f *fakeSubWallet) ChargeSubscription(userID, planID string, amount float64) error {
	if f.chargeErr != nil {
		return f.chargeErr
	}
	f.charges = append(f.charges, amount)
	return nil
}

type fakeSubNotifier struct {
	notification.NotificationService
	events []notification.Event
}

func (f *fakeSubNotifier) Notify(ctx context.Context, userID string, ev notification.Event) error {
	f.events = append(f.events, ev)
	return nil
}

func newTestSubscriptionService(p *fakeProfiles, w *fakeSubWallet, n *fakeSubNotifier) *DefaultSubscriptionService {
	return &DefaultSubscriptionService{Profiles: p, Wallet: w, Notifier: n}
}

func TestPurchaseActivatesPremium(t *testing.T) {
	profiles := &fakeProfiles{profile: &models.ModelProfile{UserID: "model-1"}}
	w := &fakeSubWallet{}
	n := &fakeSubNotifier{}
	svc := newTestSubscriptionService(profiles, w, n)

	info, err := svc.Purchase("model-1", "premium_weekly")
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionActive, info.Status)
	require.NotNil(t, info.PremiumUntil)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), *info.PremiumUntil, time.Minute)

	require.Len(t, w.charges, 1)
	assert.Equal(t, 19.0, w.charges[0])
	require.Len(t, n.events, 1)
	assert.Equal(t, "subscription.activated.title", n.events[0].TitleKey)
}

func TestPurchaseExtendsFromCurrentEnd(t *testing.T) {
	current := time.Now().Add(3 * 24 * time.Hour)
	profiles := &fakeProfiles{profile: &models.ModelProfile{UserID: "model-1", PremiumUntil: &current}}
	svc := newTestSubscriptionService(profiles, &fakeSubWallet{}, &fakeSubNotifier{})

	info, err := svc.Purchase("model-1", "premium_weekly")
	require.NoError(t, err)
	assert.WithinDuration(t, current.Add(7*24*time.Hour), *info.PremiumUntil, time.Second)
}

func TestPurchaseUnknownPlan(t *testing.T) {
	profiles := &fakeProfiles{profile: &models.ModelProfile{UserID: "model-1"}}
	w := &fakeSubWallet{}
	svc := newTestSubscriptionService(profiles, w, &fakeSubNotifier{})

	_, err := svc.Purchase("model-1", "premium_yearly")
	assert.ErrorIs(t, err, ErrUnknownPlan)
	assert.Empty(t, w.charges)
}

func TestGetInfoStates(t *testing.T) {
	profiles := &fakeProfiles{profile: &models.ModelProfile{UserID: "model-1"}}
	svc := newTestSubscriptionService(profiles, &fakeSubWallet{}, &fakeSubNotifier{})

	info, err := svc.GetInfo("model-1")
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionInactive, info.Status)

	future := time.Now().Add(time.Hour)
	profiles.profile.PremiumUntil = &future
	info, _ = svc.GetInfo("model-1")
	assert.Equal(t, models.SubscriptionActive, info.Status)

	past := time.Now().Add(-time.Hour)
	profiles.profile.PremiumUntil = &past
	info, _ = svc.GetInfo("model-1")
	assert.Equal(t, models.SubscriptionLapsed, info.Status)
}

func TestSweepExpiry(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	profiles := &fakeProfiles{profile: &models.ModelProfile{UserID: "model-1", PremiumUntil: &past}}
	n := &fakeSubNotifier{}
	svc := newTestSubscriptionService(profiles, &fakeSubWallet{}, n)

	require.NoError(t, svc.SweepExpiry("model-1"))

	// The expired window survives the sweep so the account reads as
	// lapsed, not as never subscribed.
	require.NotNil(t, profiles.profile.PremiumUntil)
	assert.True(t, profiles.profile.PremiumLapsed)
	require.Len(t, n.events, 1)
	assert.Equal(t, "subscription.lapsed.title", n.events[0].TitleKey)

	info, err := svc.GetInfo("model-1")
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionLapsed, info.Status)
	assert.NotNil(t, info.PremiumUntil)

	// A repeat sweep of the same window must not notify again.
	require.NoError(t, svc.SweepExpiry("model-1"))
	assert.Len(t, n.events, 1)
}

func TestSweepExpirySkipsRenewed(t *testing.T) {
	// A renewal before the sweep fires moves the end forward; the sweep
	// must leave it alone.
	future := time.Now().Add(6 * 24 * time.Hour)
	profiles := &fakeProfiles{profile: &models.ModelProfile{UserID: "model-1", PremiumUntil: &future}}
	n := &fakeSubNotifier{}
	svc := newTestSubscriptionService(profiles, &fakeSubWallet{}, n)

	require.NoError(t, svc.SweepExpiry("model-1"))
	assert.NotNil(t, profiles.profile.PremiumUntil)
	assert.Empty(t, n.events)
}
