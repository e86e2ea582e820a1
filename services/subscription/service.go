package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	profileRepo "velora/database/repository/profile"
	"velora/models"
	"velora/services/notification"
	"velora/services/tasks"
	"velora/services/wallet"
	"velora/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// ErrUnknownPlan is returned for a plan ID that does not exist.
var ErrUnknownPlan = errors.New("unknown subscription plan")

// Plans are the purchasable premium-placement options.
var Plans = []models.SubscriptionPlan{
	{ID: "premium_weekly", Name: "Premium Weekly", Price: 19.0, Duration: 7 * 24 * time.Hour},
	{ID: "premium_monthly", Name: "Premium Monthly", Price: 59.0, Duration: 30 * 24 * time.Hour},
}

// SubscriptionService sells premium placement to models.
type SubscriptionService interface {
	ListPlans() []models.SubscriptionPlan
	GetInfo(modelID string) (*models.SubscriptionInfo, error)
	// Purchase debits the plan price from the model's wallet and extends
	// premium placement. Buying while active extends from the current end.
	Purchase(modelID, planID string) (*models.SubscriptionInfo, error)
	// SweepExpiry flags the subscription as lapsed once the paid window
	// has passed and notifies the model.
	SweepExpiry(modelID string) error
}

// DefaultSubscriptionService is the production implementation.
type DefaultSubscriptionService struct {
	Profiles profileRepo.ProfileRepository
	Wallet   wallet.WalletService
	Notifier notification.NotificationService
	Tasks    *asynq.Client
}

// ListPlans returns the available plans.
func (s *DefaultSubscriptionService) ListPlans() []models.SubscriptionPlan {
	return Plans
}

// GetInfo reports the model's current subscription state.
func (s *DefaultSubscriptionService) GetInfo(modelID string) (*models.SubscriptionInfo, error) {
	p, err := s.Profiles.GetByUserID(modelID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("profile not found for model %s", modelID)
	}

	info := &models.SubscriptionInfo{Status: models.SubscriptionInactive}
	if p.PremiumUntil != nil {
		if p.PremiumUntil.After(time.Now()) {
			info.Status = models.SubscriptionActive
			info.PremiumUntil = p.PremiumUntil
		} else {
			info.Status = models.SubscriptionLapsed
			info.PremiumUntil = p.PremiumUntil
		}
	}
	return info, nil
}

// Purchase debits the wallet and extends premium placement.
func (s *DefaultSubscriptionService) Purchase(modelID, planID string) (*models.SubscriptionInfo, error) {
	var plan *models.SubscriptionPlan
	for i := range Plans {
		if Plans[i].ID == planID {
			plan = &Plans[i]
			break
		}
	}
	if plan == nil {
		return nil, ErrUnknownPlan
	}

	p, err := s.Profiles.GetByUserID(modelID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("profile not found for model %s", modelID)
	}

	if err := s.Wallet.ChargeSubscription(modelID, plan.ID, plan.Price); err != nil {
		return nil, err
	}

	from := time.Now()
	if p.PremiumUntil != nil && p.PremiumUntil.After(from) {
		from = *p.PremiumUntil
	}
	until := from.Add(plan.Duration)
	if err := s.Profiles.SetPremiumUntil(modelID, &until); err != nil {
		return nil, fmt.Errorf("failed to activate subscription: %w", err)
	}

	s.scheduleExpiry(modelID, until)

	if s.Notifier != nil {
		if err := s.Notifier.Notify(context.Background(), modelID, notification.Event{
			Type:     models.NotifTypeSubscription,
			TitleKey: "subscription.activated.title",
			BodyKey:  "subscription.activated.body",
			BodyArgs: []any{plan.Name, until.Format("02 Jan 2006")},
			Data:     map[string]any{"planId": plan.ID, "premiumUntil": until},
		}); err != nil {
			utils.GetLogger().Warn("subscription notification failed",
				zap.String("modelId", modelID), zap.Error(err))
		}
	}

	return &models.SubscriptionInfo{
		Status:       models.SubscriptionActive,
		PlanID:       plan.ID,
		PremiumUntil: &until,
	}, nil
}

// SweepExpiry lapses premium placement once the paid window has passed.
// A renewal moves premiumUntil forward, so an early sweep is a no-op.
func (s *DefaultSubscriptionService) SweepExpiry(modelID string) error {
	p, err := s.Profiles.GetByUserID(modelID)
	if err != nil {
		return fmt.Errorf("failed to fetch profile: %w", err)
	}
	if p == nil || p.PremiumUntil == nil || p.PremiumUntil.After(time.Now()) {
		return nil
	}

	// The expired window stays on the profile so the model still sees a
	// lapsed subscription rather than none at all. The lapse flag makes
	// the sweep single-shot.
	flipped, err := s.Profiles.MarkPremiumLapsed(modelID, *p.PremiumUntil)
	if err != nil {
		return fmt.Errorf("failed to lapse subscription: %w", err)
	}
	if !flipped {
		return nil
	}

	if s.Notifier != nil {
		if err := s.Notifier.Notify(context.Background(), modelID, notification.Event{
			Type:     models.NotifTypeSubscription,
			TitleKey: "subscription.lapsed.title",
			BodyKey:  "subscription.lapsed.body",
		}); err != nil {
			utils.GetLogger().Warn("subscription lapse notification failed",
				zap.String("modelId", modelID), zap.Error(err))
		}
	}
	return nil
}

func (s *DefaultSubscriptionService) scheduleExpiry(modelID string, fireAt time.Time) {
	if s.Tasks == nil {
		return
	}
	task, opts, err := tasks.NewSubscriptionExpiryTask(models.SubscriptionExpiryPayload{ModelID: modelID}, fireAt)
	if err == nil {
		_, err = s.Tasks.Enqueue(task, opts...)
	}
	if err != nil {
		utils.GetLogger().Warn("failed to schedule subscription expiry",
			zap.String("modelId", modelID), zap.Error(err))
	}
}
