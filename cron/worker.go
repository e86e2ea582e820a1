package cron

import (
	"context"
	"encoding/json"
	"time"

	"velora/models"
	"velora/services/booking"
	"velora/services/call"
	"velora/services/notification"
	"velora/services/subscription"
	"velora/services/tasks"
	"velora/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Deps are the services the background worker drives.
type Deps struct {
	Bookings      booking.BookingService
	Calls         call.CallService
	Subscriptions subscription.SubscriptionService
	Notifier      notification.NotificationService
}

// InitWorker runs the asynq worker in the background. It owns the
// scheduled side of the platform: booking reminders, auto-complete sweeps,
// ring timeouts and subscription expiry.
func InitWorker(deps Deps) {
	srv := asynq.NewServer(
		tasks.RedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendReminder, handleReminder(deps.Notifier))
	mux.HandleFunc(tasks.TypeBookingSweep, handleBookingSweep(deps.Bookings))
	mux.HandleFunc(tasks.TypeCallTimeout, handleCallTimeout(deps.Calls))
	mux.HandleFunc(tasks.TypeSubscriptionExpiry, handleSubscriptionExpiry(deps.Subscriptions))

	go func() {
		logger := utils.GetLogger()
		const maxAttempts = 5

		for attempt := 1; attempt <= maxAttempts; attempt++ {
			logger.Info("Starting task worker", zap.Int("attempt", attempt))
			if err := srv.Run(mux); err != nil {
				logger.Error("Task worker failed to start",
					zap.Int("attempt", attempt), zap.Error(err))
				if attempt == maxAttempts {
					logger.Fatal("Task worker exhausted retries")
				}
				time.Sleep(time.Duration(attempt*2) * time.Second)
				continue
			}
			return
		}
	}()
}

func handleReminder(notifier notification.NotificationService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			utils.GetLogger().Error("reminder: invalid payload", zap.Error(err))
			return err
		}
		return notifier.Notify(ctx, p.UserID, notification.Event{
			Type:     models.NotifTypeBookingReminder,
			TitleKey: p.Title,
			BodyKey:  p.Body,
			BodyArgs: []any{p.Service, p.StartAt},
			Data:     map[string]any{"bookingId": p.BookingID},
		})
	}
}

func handleBookingSweep(bookings booking.BookingService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.BookingSweepPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			utils.GetLogger().Error("booking sweep: invalid payload", zap.Error(err))
			return err
		}
		return bookings.AutoComplete(p.BookingID)
	}
}

func handleCallTimeout(calls call.CallService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.CallTimeoutPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			utils.GetLogger().Error("call timeout: invalid payload", zap.Error(err))
			return err
		}
		return calls.SweepTimeout(p.CallID)
	}
}

func handleSubscriptionExpiry(subs subscription.SubscriptionService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.SubscriptionExpiryPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			utils.GetLogger().Error("subscription expiry: invalid payload", zap.Error(err))
			return err
		}
		return subs.SweepExpiry(p.ModelID)
	}
}
