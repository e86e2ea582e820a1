package tasks

import (
	"encoding/json"
	"time"

	"velora/config"
	"velora/models"

	"github.com/hibiken/asynq"
)

// Task type names shared between the scheduler side and the worker mux.
const (
	TypeSendReminder       = "booking:reminder"
	TypeBookingSweep       = "booking:sweep"
	TypeCallTimeout        = "call:timeout"
	TypeSubscriptionExpiry = "subscription:expiry"
)

// RedisOpt returns the asynq Redis connection for the task queue DB.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	}
}

// NewClient returns an asynq client on the task queue DB.
func NewClient() *asynq.Client {
	return asynq.NewClient(RedisOpt())
}

func newTask(typename string, payload any, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	return asynq.NewTask(typename, b), []asynq.Option{asynq.ProcessAt(fireAt)}, nil
}

// NewReminderTask schedules a booking reminder notification.
func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	return newTask(TypeSendReminder, payload, fireAt)
}

// NewBookingSweepTask schedules the auto-complete sweep for a booking left
// in awaiting_confirmation past the grace window.
func NewBookingSweepTask(payload models.BookingSweepPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	return newTask(TypeBookingSweep, payload, fireAt)
}

// NewCallTimeoutTask schedules the missed-call sweep for a ringing session.
func NewCallTimeoutTask(payload models.CallTimeoutPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	return newTask(TypeCallTimeout, payload, fireAt)
}

// NewSubscriptionExpiryTask schedules the premium-placement expiry check.
func NewSubscriptionExpiryTask(payload models.SubscriptionExpiryPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	return newTask(TypeSubscriptionExpiry, payload, fireAt)
}
