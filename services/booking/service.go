package booking

import (
	"context"
	"fmt"
	"time"

	"velora/config"
	bookingRepo "velora/database/repository/booking"
	"velora/models"
	"velora/services/notification"
	"velora/services/tasks"
	"velora/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const bookingTimeFormat = "Mon, 02 Jan 15:04"

// CreateBooking validates the request against the model's offer and
// availability, checks the customer can afford it, and stores the booking
// as pending. Funds are not held until the model confirms.
func (s *DefaultBookingService) CreateBooking(customerID string, in models.BookingInput) (*models.Booking, error) {
	if in.DurationMin <= 0 {
		return nil, fmt.Errorf("duration must be positive")
	}
	if !in.Start.After(time.Now()) {
		return nil, fmt.Errorf("booking must start in the future")
	}
	if in.ModelID == customerID {
		return nil, fmt.Errorf("cannot book yourself")
	}

	profile, err := s.Profiles.GetByUserID(in.ModelID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch model profile: %w", err)
	}
	if profile == nil {
		return nil, fmt.Errorf("model %s not found", in.ModelID)
	}

	var rate *models.ServiceRate
	for i := range profile.Services {
		if profile.Services[i].Service == in.Service {
			rate = &profile.Services[i]
			break
		}
	}
	if rate == nil {
		return nil, fmt.Errorf("model does not offer service %q", in.Service)
	}
	if in.DurationMin < rate.MinHours*60 {
		return nil, fmt.Errorf("service %q requires at least %d hours", in.Service, rate.MinHours)
	}

	end := in.Start.Add(time.Duration(in.DurationMin) * time.Minute)
	if !slotCovers(profile.Availability, in.Start, end) {
		return nil, ErrSlotUnavailable
	}

	overlapping, err := s.Repo.FindOverlapping(in.ModelID, in.Start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to check overlapping bookings: %w", err)
	}
	if len(overlapping) > 0 {
		return nil, ErrSlotUnavailable
	}

	price := rate.PricePerHr * float64(in.DurationMin) / 60

	w, err := s.Wallet.GetWallet(customerID)
	if err != nil {
		return nil, err
	}
	if w.Available() < price {
		return nil, fmt.Errorf("wallet cannot cover the price of %.2f %s", price, w.Currency)
	}

	now := time.Now()
	b := &models.Booking{
		ID:           uuid.New().String(),
		CustomerID:   customerID,
		ModelID:      in.ModelID,
		Service:      in.Service,
		Start:        in.Start,
		DurationMin:  in.DurationMin,
		LocationNote: in.LocationNote,
		Price:        price,
		Currency:     w.Currency,
		Status:       models.BookingPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(b); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.notify(b.ModelID, notification.Event{
		Type:     models.NotifTypeBookingUpdate,
		TitleKey: "booking.requested.title",
		BodyKey:  "booking.requested.body",
		BodyArgs: []any{s.customerName(customerID), b.Service, b.Start.Format(bookingTimeFormat)},
		Data:     bookingData(b),
	})
	return b, nil
}

// GetBooking returns the booking if the caller participates in it.
func (s *DefaultBookingService) GetBooking(callerID, bookingID string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if b.CustomerID != callerID && b.ModelID != callerID {
		return nil, ErrNotParticipant
	}
	return b, nil
}

// ListBookings returns the user's bookings for the given role.
func (s *DefaultBookingService) ListBookings(userID string, role models.Role, limit int64) ([]models.Booking, error) {
	if role == models.RoleModel {
		return s.Repo.ListByModel(userID, limit)
	}
	return s.Repo.ListByCustomer(userID, limit)
}

// Confirm moves pending → confirmed and escrows the price out of the
// customer's wallet. If the guarded transition loses, the hold is rolled
// back.
func (s *DefaultBookingService) Confirm(modelID, bookingID string) (*models.Booking, error) {
	b, err := s.ownBooking(modelID, bookingID)
	if err != nil {
		return nil, err
	}

	holdTxID, err := s.Wallet.HoldFunds(b.CustomerID, b.ID, b.Price)
	if err != nil {
		return nil, fmt.Errorf("failed to hold booking funds: %w", err)
	}

	updated, err := s.Repo.UpdateStatus(bookingID,
		[]models.BookingStatus{models.BookingPending},
		models.BookingConfirmed,
		bson.M{"holdTxId": holdTxID},
	)
	if err != nil {
		if rbErr := s.Wallet.ReleaseFunds(b.CustomerID, b.ID, b.Price); rbErr != nil {
			utils.GetLogger().Error("failed to roll back booking hold",
				zap.String("bookingId", bookingID), zap.Error(rbErr))
		}
		return nil, transitionErr(err)
	}

	s.scheduleReminder(updated)

	s.notify(updated.CustomerID, notification.Event{
		Type:     models.NotifTypeBookingUpdate,
		TitleKey: "booking.confirmed.title",
		BodyKey:  "booking.confirmed.body",
		BodyArgs: []any{s.modelName(modelID), updated.Service},
		Data:     bookingData(updated),
	})
	return updated, nil
}

// Reject moves pending → rejected.
func (s *DefaultBookingService) Reject(modelID, bookingID string) (*models.Booking, error) {
	if _, err := s.ownBooking(modelID, bookingID); err != nil {
		return nil, err
	}

	updated, err := s.Repo.UpdateStatus(bookingID,
		[]models.BookingStatus{models.BookingPending},
		models.BookingRejected, nil,
	)
	if err != nil {
		return nil, transitionErr(err)
	}

	s.notify(updated.CustomerID, notification.Event{
		Type:     models.NotifTypeBookingUpdate,
		TitleKey: "booking.rejected.title",
		BodyKey:  "booking.rejected.body",
		BodyArgs: []any{s.modelName(modelID)},
		Data:     bookingData(updated),
	})
	return updated, nil
}

// Cancel lets either participant cancel before the scheduled start. A
// confirmed booking releases its hold; a late customer cancellation
// forfeits the configured fee to the model first.
func (s *DefaultBookingService) Cancel(actorID, bookingID string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if b.CustomerID != actorID && b.ModelID != actorID {
		return nil, ErrNotParticipant
	}
	if !time.Now().Before(b.Start) {
		return nil, ErrIllegalTransition
	}

	updated, err := s.Repo.UpdateStatus(bookingID,
		[]models.BookingStatus{models.BookingPending, models.BookingConfirmed},
		models.BookingCancelled,
		bson.M{"cancelledBy": actorID},
	)
	if err != nil {
		return nil, transitionErr(err)
	}

	// Settle from the document the transition actually observed. A confirm
	// can land between the read above and the status update; the pre-read
	// snapshot would then miss the hold and leak the escrowed funds.
	if updated.HoldTxID != "" {
		s.settleCancellation(updated, actorID)
	}

	counterparty := b.ModelID
	if actorID == b.ModelID {
		counterparty = b.CustomerID
	}
	s.notify(counterparty, notification.Event{
		Type:     models.NotifTypeBookingUpdate,
		TitleKey: "booking.cancelled.title",
		BodyKey:  "booking.cancelled.body",
		BodyArgs: []any{updated.Service},
		Data:     bookingData(updated),
	})
	return updated, nil
}

// settleCancellation releases the hold. Late customer cancellations capture
// a fee to the model before releasing the rest.
func (s *DefaultBookingService) settleCancellation(b *models.Booking, actorID string) {
	lateWindow := time.Duration(config.AppConfig.LateCancelWindowH) * time.Hour
	late := actorID == b.CustomerID && time.Until(b.Start) < lateWindow

	remainder := b.Price
	if late && config.AppConfig.LateCancelFee > 0 {
		fee := b.Price * config.AppConfig.LateCancelFee
		if err := s.Wallet.CaptureToModel(b.CustomerID, b.ModelID, b.ID, fee, 0); err != nil {
			utils.GetLogger().Error("failed to capture late-cancel fee",
				zap.String("bookingId", b.ID), zap.Error(err))
		} else {
			remainder = b.Price - fee
		}
	}
	if remainder > 0 {
		if err := s.Wallet.ReleaseFunds(b.CustomerID, b.ID, remainder); err != nil {
			utils.GetLogger().Error("failed to release cancelled booking hold",
				zap.String("bookingId", b.ID), zap.Error(err))
		}
	}
}

// Start moves confirmed → in_progress.
func (s *DefaultBookingService) Start(modelID, bookingID string) (*models.Booking, error) {
	if _, err := s.ownBooking(modelID, bookingID); err != nil {
		return nil, err
	}

	updated, err := s.Repo.UpdateStatus(bookingID,
		[]models.BookingStatus{models.BookingConfirmed},
		models.BookingInProgress, nil,
	)
	if err != nil {
		return nil, transitionErr(err)
	}

	s.notify(updated.CustomerID, notification.Event{
		Type:     models.NotifTypeBookingUpdate,
		TitleKey: "booking.started.title",
		BodyKey:  "booking.started.body",
		BodyArgs: []any{s.modelName(modelID)},
		Data:     bookingData(updated),
	})
	return updated, nil
}

// CompleteRequest moves in_progress → awaiting_confirmation and schedules
// the auto-complete sweep.
func (s *DefaultBookingService) CompleteRequest(modelID, bookingID string) (*models.Booking, error) {
	if _, err := s.ownBooking(modelID, bookingID); err != nil {
		return nil, err
	}

	updated, err := s.Repo.UpdateStatus(bookingID,
		[]models.BookingStatus{models.BookingInProgress},
		models.BookingAwaitingConfirmation, nil,
	)
	if err != nil {
		return nil, transitionErr(err)
	}

	grace := config.AppConfig.AutoCompleteGraceH
	s.scheduleSweep(updated.ID, time.Now().Add(time.Duration(grace)*time.Hour))

	s.notify(updated.CustomerID, notification.Event{
		Type:     models.NotifTypeBookingUpdate,
		TitleKey: "booking.awaiting.title",
		BodyKey:  "booking.awaiting.body",
		BodyArgs: []any{s.modelName(modelID), grace},
		Data:     bookingData(updated),
	})
	return updated, nil
}

// ConfirmCompletion moves awaiting_confirmation → completed and settles the
// escrow to the model minus commission.
func (s *DefaultBookingService) ConfirmCompletion(customerID, bookingID string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if b.CustomerID != customerID {
		return nil, ErrNotParticipant
	}

	updated, err := s.Repo.UpdateStatus(bookingID,
		[]models.BookingStatus{models.BookingAwaitingConfirmation},
		models.BookingCompleted, nil,
	)
	if err != nil {
		return nil, transitionErr(err)
	}

	s.settleCompletion(updated)
	return updated, nil
}

// AutoComplete settles a booking the customer never confirmed. Invoked by
// the scheduled sweep; a booking no longer awaiting confirmation is left
// alone.
func (s *DefaultBookingService) AutoComplete(bookingID string) error {
	updated, err := s.Repo.UpdateStatus(bookingID,
		[]models.BookingStatus{models.BookingAwaitingConfirmation},
		models.BookingCompleted, nil,
	)
	if err != nil {
		if err == bookingRepo.ErrStatusConflict {
			return nil
		}
		return err
	}
	s.settleCompletion(updated)
	return nil
}

// settleCompletion captures the hold to the model and notifies both sides.
func (s *DefaultBookingService) settleCompletion(b *models.Booking) {
	commission := b.Price * config.AppConfig.PlatformCommission
	if err := s.Wallet.CaptureToModel(b.CustomerID, b.ModelID, b.ID, b.Price, commission); err != nil {
		utils.GetLogger().Error("failed to settle completed booking",
			zap.String("bookingId", b.ID), zap.Error(err))
		return
	}
	net := b.Price - commission
	s.notify(b.ModelID, notification.Event{
		Type:     models.NotifTypeBookingUpdate,
		TitleKey: "booking.completed.title",
		BodyKey:  "booking.completed.body",
		BodyArgs: []any{net, b.Currency},
		Data:     bookingData(b),
	})
}

// Dispute moves awaiting_confirmation → disputed. The hold stays frozen
// until an admin resolves it.
func (s *DefaultBookingService) Dispute(customerID, bookingID, note string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if b.CustomerID != customerID {
		return nil, ErrNotParticipant
	}

	updated, err := s.Repo.UpdateStatus(bookingID,
		[]models.BookingStatus{models.BookingAwaitingConfirmation},
		models.BookingDisputed,
		bson.M{"disputeNote": note},
	)
	if err != nil {
		return nil, transitionErr(err)
	}

	s.notify(updated.ModelID, notification.Event{
		Type:     models.NotifTypeDispute,
		TitleKey: "booking.disputed.title",
		BodyKey:  "booking.disputed.body",
		Data:     bookingData(updated),
	})
	return updated, nil
}

// ResolveDispute is an admin operation settling a disputed booking either
// way.
func (s *DefaultBookingService) ResolveDispute(bookingID string, refundCustomer bool, note string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}

	target := models.BookingCompleted
	if refundCustomer {
		target = models.BookingCancelled
	}
	updated, err := s.Repo.UpdateStatus(bookingID,
		[]models.BookingStatus{models.BookingDisputed},
		target,
		bson.M{"disputeNote": note},
	)
	if err != nil {
		return nil, transitionErr(err)
	}

	if refundCustomer {
		if err := s.Wallet.RefundToCustomer(b.CustomerID, b.ID, b.Price); err != nil {
			utils.GetLogger().Error("failed to refund disputed booking",
				zap.String("bookingId", b.ID), zap.Error(err))
		}
		s.notify(b.CustomerID, notification.Event{
			Type:     models.NotifTypeDispute,
			TitleKey: "booking.cancelled.title",
			BodyKey:  "booking.cancelled.body",
			BodyArgs: []any{b.Service},
			Data:     bookingData(updated),
		})
	} else {
		s.settleCompletion(updated)
	}
	return updated, nil
}

func (s *DefaultBookingService) ownBooking(modelID, bookingID string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if b.ModelID != modelID {
		return nil, ErrNotParticipant
	}
	return b, nil
}

func (s *DefaultBookingService) scheduleReminder(b *models.Booking) {
	if s.Tasks == nil {
		return
	}
	fireAt := b.Start.Add(-time.Duration(config.AppConfig.BookingReminderMin) * time.Minute)
	if !fireAt.After(time.Now()) {
		return
	}
	task, opts, err := tasks.NewReminderTask(models.ReminderPayload{
		UserID:    b.CustomerID,
		BookingID: b.ID,
		Title:     "booking.reminder.title",
		Body:      "booking.reminder.body",
		Service:   b.Service,
		StartAt:   b.Start.Format(bookingTimeFormat),
	}, fireAt)
	if err == nil {
		_, err = s.Tasks.Enqueue(task, opts...)
	}
	if err != nil {
		utils.GetLogger().Warn("failed to schedule booking reminder",
			zap.String("bookingId", b.ID), zap.Error(err))
	}
}

func (s *DefaultBookingService) scheduleSweep(bookingID string, fireAt time.Time) {
	if s.Tasks == nil {
		return
	}
	task, opts, err := tasks.NewBookingSweepTask(models.BookingSweepPayload{BookingID: bookingID}, fireAt)
	if err == nil {
		_, err = s.Tasks.Enqueue(task, opts...)
	}
	if err != nil {
		utils.GetLogger().Warn("failed to schedule auto-complete sweep",
			zap.String("bookingId", bookingID), zap.Error(err))
	}
}

func (s *DefaultBookingService) notify(userID string, ev notification.Event) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Notify(context.Background(), userID, ev); err != nil {
		utils.GetLogger().Warn("booking notification failed",
			zap.String("userId", userID), zap.Error(err))
	}
}

func (s *DefaultBookingService) modelName(modelID string) string {
	if p, err := s.Profiles.GetByUserID(modelID); err == nil && p != nil {
		return p.DisplayName
	}
	return "the model"
}

func (s *DefaultBookingService) customerName(customerID string) string {
	if s.Users != nil {
		if u, err := s.Users.GetUserByID(customerID); err == nil && u != nil {
			return u.Username
		}
	}
	return "A customer"
}

func bookingData(b *models.Booking) map[string]any {
	return map[string]any{
		"bookingId": b.ID,
		"status":    string(b.Status),
	}
}

// slotCovers reports whether the window [start, end) sits inside one of the
// weekly availability slots. An empty availability list means always open.
// Overnight windows spanning midnight are not supported.
func slotCovers(slots []models.AvailabilitySlot, start, end time.Time) bool {
	if len(slots) == 0 {
		return true
	}
	if start.Day() != end.Day() && !end.Equal(dayStart(end)) {
		return false
	}
	startMin := start.Hour()*60 + start.Minute()
	endMin := startMin + int(end.Sub(start).Minutes())
	for _, slot := range slots {
		if slot.Weekday == start.Weekday() && startMin >= slot.Start && endMin <= slot.End {
			return true
		}
	}
	return false
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func transitionErr(err error) error {
	if err == bookingRepo.ErrStatusConflict {
		return ErrIllegalTransition
	}
	return err
}
