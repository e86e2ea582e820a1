package booking

import (
	"errors"

	bookingRepo "velora/database/repository/booking"
	profileRepo "velora/database/repository/profile"
	"velora/models"
	"velora/services/notification"
	"velora/services/user"
	"velora/services/wallet"

	"github.com/hibiken/asynq"
)

var (
	// ErrSlotUnavailable means the requested window falls outside the
	// model's availability or collides with another booking.
	ErrSlotUnavailable = errors.New("requested slot is not available")
	// ErrIllegalTransition means the booking is not in a state the
	// requested operation may act on.
	ErrIllegalTransition = errors.New("illegal booking transition")
	// ErrNotParticipant means the caller is neither the customer nor the
	// model on the booking.
	ErrNotParticipant = errors.New("not a participant of this booking")
)

// BookingService drives the booking lifecycle state machine.
type BookingService interface {
	CreateBooking(customerID string, in models.BookingInput) (*models.Booking, error)
	GetBooking(callerID, bookingID string) (*models.Booking, error)
	ListBookings(userID string, role models.Role, limit int64) ([]models.Booking, error)

	Confirm(modelID, bookingID string) (*models.Booking, error)
	Reject(modelID, bookingID string) (*models.Booking, error)
	Cancel(actorID, bookingID string) (*models.Booking, error)
	Start(modelID, bookingID string) (*models.Booking, error)
	CompleteRequest(modelID, bookingID string) (*models.Booking, error)
	ConfirmCompletion(customerID, bookingID string) (*models.Booking, error)
	Dispute(customerID, bookingID, note string) (*models.Booking, error)

	// AutoComplete is invoked by the scheduled sweep for bookings left in
	// awaiting_confirmation past the grace window.
	AutoComplete(bookingID string) error

	// ResolveDispute settles a disputed booking. With refundCustomer the
	// hold goes back to the customer; otherwise it is captured to the model.
	ResolveDispute(bookingID string, refundCustomer bool, note string) (*models.Booking, error)
}

// DefaultBookingService is the production implementation. Tasks may be nil,
// in which case reminder and sweep scheduling is skipped.
type DefaultBookingService struct {
	Repo     bookingRepo.BookingRepository
	Profiles profileRepo.ProfileRepository
	Users    user.UserService
	Wallet   wallet.WalletService
	Notifier notification.NotificationService
	Tasks    *asynq.Client
}
