package bookingRepo

import (
	"errors"
	"time"

	"velora/models"

	"go.mongodb.org/mongo-driver/bson"
)

// Returned by UpdateStatus when the booking exists but is not in any of
// the expected states. Callers treat this as an illegal transition.
var ErrStatusConflict = errors.New("booking status conflict")

// ErrNotFound is returned when no booking matches the given ID.
var ErrNotFound = errors.New("booking not found")

// BookingRepository defines persistence operations for bookings.
type BookingRepository interface {
	Create(booking *models.Booking) error
	GetByID(id string) (*models.Booking, error)

	// UpdateStatus performs a guarded compare-and-set: the booking moves to
	// the target status only if its current status is one of from. Extra
	// fields in set are applied in the same update.
	UpdateStatus(id string, from []models.BookingStatus, to models.BookingStatus, set bson.M) (*models.Booking, error)

	ListByCustomer(customerID string, limit int64) ([]models.Booking, error)
	ListByModel(modelID string, limit int64) ([]models.Booking, error)
	ListByStatus(status models.BookingStatus, limit int64) ([]models.Booking, error)

	// FindOverlapping returns non-terminal bookings for the model whose
	// scheduled window intersects [start, end).
	FindOverlapping(modelID string, start, end time.Time) ([]models.Booking, error)
}
