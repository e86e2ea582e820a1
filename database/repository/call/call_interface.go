package callRepo

import (
	"errors"

	"velora/models"

	"go.mongodb.org/mongo-driver/bson"
)

// ErrStatusConflict is returned when the session exists but is not in any
// of the expected states.
var ErrStatusConflict = errors.New("call status conflict")

// ErrNotFound is returned when no call session matches the given ID.
var ErrNotFound = errors.New("call session not found")

// CallRepository defines persistence operations for call sessions.
type CallRepository interface {
	Create(session *models.CallSession) error
	GetByID(id string) (*models.CallSession, error)

	// UpdateStatus performs a guarded compare-and-set on the session status.
	UpdateStatus(id string, from []models.CallStatus, to models.CallStatus, set bson.M) (*models.CallSession, error)

	// RegisterPeer stores a participant's WebRTC peer ID on the session.
	RegisterPeer(id, userID, peerID string) (*models.CallSession, error)

	ListByUser(userID string, limit int64) ([]models.CallSession, error)
}
