package call

import (
	"errors"

	callRepo "velora/database/repository/call"
	"velora/models"
	"velora/services/notification"
	"velora/services/user"
	"velora/services/wallet"

	"github.com/hibiken/asynq"
)

var (
	// ErrIllegalCallState means the session is not in a state the
	// requested operation may act on.
	ErrIllegalCallState = errors.New("illegal call state")
	// ErrNotCallParticipant means the caller is not part of the session.
	ErrNotCallParticipant = errors.New("not a participant of this call")
)

// CallService brokers WebRTC call sessions: ringing, peer ID exchange and
// per-minute billing. Media flows peer to peer; the server never sees it.
type CallService interface {
	Initiate(callerID string, in models.CallInitiateInput) (*models.CallSession, error)
	Accept(calleeID, callID, peerID string) (*models.CallSession, error)
	Decline(calleeID, callID string) (*models.CallSession, error)
	RegisterPeer(userID, callID, peerID string) (*models.CallSession, error)
	End(userID, callID string) (*models.CallSession, error)

	GetSession(userID, callID string) (*models.CallSession, error)
	History(userID string, limit int64) ([]models.CallSession, error)

	// SweepTimeout marks a still-ringing session as missed. Invoked by the
	// scheduled ring-timeout task.
	SweepTimeout(callID string) error
}

// DefaultCallService is the production implementation. Tasks may be nil,
// in which case no ring-timeout is scheduled.
type DefaultCallService struct {
	Repo     callRepo.CallRepository
	Users    user.UserService
	Wallet   wallet.WalletService
	Notifier notification.NotificationService
	Tasks    *asynq.Client
}
