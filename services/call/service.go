package call

import (
	"context"
	"fmt"
	"math"
	"time"

	"velora/config"
	callRepo "velora/database/repository/call"
	"velora/models"
	"velora/services/notification"
	"velora/services/tasks"
	"velora/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// signalEvent is the ephemeral SSE payload for call signaling.
type signalEvent struct {
	Event  string `json:"event"` // incoming, accepted, declined, peer, ended, missed
	CallID string `json:"callId"`
	UserID string `json:"userId,omitempty"`
	PeerID string `json:"peerId,omitempty"`
	Video  bool   `json:"video,omitempty"`
}

// Initiate opens a ringing session toward the callee, pushes the incoming
// call over SSE and FCM, and schedules the ring timeout.
func (s *DefaultCallService) Initiate(callerID string, in models.CallInitiateInput) (*models.CallSession, error) {
	if in.CalleeID == callerID {
		return nil, fmt.Errorf("cannot call yourself")
	}
	caller, err := s.Users.GetUserByID(callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch caller: %w", err)
	}
	callee, err := s.Users.GetUserByID(in.CalleeID)
	if err != nil {
		return nil, fmt.Errorf("callee %s not found: %w", in.CalleeID, err)
	}
	if callee.Banned {
		return nil, fmt.Errorf("callee is not reachable")
	}

	// Customer-to-model calls bill per minute at the platform rate.
	billable := caller.Role == models.RoleCustomer && callee.Role == models.RoleModel
	rate := 0.0
	if billable {
		rate = config.AppConfig.CallRatePerMin
		w, err := s.Wallet.GetWallet(callerID)
		if err != nil {
			return nil, err
		}
		if w.Available() < rate {
			return nil, fmt.Errorf("wallet cannot cover a billable call")
		}
	}

	sess := &models.CallSession{
		ID:           uuid.New().String(),
		CallerID:     callerID,
		CalleeID:     in.CalleeID,
		CallerPeerID: in.PeerID,
		Video:        in.Video,
		Status:       models.CallRinging,
		Billable:     billable,
		RatePerMin:   rate,
		StartedAt:    time.Now(),
	}
	if err := s.Repo.Create(sess); err != nil {
		return nil, fmt.Errorf("failed to create call session: %w", err)
	}

	s.scheduleTimeout(sess.ID)

	ctx := context.Background()
	if err := s.Notifier.Notify(ctx, sess.CalleeID, notification.Event{
		Type:     models.NotifTypeCallSignal,
		TitleKey: "call.incoming.title",
		BodyKey:  "call.incoming.body",
		BodyArgs: []any{caller.Username},
		Data: map[string]any{
			"event":        "incoming",
			"callId":       sess.ID,
			"callerId":     sess.CallerID,
			"callerPeerId": sess.CallerPeerID,
			"video":        sess.Video,
			"billable":     sess.Billable,
		},
	}); err != nil {
		utils.GetLogger().Warn("incoming call notification failed",
			zap.String("callId", sess.ID), zap.Error(err))
	}
	return sess, nil
}

// Accept moves ringing → accepted and hands the callee's peer ID to the
// caller so the WebRTC handshake can start.
func (s *DefaultCallService) Accept(calleeID, callID, peerID string) (*models.CallSession, error) {
	sess, err := s.Repo.GetByID(callID)
	if err != nil {
		return nil, err
	}
	if sess.CalleeID != calleeID {
		return nil, ErrNotCallParticipant
	}

	now := time.Now()
	updated, err := s.Repo.UpdateStatus(callID,
		[]models.CallStatus{models.CallRinging},
		models.CallAccepted,
		bson.M{"calleePeerId": peerID, "acceptedAt": now},
	)
	if err != nil {
		return nil, stateErr(err)
	}

	s.signal(updated.CallerID, signalEvent{
		Event:  "accepted",
		CallID: updated.ID,
		UserID: calleeID,
		PeerID: peerID,
	})
	return updated, nil
}

// Decline moves ringing → declined.
func (s *DefaultCallService) Decline(calleeID, callID string) (*models.CallSession, error) {
	sess, err := s.Repo.GetByID(callID)
	if err != nil {
		return nil, err
	}
	if sess.CalleeID != calleeID {
		return nil, ErrNotCallParticipant
	}

	updated, err := s.Repo.UpdateStatus(callID,
		[]models.CallStatus{models.CallRinging},
		models.CallDeclined,
		bson.M{"endedAt": time.Now()},
	)
	if err != nil {
		return nil, stateErr(err)
	}

	s.signal(updated.CallerID, signalEvent{Event: "declined", CallID: updated.ID, UserID: calleeID})
	return updated, nil
}

// RegisterPeer updates a participant's peer ID mid-session, e.g. after a
// reconnect, and forwards it to the other side.
func (s *DefaultCallService) RegisterPeer(userID, callID, peerID string) (*models.CallSession, error) {
	sess, err := s.Repo.GetByID(callID)
	if err != nil {
		return nil, err
	}
	if sess.CallerID != userID && sess.CalleeID != userID {
		return nil, ErrNotCallParticipant
	}
	if sess.Status != models.CallRinging && sess.Status != models.CallAccepted {
		return nil, ErrIllegalCallState
	}

	updated, err := s.Repo.RegisterPeer(callID, userID, peerID)
	if err != nil {
		return nil, err
	}

	other := sess.CalleeID
	if userID == sess.CalleeID {
		other = sess.CallerID
	}
	s.signal(other, signalEvent{Event: "peer", CallID: callID, UserID: userID, PeerID: peerID})
	return updated, nil
}

// End terminates the session from either side. An accepted billable call is
// charged per started minute; ending an unanswered ring just closes it.
func (s *DefaultCallService) End(userID, callID string) (*models.CallSession, error) {
	sess, err := s.Repo.GetByID(callID)
	if err != nil {
		return nil, err
	}
	if sess.CallerID != userID && sess.CalleeID != userID {
		return nil, ErrNotCallParticipant
	}

	updated, err := s.Repo.UpdateStatus(callID,
		[]models.CallStatus{models.CallRinging, models.CallAccepted},
		models.CallEnded,
		bson.M{"endedAt": time.Now()},
	)
	if err != nil {
		return nil, stateErr(err)
	}

	if updated.Billable && updated.AcceptedAt != nil {
		updated = s.bill(updated)
	}

	other := updated.CalleeID
	if userID == updated.CalleeID {
		other = updated.CallerID
	}
	s.signal(other, signalEvent{Event: "ended", CallID: updated.ID, UserID: userID})
	return updated, nil
}

// bill charges the caller for the talk time, rounding up to whole minutes.
func (s *DefaultCallService) bill(sess *models.CallSession) *models.CallSession {
	minutes := math.Ceil(sess.Duration().Minutes())
	if minutes < 1 {
		minutes = 1
	}
	amount := minutes * sess.RatePerMin
	commission := amount * config.AppConfig.PlatformCommission

	if err := s.Wallet.ChargeCall(sess.CallerID, sess.CalleeID, sess.ID, amount, commission); err != nil {
		utils.GetLogger().Error("failed to charge call",
			zap.String("callId", sess.ID), zap.Float64("amount", amount), zap.Error(err))
		return sess
	}

	charged, err := s.Repo.UpdateStatus(sess.ID,
		[]models.CallStatus{models.CallEnded},
		models.CallEnded,
		bson.M{"charged": amount},
	)
	if err != nil {
		utils.GetLogger().Error("failed to record call charge",
			zap.String("callId", sess.ID), zap.Error(err))
		return sess
	}
	return charged
}

// GetSession returns the session if the caller participates in it.
func (s *DefaultCallService) GetSession(userID, callID string) (*models.CallSession, error) {
	sess, err := s.Repo.GetByID(callID)
	if err != nil {
		return nil, err
	}
	if sess.CallerID != userID && sess.CalleeID != userID {
		return nil, ErrNotCallParticipant
	}
	return sess, nil
}

// History lists the user's recent sessions.
func (s *DefaultCallService) History(userID string, limit int64) ([]models.CallSession, error) {
	return s.Repo.ListByUser(userID, limit)
}

// SweepTimeout marks a session still ringing past the timeout as missed
// and tells the caller. A session already answered or closed is left alone.
func (s *DefaultCallService) SweepTimeout(callID string) error {
	updated, err := s.Repo.UpdateStatus(callID,
		[]models.CallStatus{models.CallRinging},
		models.CallMissed,
		bson.M{"endedAt": time.Now()},
	)
	if err != nil {
		if err == callRepo.ErrStatusConflict {
			return nil
		}
		return err
	}

	calleeName := "the other side"
	if u, uErr := s.Users.GetUserByID(updated.CalleeID); uErr == nil && u != nil {
		calleeName = u.Username
	}
	if err := s.Notifier.Notify(context.Background(), updated.CallerID, notification.Event{
		Type:     models.NotifTypeCallSignal,
		TitleKey: "call.missed.title",
		BodyKey:  "call.missed.body",
		BodyArgs: []any{calleeName},
		Data:     map[string]any{"event": "missed", "callId": updated.ID},
	}); err != nil {
		utils.GetLogger().Warn("missed call notification failed",
			zap.String("callId", updated.ID), zap.Error(err))
	}
	s.signal(updated.CalleeID, signalEvent{Event: "missed", CallID: updated.ID})
	return nil
}

func (s *DefaultCallService) scheduleTimeout(callID string) {
	if s.Tasks == nil {
		return
	}
	fireAt := time.Now().Add(time.Duration(config.AppConfig.CallRingTimeoutSec) * time.Second)
	task, opts, err := tasks.NewCallTimeoutTask(models.CallTimeoutPayload{CallID: callID}, fireAt)
	if err == nil {
		_, err = s.Tasks.Enqueue(task, opts...)
	}
	if err != nil {
		utils.GetLogger().Warn("failed to schedule ring timeout",
			zap.String("callId", callID), zap.Error(err))
	}
}

func (s *DefaultCallService) signal(userID string, ev signalEvent) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Signal(context.Background(), userID, ev); err != nil {
		utils.GetLogger().Warn("call signal failed",
			zap.String("userId", userID), zap.Error(err))
	}
}

func stateErr(err error) error {
	if err == callRepo.ErrStatusConflict {
		return ErrIllegalCallState
	}
	return err
}
