package call

import (
	"context"
	"testing"
	"time"

	"velora/config"
	callRepo "velora/database/repository/call"
	"velora/models"
	"velora/services/notification"
	"velora/services/user"
	"velora/services/wallet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type fakeCallRepo struct {
	sessions map[string]*models.CallSession
}

func newFakeCallRepo() *fakeCallRepo {
	return &fakeCallRepo{sessions: make(map[string]*models.CallSession)}
}

func (r *fakeCallRepo) Create(sess *models.CallSession) error {
	cp := *sess
	r.sessions[sess.ID] = &cp
	return nil
}

func (r *fakeCallRepo) GetByID(id string) (*models.CallSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, callRepo.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeCallRepo) UpdateStatus(id string, from []models.CallStatus, to models.CallStatus, set bson.M) (*models.CallSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, callRepo.ErrNotFound
	}
	matched := false
	for _, st := range from {
		if s.Status == st {
			matched = true
			break
		}
	}
	if !matched {
		return nil, callRepo.ErrStatusConflict
	}
	s.Status = to
	for k, v := range set {
		switch k {
		case "calleePeerId":
			s.CalleePeerID = v.(string)
		case "acceptedAt":
			t := v.(time.Time)
			s.AcceptedAt = &t
		case "endedAt":
			t := v.(time.Time)
			s.EndedAt = &t
		case "charged":
			s.Charged = v.(float64)
		}
	}
	cp := *s
	return &cp, nil
}

func (r *fakeCallRepo) RegisterPeer(id, userID, peerID string) (*models.CallSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, callRepo.ErrNotFound
	}
	if userID == s.CallerID {
		s.CallerPeerID = peerID
	} else {
		s.CalleePeerID = peerID
	}
	cp := *s
	return &cp, nil
}

func (r *fakeCallRepo) ListByUser(userID string, limit int64) ([]models.CallSession, error) {
	var out []models.CallSession
	for _, s := range r.sessions {
		if s.CallerID == userID || s.CalleeID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

type fakeCallUsers struct {
	user.UserService
	users map[string]*models.User
}

func (f *fakeCallUsers) GetUserByID(userID string) (*models.User, error) {
	if u, ok := f.users[userID]; ok {
		return u, nil
	}
	return nil, callRepo.ErrNotFound
}

type fakeCallWallet struct {
	wallet.WalletService
	available float64
	charges   []struct {
		amount     float64
		commission float64
	}
}

func (f *fakeCallWallet) GetWallet(userID string) (*models.Wallet, error) {
	return &models.Wallet{UserID: userID, Balance: f.available, Currency: "eur"}, nil
}

func (f *fakeCallWallet) ChargeCall(customerID, modelID, callID string, amount, commission float64) error {
	f.charges = append(f.charges, struct {
		amount     float64
		commission float64
	}{amount, commission})
	return nil
}

type fakeCallNotifier struct {
	notification.NotificationService
	notifies []notification.Event
	signals  []any
	signalTo []string
}

func (f *fakeCallNotifier) Notify(ctx context.Context, userID string, ev notification.Event) error {
	f.notifies = append(f.notifies, ev)
	return nil
}

func (f *fakeCallNotifier) Signal(ctx context.Context, userID string, payload any) error {
	f.signalTo = append(f.signalTo, userID)
	f.signals = append(f.signals, payload)
	return nil
}

func newTestCallService(repo *fakeCallRepo, w *fakeCallWallet, n *fakeCallNotifier) *DefaultCallService {
	config.AppConfig = config.Config{
		CallRatePerMin:     1.5,
		PlatformCommission: 0.15,
		CallRingTimeoutSec: 45,
	}
	return &DefaultCallService{
		Repo: repo,
		Users: &fakeCallUsers{users: map[string]*models.User{
			"cust-1":  {ID: "cust-1", Username: "anna", Role: models.RoleCustomer},
			"model-1": {ID: "model-1", Username: "lena", Role: models.RoleModel},
			"banned":  {ID: "banned", Username: "gone", Role: models.RoleModel, Banned: true},
		}},
		Wallet:   w,
		Notifier: n,
	}
}

func TestInitiateCustomerToModelIsBillable(t *testing.T) {
	repo := newFakeCallRepo()
	n := &fakeCallNotifier{}
	svc := newTestCallService(repo, &fakeCallWallet{available: 20}, n)

	sess, err := svc.Initiate("cust-1", models.CallInitiateInput{CalleeID: "model-1", PeerID: "peer-a", Video: true})
	require.NoError(t, err)
	assert.Equal(t, models.CallRinging, sess.Status)
	assert.True(t, sess.Billable)
	assert.Equal(t, 1.5, sess.RatePerMin)
	assert.Equal(t, "peer-a", sess.CallerPeerID)

	require.Len(t, n.notifies, 1)
	assert.Equal(t, "call.incoming.title", n.notifies[0].TitleKey)
	assert.Equal(t, "incoming", n.notifies[0].Data["event"])
}

func TestInitiateModelToCustomerIsFree(t *testing.T) {
	svc := newTestCallService(newFakeCallRepo(), &fakeCallWallet{}, &fakeCallNotifier{})

	sess, err := svc.Initiate("model-1", models.CallInitiateInput{CalleeID: "cust-1", PeerID: "peer-b"})
	require.NoError(t, err)
	assert.False(t, sess.Billable)
	assert.Zero(t, sess.RatePerMin)
}

func TestInitiateRejections(t *testing.T) {
	svc := newTestCallService(newFakeCallRepo(), &fakeCallWallet{available: 0.5}, &fakeCallNotifier{})

	_, err := svc.Initiate("cust-1", models.CallInitiateInput{CalleeID: "cust-1", PeerID: "p"})
	assert.Error(t, err, "self call")

	_, err = svc.Initiate("cust-1", models.CallInitiateInput{CalleeID: "banned", PeerID: "p"})
	assert.Error(t, err, "banned callee")

	// Wallet holds less than one minute at the rate.
	_, err = svc.Initiate("cust-1", models.CallInitiateInput{CalleeID: "model-1", PeerID: "p"})
	assert.Error(t, err, "insufficient funds")
}

func TestAcceptHandsPeerToCaller(t *testing.T) {
	repo := newFakeCallRepo()
	n := &fakeCallNotifier{}
	svc := newTestCallService(repo, &fakeCallWallet{available: 20}, n)

	sess, _ := svc.Initiate("cust-1", models.CallInitiateInput{CalleeID: "model-1", PeerID: "peer-a"})

	accepted, err := svc.Accept("model-1", sess.ID, "peer-b")
	require.NoError(t, err)
	assert.Equal(t, models.CallAccepted, accepted.Status)
	assert.Equal(t, "peer-b", accepted.CalleePeerID)
	require.NotNil(t, accepted.AcceptedAt)

	require.Len(t, n.signals, 1)
	ev := n.signals[0].(signalEvent)
	assert.Equal(t, "accepted", ev.Event)
	assert.Equal(t, "peer-b", ev.PeerID)
	assert.Equal(t, "cust-1", n.signalTo[0])
}

func TestAcceptByCallerFails(t *testing.T) {
	repo := newFakeCallRepo()
	svc := newTestCallService(repo, &fakeCallWallet{available: 20}, &fakeCallNotifier{})

	sess, _ := svc.Initiate("cust-1", models.CallInitiateInput{CalleeID: "model-1", PeerID: "peer-a"})
	_, err := svc.Accept("cust-1", sess.ID, "peer-x")
	assert.ErrorIs(t, err, ErrNotCallParticipant)
}

func TestDeclineEndedCallFails(t *testing.T) {
	repo := newFakeCallRepo()
	svc := newTestCallService(repo, &fakeCallWallet{available: 20}, &fakeCallNotifier{})

	sess, _ := svc.Initiate("cust-1", models.CallInitiateInput{CalleeID: "model-1", PeerID: "peer-a"})
	_, err := svc.End("cust-1", sess.ID)
	require.NoError(t, err)

	_, err = svc.Decline("model-1", sess.ID)
	assert.ErrorIs(t, err, ErrIllegalCallState)
}

func TestEndBillsPerStartedMinute(t *testing.T) {
	repo := newFakeCallRepo()
	w := &fakeCallWallet{available: 20}
	svc := newTestCallService(repo, w, &fakeCallNotifier{})

	sess, _ := svc.Initiate("cust-1", models.CallInitiateInput{CalleeID: "model-1", PeerID: "peer-a"})
	_, err := svc.Accept("model-1", sess.ID, "peer-b")
	require.NoError(t, err)

	// Backdate the accept so the talk time lands at 90 seconds.
	accepted := time.Now().Add(-90 * time.Second)
	repo.sessions[sess.ID].AcceptedAt = &accepted

	ended, err := svc.End("model-1", sess.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CallEnded, ended.Status)

	require.Len(t, w.charges, 1)
	assert.InDelta(t, 3.0, w.charges[0].amount, 0.001) // 2 started minutes at 1.50
	assert.InDelta(t, 0.45, w.charges[0].commission, 0.001)
	assert.InDelta(t, 3.0, ended.Charged, 0.001)
}

func TestEndUnansweredRingDoesNotBill(t *testing.T) {
	repo := newFakeCallRepo()
	w := &fakeCallWallet{available: 20}
	svc := newTestCallService(repo, w, &fakeCallNotifier{})

	sess, _ := svc.Initiate("cust-1", models.CallInitiateInput{CalleeID: "model-1", PeerID: "peer-a"})
	ended, err := svc.End("cust-1", sess.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CallEnded, ended.Status)
	assert.Empty(t, w.charges)
}

func TestRegisterPeerForwardsToOtherSide(t *testing.T) {
	repo := newFakeCallRepo()
	n := &fakeCallNotifier{}
	svc := newTestCallService(repo, &fakeCallWallet{available: 20}, n)

	sess, _ := svc.Initiate("cust-1", models.CallInitiateInput{CalleeID: "model-1", PeerID: "peer-a"})
	svc.Accept("model-1", sess.ID, "peer-b")

	updated, err := svc.RegisterPeer("cust-1", sess.ID, "peer-a2")
	require.NoError(t, err)
	assert.Equal(t, "peer-a2", updated.CallerPeerID)

	last := n.signals[len(n.signals)-1].(signalEvent)
	assert.Equal(t, "peer", last.Event)
	assert.Equal(t, "peer-a2", last.PeerID)
	assert.Equal(t, "model-1", n.signalTo[len(n.signalTo)-1])
}

func TestSweepTimeout(t *testing.T) {
	repo := newFakeCallRepo()
	n := &fakeCallNotifier{}
	svc := newTestCallService(repo, &fakeCallWallet{available: 20}, n)

	sess, _ := svc.Initiate("cust-1", models.CallInitiateInput{CalleeID: "model-1", PeerID: "peer-a"})

	require.NoError(t, svc.SweepTimeout(sess.ID))
	got, _ := repo.GetByID(sess.ID)
	assert.Equal(t, models.CallMissed, got.Status)

	// The caller gets a persisted missed-call notification.
	require.Len(t, n.notifies, 2)
	assert.Equal(t, "call.missed.title", n.notifies[1].TitleKey)

	// A session already answered is left alone.
	sess2, _ := svc.Initiate("cust-1", models.CallInitiateInput{CalleeID: "model-1", PeerID: "peer-a"})
	svc.Accept("model-1", sess2.ID, "peer-b")
	require.NoError(t, svc.SweepTimeout(sess2.ID))
	got2, _ := repo.GetByID(sess2.ID)
	assert.Equal(t, models.CallAccepted, got2.Status)
}
