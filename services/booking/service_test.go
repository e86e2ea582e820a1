package booking

import (
	"context"
	"testing"
	"time"

	"velora/config"
	bookingRepo "velora/database/repository/booking"
	profileRepo "velora/database/repository/profile"
	"velora/models"
	"velora/services/notification"
	"velora/services/user"
	"velora/services/wallet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

// fakeBookingRepo is an in-memory BookingRepository with the same guarded
// compare-and-set semantics as the Mongo implementation.
type fakeBookingRepo struct {
	bookings map[string]*models.Booking

	// afterGet, when set, runs once after a GetByID snapshot is taken, so
	// tests can interleave a competing transition behind a stale read.
	afterGet func()
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[string]*models.Booking)}
}

func (r *fakeBookingRepo) Create(b *models.Booking) error {
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}

func (r *fakeBookingRepo) GetByID(id string) (*models.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	cp := *b
	if r.afterGet != nil {
		hook := r.afterGet
		r.afterGet = nil
		hook()
	}
	return &cp, nil
}

func (r *fakeBookingRepo) UpdateStatus(id string, from []models.BookingStatus, to models.BookingStatus, set bson.M) (*models.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	matched := false
	for _, s := range from {
		if b.Status == s {
			matched = true
			break
		}
	}
	if !matched {
		return nil, bookingRepo.ErrStatusConflict
	}
	b.Status = to
	for k, v := range set {
		switch k {
		case "holdTxId":
			b.HoldTxID = v.(string)
		case "cancelledBy":
			b.CancelledBy = v.(string)
		case "disputeNote":
			b.DisputeNote = v.(string)
		}
	}
	b.UpdatedAt = time.Now()
	cp := *b
	return &cp, nil
}

func (r *fakeBookingRepo) ListByCustomer(customerID string, limit int64) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range r.bookings {
		if b.CustomerID == customerID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) ListByModel(modelID string, limit int64) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range r.bookings {
		if b.ModelID == modelID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) ListByStatus(status models.BookingStatus, limit int64) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range r.bookings {
		if b.Status == status {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) FindOverlapping(modelID string, start, end time.Time) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range r.bookings {
		if b.ModelID != modelID || b.Status.Terminal() {
			continue
		}
		if b.Start.Before(end) && b.End().After(start) {
			out = append(out, *b)
		}
	}
	return out, nil
}

// fakeProfiles serves one profile; everything else panics via the embedded
// nil interface.
type fakeProfiles struct {
	profileRepo.ProfileRepository
	profile *models.ModelProfile
}

func (f *fakeProfiles) GetByUserID(userID string) (*models.ModelProfile, error) {
	if f.profile != nil && f.profile.UserID == userID {
		cp := *f.profile
		return &cp, nil
	}
	return nil, nil
}

type fakeUsers struct {
	user.UserService
	users map[string]*models.User
}

func (f *fakeUsers) GetUserByID(userID string) (*models.User, error) {
	if u, ok := f.users[userID]; ok {
		return u, nil
	}
	return nil, bookingRepo.ErrNotFound
}

// fakeWallet records escrow calls.
type fakeWallet struct {
	wallet.WalletService
	available float64

	holds    []float64
	releases []float64
	captures []struct {
		amount     float64
		commission float64
	}
	holdErr error
}

func (f *fakeWallet) GetWallet(userID string) (*models.Wallet, error) {
	return &models.Wallet{UserID: userID, Balance: f.available, Currency: "eur"}, nil
}

func (f *fakeWallet) HoldFunds(userID, bookingID string, amount float64) (string, error) {
	if f.holdErr != nil {
		return "", f.holdErr
	}
	f.holds = append(f.holds, amount)
	return "tx-hold", nil
}

func (f *fakeWallet) ReleaseFunds(userID, bookingID string, amount float64) error {
	f.releases = append(f.releases, amount)
	return nil
}

func (f *fakeWallet) CaptureToModel(customerID, modelID, bookingID string, amount, commission float64) error {
	f.captures = append(f.captures, struct {
		amount     float64
		commission float64
	}{amount, commission})
	return nil
}

func (f *fakeWallet) RefundToCustomer(customerID, bookingID string, amount float64) error {
	f.releases = append(f.releases, amount)
	return nil
}

type fakeNotifier struct {
	notification.NotificationService
	events []notification.Event
	users  []string
}

func (f *fakeNotifier) Notify(ctx context.Context, userID string, ev notification.Event) error {
	f.users = append(f.users, userID)
	f.events = append(f.events, ev)
	return nil
}

func testProfile() *models.ModelProfile {
	return &models.ModelProfile{
		UserID:      "model-1",
		DisplayName: "Lena",
		Services: []models.ServiceRate{
			{Service: "dinner_date", PricePerHr: 100, MinHours: 2},
		},
	}
}

func newTestService(repo *fakeBookingRepo, w *fakeWallet, n *fakeNotifier) *DefaultBookingService {
	config.AppConfig = config.Config{
		PlatformCommission: 0.15,
		LateCancelFee:      0.20,
		LateCancelWindowH:  24,
		AutoCompleteGraceH: 24,
	}
	return &DefaultBookingService{
		Repo:     repo,
		Profiles: &fakeProfiles{profile: testProfile()},
		Users: &fakeUsers{users: map[string]*models.User{
			"cust-1": {ID: "cust-1", Username: "anna", Role: models.RoleCustomer},
		}},
		Wallet:   w,
		Notifier: n,
	}
}

func validInput() models.BookingInput {
	return models.BookingInput{
		ModelID:     "model-1",
		Service:     "dinner_date",
		Start:       time.Now().Add(48 * time.Hour),
		DurationMin: 120,
	}
}

func TestCreateBooking(t *testing.T) {
	repo := newFakeBookingRepo()
	w := &fakeWallet{available: 500}
	n := &fakeNotifier{}
	svc := newTestService(repo, w, n)

	b, err := svc.CreateBooking("cust-1", validInput())
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, b.Status)
	assert.Equal(t, 200.0, b.Price) // 2h at 100/h
	assert.Empty(t, w.holds, "no hold before confirm")
	require.Len(t, n.users, 1)
	assert.Equal(t, "model-1", n.users[0])
}

func TestCreateBookingRejectsPastStart(t *testing.T) {
	svc := newTestService(newFakeBookingRepo(), &fakeWallet{available: 500}, &fakeNotifier{})

	in := validInput()
	in.Start = time.Now().Add(-time.Hour)
	_, err := svc.CreateBooking("cust-1", in)
	assert.Error(t, err)
}

func TestCreateBookingRejectsUnknownService(t *testing.T) {
	svc := newTestService(newFakeBookingRepo(), &fakeWallet{available: 500}, &fakeNotifier{})

	in := validInput()
	in.Service = "city_tour"
	_, err := svc.CreateBooking("cust-1", in)
	assert.Error(t, err)
}

func TestCreateBookingRejectsBelowMinimumDuration(t *testing.T) {
	svc := newTestService(newFakeBookingRepo(), &fakeWallet{available: 500}, &fakeNotifier{})

	in := validInput()
	in.DurationMin = 60 // service requires 2h
	_, err := svc.CreateBooking("cust-1", in)
	assert.Error(t, err)
}

func TestCreateBookingRejectsOverlap(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := newTestService(repo, &fakeWallet{available: 500}, &fakeNotifier{})

	in := validInput()
	_, err := svc.CreateBooking("cust-1", in)
	require.NoError(t, err)

	in2 := in
	in2.Start = in.Start.Add(30 * time.Minute)
	in2.DurationMin = 120
	_, err = svc.CreateBooking("cust-1", in2)
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestCreateBookingRejectsInsufficientFunds(t *testing.T) {
	svc := newTestService(newFakeBookingRepo(), &fakeWallet{available: 50}, &fakeNotifier{})

	_, err := svc.CreateBooking("cust-1", validInput())
	assert.Error(t, err)
}

func TestConfirmPlacesHold(t *testing.T) {
	repo := newFakeBookingRepo()
	w := &fakeWallet{available: 500}
	n := &fakeNotifier{}
	svc := newTestService(repo, w, n)

	b, err := svc.CreateBooking("cust-1", validInput())
	require.NoError(t, err)

	confirmed, err := svc.Confirm("model-1", b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, confirmed.Status)
	assert.Equal(t, "tx-hold", confirmed.HoldTxID)
	require.Len(t, w.holds, 1)
	assert.Equal(t, 200.0, w.holds[0])
}

func TestConfirmTwiceFails(t *testing.T) {
	repo := newFakeBookingRepo()
	w := &fakeWallet{available: 500}
	svc := newTestService(repo, w, &fakeNotifier{})

	b, _ := svc.CreateBooking("cust-1", validInput())
	_, err := svc.Confirm("model-1", b.ID)
	require.NoError(t, err)

	_, err = svc.Confirm("model-1", b.ID)
	assert.ErrorIs(t, err, ErrIllegalTransition)
	// The second hold must have been rolled back.
	assert.Len(t, w.holds, 2)
	assert.Len(t, w.releases, 1)
}

func TestConfirmByWrongModel(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := newTestService(repo, &fakeWallet{available: 500}, &fakeNotifier{})

	b, _ := svc.CreateBooking("cust-1", validInput())
	_, err := svc.Confirm("model-2", b.ID)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestCancelPendingReleasesNothing(t *testing.T) {
	repo := newFakeBookingRepo()
	w := &fakeWallet{available: 500}
	svc := newTestService(repo, w, &fakeNotifier{})

	b, _ := svc.CreateBooking("cust-1", validInput())
	cancelled, err := svc.Cancel("cust-1", b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, cancelled.Status)
	assert.Equal(t, "cust-1", cancelled.CancelledBy)
	assert.Empty(t, w.releases)
}

func TestCancelConfirmedReleasesHold(t *testing.T) {
	repo := newFakeBookingRepo()
	w := &fakeWallet{available: 500}
	svc := newTestService(repo, w, &fakeNotifier{})

	b, _ := svc.CreateBooking("cust-1", validInput())
	_, err := svc.Confirm("model-1", b.ID)
	require.NoError(t, err)

	// 48h out, outside the 24h late window: full release, no fee.
	_, err = svc.Cancel("cust-1", b.ID)
	require.NoError(t, err)
	require.Len(t, w.releases, 1)
	assert.Equal(t, 200.0, w.releases[0])
	assert.Empty(t, w.captures)
}

func TestCancelRacingConfirmReleasesHold(t *testing.T) {
	repo := newFakeBookingRepo()
	w := &fakeWallet{available: 500}
	svc := newTestService(repo, w, &fakeNotifier{})

	b, _ := svc.CreateBooking("cust-1", validInput())

	// The model confirms after the cancel has read the pending booking but
	// before its status transition runs. The cancel wins the transition and
	// must still release the hold the confirm placed.
	repo.afterGet = func() {
		_, err := svc.Confirm("model-1", b.ID)
		require.NoError(t, err)
	}

	_, err := svc.Cancel("cust-1", b.ID)
	require.NoError(t, err)
	require.Len(t, w.holds, 1)
	require.Len(t, w.releases, 1)
	assert.Equal(t, 200.0, w.releases[0])
	assert.Empty(t, w.captures)
}

func TestLateCancelForfeitsFee(t *testing.T) {
	repo := newFakeBookingRepo()
	w := &fakeWallet{available: 500}
	svc := newTestService(repo, w, &fakeNotifier{})

	in := validInput()
	in.Start = time.Now().Add(2 * time.Hour) // inside the 24h window
	b, _ := svc.CreateBooking("cust-1", in)
	_, err := svc.Confirm("model-1", b.ID)
	require.NoError(t, err)

	_, err = svc.Cancel("cust-1", b.ID)
	require.NoError(t, err)

	require.Len(t, w.captures, 1)
	assert.InDelta(t, 40.0, w.captures[0].amount, 0.001) // 20% of 200
	require.Len(t, w.releases, 1)
	assert.InDelta(t, 160.0, w.releases[0], 0.001)
}

func TestModelLateCancelPaysNoFee(t *testing.T) {
	repo := newFakeBookingRepo()
	w := &fakeWallet{available: 500}
	svc := newTestService(repo, w, &fakeNotifier{})

	in := validInput()
	in.Start = time.Now().Add(2 * time.Hour)
	b, _ := svc.CreateBooking("cust-1", in)
	_, err := svc.Confirm("model-1", b.ID)
	require.NoError(t, err)

	_, err = svc.Cancel("model-1", b.ID)
	require.NoError(t, err)
	assert.Empty(t, w.captures)
	require.Len(t, w.releases, 1)
	assert.Equal(t, 200.0, w.releases[0])
}

func TestFullLifecycleToCompletion(t *testing.T) {
	repo := newFakeBookingRepo()
	w := &fakeWallet{available: 500}
	n := &fakeNotifier{}
	svc := newTestService(repo, w, n)

	b, _ := svc.CreateBooking("cust-1", validInput())
	_, err := svc.Confirm("model-1", b.ID)
	require.NoError(t, err)
	_, err = svc.Start("model-1", b.ID)
	require.NoError(t, err)
	_, err = svc.CompleteRequest("model-1", b.ID)
	require.NoError(t, err)

	done, err := svc.ConfirmCompletion("cust-1", b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCompleted, done.Status)

	require.Len(t, w.captures, 1)
	assert.Equal(t, 200.0, w.captures[0].amount)
	assert.InDelta(t, 30.0, w.captures[0].commission, 0.001) // 15% of 200
}

func TestSkippingStatesFails(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := newTestService(repo, &fakeWallet{available: 500}, &fakeNotifier{})

	b, _ := svc.CreateBooking("cust-1", validInput())

	// pending → in_progress is not allowed.
	_, err := svc.Start("model-1", b.ID)
	assert.ErrorIs(t, err, ErrIllegalTransition)

	// pending → completed is not allowed either.
	_, err = svc.ConfirmCompletion("cust-1", b.ID)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestDisputeFreezesHold(t *testing.T) {
	repo := newFakeBookingRepo()
	w := &fakeWallet{available: 500}
	svc := newTestService(repo, w, &fakeNotifier{})

	b, _ := svc.CreateBooking("cust-1", validInput())
	svc.Confirm("model-1", b.ID)
	svc.Start("model-1", b.ID)
	svc.CompleteRequest("model-1", b.ID)

	disputed, err := svc.Dispute("cust-1", b.ID, "no-show")
	require.NoError(t, err)
	assert.Equal(t, models.BookingDisputed, disputed.Status)
	assert.Equal(t, "no-show", disputed.DisputeNote)
	assert.Empty(t, w.captures, "hold stays frozen")
	assert.Empty(t, w.releases)
}

func TestResolveDisputeRefund(t *testing.T) {
	repo := newFakeBookingRepo()
	w := &fakeWallet{available: 500}
	svc := newTestService(repo, w, &fakeNotifier{})

	b, _ := svc.CreateBooking("cust-1", validInput())
	svc.Confirm("model-1", b.ID)
	svc.Start("model-1", b.ID)
	svc.CompleteRequest("model-1", b.ID)
	svc.Dispute("cust-1", b.ID, "no-show")

	resolved, err := svc.ResolveDispute(b.ID, true, "refund approved")
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, resolved.Status)
	require.Len(t, w.releases, 1)
	assert.Equal(t, 200.0, w.releases[0])
}

func TestAutoComplete(t *testing.T) {
	repo := newFakeBookingRepo()
	w := &fakeWallet{available: 500}
	svc := newTestService(repo, w, &fakeNotifier{})

	b, _ := svc.CreateBooking("cust-1", validInput())
	svc.Confirm("model-1", b.ID)
	svc.Start("model-1", b.ID)
	svc.CompleteRequest("model-1", b.ID)

	require.NoError(t, svc.AutoComplete(b.ID))
	got, _ := repo.GetByID(b.ID)
	assert.Equal(t, models.BookingCompleted, got.Status)
	assert.Len(t, w.captures, 1)

	// Running the sweep again must not double-settle.
	require.NoError(t, svc.AutoComplete(b.ID))
	assert.Len(t, w.captures, 1)
}

func TestSlotCovers(t *testing.T) {
	// Friday 18:00 to 23:00 window.
	slots := []models.AvailabilitySlot{
		{Weekday: time.Friday, Start: 18 * 60, End: 23 * 60},
	}

	// Next Friday 19:00.
	start := nextWeekday(time.Friday).Add(19 * time.Hour)
	assert.True(t, slotCovers(slots, start, start.Add(2*time.Hour)))
	assert.False(t, slotCovers(slots, start, start.Add(5*time.Hour)), "runs past the slot end")

	saturday := start.Add(24 * time.Hour)
	assert.False(t, slotCovers(slots, saturday, saturday.Add(time.Hour)))

	assert.True(t, slotCovers(nil, start, start.Add(2*time.Hour)), "empty availability means open")
}

func nextWeekday(day time.Weekday) time.Time {
	t := dayStart(time.Now()).Add(24 * time.Hour)
	for t.Weekday() != day {
		t = t.Add(24 * time.Hour)
	}
	return t
}
