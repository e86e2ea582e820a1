package profile

import (
	"testing"
	"time"

	profileRepo "velora/database/repository/profile"
	"velora/models"
	"velora/services/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type fakeProfileRepo struct {
	profileRepo.ProfileRepository
	profiles map[string]*models.ModelProfile
	updates  []bson.M
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*models.ModelProfile)}
}

func (r *fakeProfileRepo) Create(p *models.ModelProfile) error {
	cp := *p
	r.profiles[p.UserID] = &cp
	return nil
}

func (r *fakeProfileRepo) GetByUserID(userID string) (*models.ModelProfile, error) {
	if p, ok := r.profiles[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeProfileRepo) UpdateSetDocument(userID string, updateDoc bson.M) error {
	r.updates = append(r.updates, updateDoc)
	return nil
}

type fakeUsers struct {
	user.UserService
	users map[string]*models.User
}

func (f *fakeUsers) GetUserByID(userID string) (*models.User, error) {
	if u, ok := f.users[userID]; ok {
		return u, nil
	}
	return nil, nil
}

func newTestProfileService(repo *fakeProfileRepo) *DefaultProfileService {
	return &DefaultProfileService{
		Repo: repo,
		Users: &fakeUsers{users: map[string]*models.User{
			"model-1": {ID: "model-1", Role: models.RoleModel},
			"cust-1":  {ID: "cust-1", Role: models.RoleCustomer},
		}},
	}
}

func validProfile() *models.ModelProfile {
	return &models.ModelProfile{
		DisplayName: "Lena",
		City:        "Berlin",
		Services: []models.ServiceRate{
			{Service: "dinner_date", PricePerHr: 100, MinHours: 2},
		},
		Availability: []models.AvailabilitySlot{
			{Weekday: time.Friday, Start: 18 * 60, End: 23 * 60},
		},
	}
}

func TestCreateProfile(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := newTestProfileService(repo)

	p, err := svc.CreateProfile("model-1", validProfile())
	require.NoError(t, err)
	assert.Equal(t, "model-1", p.UserID)
	assert.False(t, p.Verified, "verification is admin-only")
	assert.Nil(t, p.PremiumUntil)
	assert.Empty(t, p.Gallery)
}

func TestCreateProfileRequiresModelRole(t *testing.T) {
	svc := newTestProfileService(newFakeProfileRepo())

	_, err := svc.CreateProfile("cust-1", validProfile())
	assert.Error(t, err)
}

func TestCreateProfileRejectsDuplicate(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := newTestProfileService(repo)

	_, err := svc.CreateProfile("model-1", validProfile())
	require.NoError(t, err)
	_, err = svc.CreateProfile("model-1", validProfile())
	assert.Error(t, err)
}

func TestCreateProfileValidatesRates(t *testing.T) {
	svc := newTestProfileService(newFakeProfileRepo())

	p := validProfile()
	p.Services[0].PricePerHr = 0
	_, err := svc.CreateProfile("model-1", p)
	assert.Error(t, err)

	p = validProfile()
	p.Services[0].MinHours = 0
	_, err = svc.CreateProfile("model-1", p)
	assert.Error(t, err)

	p = validProfile()
	p.DisplayName = ""
	_, err = svc.CreateProfile("model-1", p)
	assert.Error(t, err)
}

func TestCreateProfileValidatesSlots(t *testing.T) {
	svc := newTestProfileService(newFakeProfileRepo())

	p := validProfile()
	p.Availability[0].End = 25 * 60
	_, err := svc.CreateProfile("model-1", p)
	assert.Error(t, err)

	p = validProfile()
	p.Availability[0].Start = p.Availability[0].End
	_, err = svc.CreateProfile("model-1", p)
	assert.Error(t, err)
}

func TestUpdateProfileWhitelist(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := newTestProfileService(repo)
	_, err := svc.CreateProfile("model-1", validProfile())
	require.NoError(t, err)

	_, err = svc.UpdateProfile("model-1", map[string]interface{}{
		"bio":      "new bio",
		"verified": true,
		"rating":   5.0,
	})
	require.NoError(t, err)

	require.Len(t, repo.updates, 1)
	doc := repo.updates[0]
	assert.Equal(t, "new bio", doc["bio"])
	assert.NotContains(t, doc, "verified", "verified must not be client-writable")
	assert.NotContains(t, doc, "rating")
}

func TestUpdateProfileNoWritableFields(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := newTestProfileService(repo)
	_, err := svc.CreateProfile("model-1", validProfile())
	require.NoError(t, err)

	_, err = svc.UpdateProfile("model-1", map[string]interface{}{"verified": true})
	require.NoError(t, err)
	assert.Empty(t, repo.updates, "nothing to persist")
}
