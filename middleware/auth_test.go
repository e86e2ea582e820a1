package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	userRepo "velora/database/repository/user"
	"velora/models"
	"velora/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type fakeUserRepo struct {
	userRepo.UserRepository
	users map[string]*models.User
}

func (f *fakeUserRepo) GetByIDWithProjection(id string, projection bson.M) (*models.User, error) {
	usr, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *usr
	return &cp, nil
}

func authRouter(repo userRepo.UserRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(repo), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userID": c.GetString("userID")})
	})
	return r
}

func doAuthRequest(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	token, err := utils.GenerateToken("u1", "u1@example.com", time.Hour)
	require.NoError(t, err)

	repo := &fakeUserRepo{users: map[string]*models.User{
		"u1": {ID: "u1", Role: models.RoleCustomer, TokenHash: utils.HashToken(token)},
	}}
	w := doAuthRequest(authRouter(repo), token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "u1")
}

func TestAuthMiddlewareRejectsRevokedToken(t *testing.T) {
	token, err := utils.GenerateToken("u1", "u1@example.com", time.Hour)
	require.NoError(t, err)

	repo := &fakeUserRepo{users: map[string]*models.User{
		"u1": {ID: "u1", Role: models.RoleCustomer, TokenHash: utils.HashToken(token)},
	}}
	r := authRouter(repo)
	require.Equal(t, http.StatusOK, doAuthRequest(r, token).Code)

	// Sign-out clears the stored hash; the same token must stop working.
	repo.users["u1"].TokenHash = ""
	assert.Equal(t, http.StatusUnauthorized, doAuthRequest(r, token).Code)
}

func TestAuthMiddlewareRejectsBannedUser(t *testing.T) {
	token, err := utils.GenerateToken("u1", "u1@example.com", time.Hour)
	require.NoError(t, err)

	repo := &fakeUserRepo{users: map[string]*models.User{
		"u1": {ID: "u1", Role: models.RoleCustomer, TokenHash: utils.HashToken(token), Banned: true},
	}}
	w := doAuthRequest(authRouter(repo), token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthMiddlewareMatchesDeviceToken(t *testing.T) {
	token, err := utils.GenerateToken("u1", "u1@example.com", time.Hour)
	require.NoError(t, err)

	repo := &fakeUserRepo{users: map[string]*models.User{
		"u1": {ID: "u1", Role: models.RoleModel, Devices: []models.Device{
			{DeviceID: "d1", TokenHash: utils.HashToken(token)},
		}},
	}}
	w := doAuthRequest(authRouter(repo), token)
	assert.Equal(t, http.StatusOK, w.Code)
}
