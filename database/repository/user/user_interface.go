package userRepo

import (
	"velora/models"

	"go.mongodb.org/mongo-driver/bson"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	Create(user *models.User) error
	Update(user *models.User) error
	UpdateSetDocument(id string, updateDoc bson.M) error
	Delete(id string) error

	GetByIDWithProjection(id string, projection bson.M) (*models.User, error)
	GetByEmailWithProjection(email string, projection bson.M) (*models.User, error)
	GetAllWithProjection(projection bson.M) ([]models.User, error)
	GetByTokenHash(tokenHash string) (*models.User, error)

	IsUserAvailable(basic models.UserBasicRegistrationData) (bool, error)
}
