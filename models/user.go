// File: velora/models/user.go
package models

import "time"

// Role discriminates the two account types on the platform.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleModel    Role = "model"
)

// User is the account record shared by customers and models. Model-specific
// data (rates, gallery, subscription) lives in ModelProfile.
type User struct {
	ID           string    `bson:"id" json:"id"`
	Role         Role      `bson:"role" json:"role"`
	Username     string    `bson:"username" json:"username"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	PhoneNumber  string    `bson:"phoneNumber" json:"phoneNumber"`
	Locale       string    `bson:"locale" json:"locale"`
	AvatarURL    string    `bson:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`
	Devices      []Device  `bson:"devices" json:"devices"`
	TokenHash    string    `bson:"tokenHash,omitempty" json:"-"`
	FCMToken     string    `bson:"fcmToken,omitempty" json:"-"`
	Banned       bool      `bson:"banned" json:"banned"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

type UserBasicRegistrationData struct {
	Username    string `json:"username" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	Role        Role   `json:"role" binding:"required"`
	Locale      string `json:"locale"`
}

type UserRegistrationRequest struct {
	Step      string                     `json:"step"`
	SessionID string                     `json:"sessionID,omitempty"`
	OTP       string                     `json:"otp,omitempty"`
	BasicData *UserBasicRegistrationData `json:"basicData,omitempty"`
}

type UserRegistrationSession struct {
	TempID        string                     `json:"tempId"`
	BasicData     *UserBasicRegistrationData `json:"basicData,omitempty"`
	OTPStatus     string                     `json:"otpStatus"`
	CreatedAt     time.Time                  `json:"createdAt"`
	LastUpdatedAt time.Time                  `json:"lastUpdatedAt"`
	Devices       []Device                   `json:"devices,omitempty"`
}
