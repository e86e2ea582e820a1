package handlers

import (
	userRepoPkg "velora/database/repository/user"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups every endpoint handler for route registration.
type HandlerBundle struct {
	UserRepo userRepoPkg.UserRepository

	// Auth
	RegisterHandler              gin.HandlerFunc
	VerifyRegistrationOTPHandler gin.HandlerFunc
	FinalizeRegistrationHandler  gin.HandlerFunc
	AuthenticateHandler          gin.HandlerFunc
	VerifyAuthOTPHandler         gin.HandlerFunc
	SignOutHandler               gin.HandlerFunc
	ForgotPasswordHandler        gin.HandlerFunc

	// Account
	MeHandler                  gin.HandlerFunc
	UpdateMeHandler            gin.HandlerFunc
	DeleteMeHandler            gin.HandlerFunc
	UpdatePasswordHandler      gin.HandlerFunc
	SetLocaleHandler           gin.HandlerFunc
	UpdateFCMTokenHandler      gin.HandlerFunc
	GetDevicesHandler          gin.HandlerFunc
	SignOutOtherDevicesHandler gin.HandlerFunc

	// Profiles and discovery
	CreateProfileHandler gin.HandlerFunc
	UpdateProfileHandler gin.HandlerFunc
	GetProfileHandler    gin.HandlerFunc
	SearchHandler        gin.HandlerFunc
	SetOnlineHandler     gin.HandlerFunc
	UploadGalleryHandler gin.HandlerFunc
	RemoveGalleryHandler gin.HandlerFunc

	// Bookings
	CreateBookingHandler     gin.HandlerFunc
	GetBookingHandler        gin.HandlerFunc
	ListBookingsHandler      gin.HandlerFunc
	ConfirmBookingHandler    gin.HandlerFunc
	RejectBookingHandler     gin.HandlerFunc
	CancelBookingHandler     gin.HandlerFunc
	StartBookingHandler      gin.HandlerFunc
	CompleteRequestHandler   gin.HandlerFunc
	ConfirmCompletionHandler gin.HandlerFunc
	DisputeBookingHandler    gin.HandlerFunc

	// Wallet
	GetWalletHandler        gin.HandlerFunc
	ListTransactionsHandler gin.HandlerFunc
	TopUpHandler            gin.HandlerFunc
	ConfirmTopUpHandler     gin.HandlerFunc
	RequestPayoutHandler    gin.HandlerFunc

	// Calls
	InitiateCallHandler gin.HandlerFunc
	AcceptCallHandler   gin.HandlerFunc
	DeclineCallHandler  gin.HandlerFunc
	RegisterPeerHandler gin.HandlerFunc
	EndCallHandler      gin.HandlerFunc
	GetCallHandler      gin.HandlerFunc
	CallHistoryHandler  gin.HandlerFunc

	// Notifications
	StreamHandler           gin.HandlerFunc
	ListNotificationsHandler gin.HandlerFunc
	MarkReadHandler         gin.HandlerFunc
	MarkAllReadHandler      gin.HandlerFunc
	SubscribePushHandler    gin.HandlerFunc
	UnsubscribePushHandler  gin.HandlerFunc

	// Subscriptions
	PlansHandler            gin.HandlerFunc
	SubscriptionInfoHandler gin.HandlerFunc
	PurchasePlanHandler     gin.HandlerFunc

	// Admin
	AdminListUsersHandler      gin.HandlerFunc
	AdminSetBannedHandler      gin.HandlerFunc
	AdminVerifyProfileHandler  gin.HandlerFunc
	AdminListDisputesHandler   gin.HandlerFunc
	AdminResolveDisputeHandler gin.HandlerFunc
	AdminListPayoutsHandler    gin.HandlerFunc
	AdminMarkPayoutPaidHandler gin.HandlerFunc
}
