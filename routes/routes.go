package routes

import (
	"time"

	"velora/handlers"
	"velora/middleware"
	"velora/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers registration, login and password reset.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/register", hb.RegisterHandler)
		api.POST("/register/verify-otp", hb.VerifyRegistrationOTPHandler)
		api.POST("/register/finalize", hb.FinalizeRegistrationHandler)
		api.POST("/login", hb.AuthenticateHandler)
		api.POST("/login/verify-otp", hb.VerifyAuthOTPHandler)
		api.POST("/forgot-password", hb.ForgotPasswordHandler)

		api.POST("/signout", middleware.AuthMiddleware(hb.UserRepo), hb.SignOutHandler)
	}
}

// RegisterAccountRoutes registers authenticated account management.
func RegisterAccountRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/account")
	{
		api.Use(middleware.AuthMiddleware(hb.UserRepo))
		api.GET("/me", hb.MeHandler)
		api.PATCH("/me", hb.UpdateMeHandler)
		api.DELETE("/me", hb.DeleteMeHandler)
		api.PUT("/password", hb.UpdatePasswordHandler)
		api.PUT("/locale", hb.SetLocaleHandler)
		api.PUT("/fcm-token", hb.UpdateFCMTokenHandler)
		api.GET("/devices", hb.GetDevicesHandler)
		api.POST("/devices/signout-others", hb.SignOutOtherDevicesHandler)
	}
}

// RegisterProfileRoutes registers model profiles and discovery.
func RegisterProfileRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/models")
	{
		// Discovery is open to any authenticated account.
		api.Use(middleware.AuthMiddleware(hb.UserRepo))
		api.GET("/search", hb.SearchHandler)
		api.GET("/id/:id", hb.GetProfileHandler)

		// Managing a profile requires the model role.
		mine := api.Group("/me")
		mine.Use(middleware.RequireRole(models.RoleModel))
		mine.POST("", hb.CreateProfileHandler)
		mine.PATCH("", hb.UpdateProfileHandler)
		mine.PUT("/online", hb.SetOnlineHandler)
		mine.POST("/gallery", hb.UploadGalleryHandler)
		mine.DELETE("/gallery", hb.RemoveGalleryHandler)
	}
}

// RegisterBookingRoutes registers the booking lifecycle.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.AuthMiddleware(hb.UserRepo))
		api.POST("", middleware.RequireRole(models.RoleCustomer), hb.CreateBookingHandler)
		api.GET("", hb.ListBookingsHandler)
		api.GET("/:id", hb.GetBookingHandler)

		api.POST("/:id/confirm", middleware.RequireRole(models.RoleModel), hb.ConfirmBookingHandler)
		api.POST("/:id/reject", middleware.RequireRole(models.RoleModel), hb.RejectBookingHandler)
		api.POST("/:id/cancel", hb.CancelBookingHandler)
		api.POST("/:id/start", middleware.RequireRole(models.RoleModel), hb.StartBookingHandler)
		api.POST("/:id/complete", middleware.RequireRole(models.RoleModel), hb.CompleteRequestHandler)
		api.POST("/:id/confirm-completion", middleware.RequireRole(models.RoleCustomer), hb.ConfirmCompletionHandler)
		api.POST("/:id/dispute", middleware.RequireRole(models.RoleCustomer), hb.DisputeBookingHandler)
	}
}

// RegisterWalletRoutes registers balance, top-up and payout endpoints.
func RegisterWalletRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/wallet")
	{
		api.Use(middleware.AuthMiddleware(hb.UserRepo))
		api.GET("", hb.GetWalletHandler)
		api.GET("/transactions", hb.ListTransactionsHandler)
		api.POST("/topup", hb.TopUpHandler)
		api.POST("/topup/confirm", hb.ConfirmTopUpHandler)
		api.POST("/payout", middleware.RequireRole(models.RoleModel), hb.RequestPayoutHandler)
	}
}

// RegisterCallRoutes registers WebRTC signaling endpoints.
func RegisterCallRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/calls")
	{
		api.Use(middleware.AuthMiddleware(hb.UserRepo))
		api.POST("", hb.InitiateCallHandler)
		api.GET("", hb.CallHistoryHandler)
		api.GET("/:id", hb.GetCallHandler)
		api.POST("/:id/accept", hb.AcceptCallHandler)
		api.POST("/:id/decline", hb.DeclineCallHandler)
		api.POST("/:id/peer", hb.RegisterPeerHandler)
		api.POST("/:id/end", hb.EndCallHandler)
	}
}

// RegisterNotificationRoutes registers the feed, the SSE stream and web
// push subscription management.
func RegisterNotificationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/notifications")
	{
		api.Use(middleware.AuthMiddleware(hb.UserRepo))
		api.GET("/stream", hb.StreamHandler)
		api.GET("", hb.ListNotificationsHandler)
		api.PUT("/:id/read", hb.MarkReadHandler)
		api.PUT("/read-all", hb.MarkAllReadHandler)
		api.POST("/push-subscriptions", hb.SubscribePushHandler)
		api.DELETE("/push-subscriptions", hb.UnsubscribePushHandler)
	}
}

// RegisterSubscriptionRoutes registers premium placement for models.
func RegisterSubscriptionRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/subscriptions")
	{
		api.Use(middleware.AuthMiddleware(hb.UserRepo))
		api.GET("/plans", hb.PlansHandler)
		api.GET("/me", middleware.RequireRole(models.RoleModel), hb.SubscriptionInfoHandler)
		api.POST("/purchase", middleware.RequireRole(models.RoleModel), hb.PurchasePlanHandler)
	}
}

// RegisterAdminRoutes registers the operations surface.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/admin")
	{
		api.Use(middleware.AdminAuthMiddleware())
		api.GET("/users", hb.AdminListUsersHandler)
		api.PUT("/users/:id/ban", hb.AdminSetBannedHandler)
		api.PUT("/models/:id/verify", hb.AdminVerifyProfileHandler)
		api.GET("/disputes", hb.AdminListDisputesHandler)
		api.POST("/disputes/:id/resolve", hb.AdminResolveDisputeHandler)
		api.GET("/payouts", hb.AdminListPayoutsHandler)
		api.POST("/payouts/:id/paid", hb.AdminMarkPayoutPaidHandler)
	}
}

// RegisterHealthRoute registers the health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and global
// middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Accept-Language", "X-Device-ID", "X-Device-Name"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware())
	r.Use(middleware.LocaleMiddleware())

	RegisterAuthRoutes(r, hb)
	RegisterAccountRoutes(r, hb)
	RegisterProfileRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterWalletRoutes(r, hb)
	RegisterCallRoutes(r, hb)
	RegisterNotificationRoutes(r, hb)
	RegisterSubscriptionRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
	RegisterHealthRoute(r)
}
