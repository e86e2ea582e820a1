// File: velora/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"velora/config"
	"velora/cron"
	"velora/database"
	bookingRepoPkg "velora/database/repository/booking"
	callRepoPkg "velora/database/repository/call"
	notificationRepoPkg "velora/database/repository/notification"
	profileRepoPkg "velora/database/repository/profile"
	userRepoPkg "velora/database/repository/user"
	walletRepoPkg "velora/database/repository/wallet"
	"velora/handlers"
	"velora/routes"
	"velora/services/booking"
	"velora/services/call"
	"velora/services/notification"
	"velora/services/profile"
	"velora/services/storage"
	"velora/services/subscription"
	"velora/services/tasks"
	"velora/services/user"
	"velora/services/wallet"
	"velora/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()
	if _, err := os.Stat(config.FirebaseServiceAccountKeyPath); err == nil {
		utils.FirebaseInit()
	} else {
		logger.Sugar().Warn("main: firebase credentials not found, FCM disabled")
	}

	storageService, err := storage.NewStorageService()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize storage service: %v", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	stripe.Key = config.AppConfig.StripeKey

	// Repositories.
	userRepo := userRepoPkg.NewMongoUserRepo()
	profileRepo := profileRepoPkg.NewMongoProfileRepo()
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	walletRepo := walletRepoPkg.NewMongoWalletRepo()
	callRepo := callRepoPkg.NewMongoCallRepo()
	notificationRepo := notificationRepoPkg.NewMongoNotificationRepo()

	// Services.
	userService := &user.DefaultUserService{Repo: userRepo}

	hub := notification.NewHub()
	bridgeCtx, stopBridge := context.WithCancel(context.Background())
	defer stopBridge()
	notifyRedis := utils.GetCacheClient()
	go hub.RunBridge(bridgeCtx, notifyRedis)

	notificationService := &notification.DefaultNotificationService{
		User:  userService,
		Repo:  notificationRepo,
		Hub:   hub,
		Redis: notifyRedis,
	}

	walletService := &wallet.DefaultWalletService{Repo: walletRepo}

	profileService := &profile.DefaultProfileService{
		Repo:    profileRepo,
		Users:   userService,
		Storage: storageService,
	}

	taskClient := tasks.NewClient()
	defer taskClient.Close()

	bookingService := &booking.DefaultBookingService{
		Repo:     bookingRepo,
		Profiles: profileRepo,
		Users:    userService,
		Wallet:   walletService,
		Notifier: notificationService,
		Tasks:    taskClient,
	}

	callService := &call.DefaultCallService{
		Repo:     callRepo,
		Users:    userService,
		Wallet:   walletService,
		Notifier: notificationService,
		Tasks:    taskClient,
	}

	subscriptionService := &subscription.DefaultSubscriptionService{
		Profiles: profileRepo,
		Wallet:   walletService,
		Notifier: notificationService,
		Tasks:    taskClient,
	}

	// Background worker for reminders, sweeps and expiries.
	cron.InitWorker(cron.Deps{
		Bookings:      bookingService,
		Calls:         callService,
		Subscriptions: subscriptionService,
		Notifier:      notificationService,
	})

	utils.StartHealthMonitor([]*redis.Client{
		utils.GetCacheClient(),
		utils.GetAuthCacheClient(),
		utils.GetOTPCacheClient(),
	}, database.MongoClient)

	// Handlers.
	authHandler := handlers.NewAuthHandler(userService)
	userHandler := handlers.NewUserHandler(userService)
	profileHandler := handlers.NewProfileHandler(profileService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	walletHandler := handlers.NewWalletHandler(walletService)
	callHandler := handlers.NewCallHandler(callService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService)
	adminHandler := handlers.NewAdminHandler(userService, profileService, bookingService, walletService, bookingRepo)

	handlerBundle := &handlers.HandlerBundle{
		UserRepo: userRepo,

		RegisterHandler:              authHandler.RegisterHandler,
		VerifyRegistrationOTPHandler: authHandler.VerifyRegistrationOTPHandler,
		FinalizeRegistrationHandler:  authHandler.FinalizeRegistrationHandler,
		AuthenticateHandler:          authHandler.AuthenticateHandler,
		VerifyAuthOTPHandler:         authHandler.VerifyAuthOTPHandler,
		SignOutHandler:               authHandler.SignOutHandler,
		ForgotPasswordHandler:        authHandler.ForgotPasswordHandler,

		MeHandler:                  userHandler.MeHandler,
		UpdateMeHandler:            userHandler.UpdateMeHandler,
		DeleteMeHandler:            userHandler.DeleteMeHandler,
		UpdatePasswordHandler:      userHandler.UpdatePasswordHandler,
		SetLocaleHandler:           userHandler.SetLocaleHandler,
		UpdateFCMTokenHandler:      userHandler.UpdateFCMTokenHandler,
		GetDevicesHandler:          userHandler.GetDevicesHandler,
		SignOutOtherDevicesHandler: userHandler.SignOutOtherDevicesHandler,

		CreateProfileHandler: profileHandler.CreateProfileHandler,
		UpdateProfileHandler: profileHandler.UpdateProfileHandler,
		GetProfileHandler:    profileHandler.GetProfileHandler,
		SearchHandler:        profileHandler.SearchHandler,
		SetOnlineHandler:     profileHandler.SetOnlineHandler,
		UploadGalleryHandler: profileHandler.UploadGalleryHandler,
		RemoveGalleryHandler: profileHandler.RemoveGalleryHandler,

		CreateBookingHandler:     bookingHandler.CreateHandler,
		GetBookingHandler:        bookingHandler.GetHandler,
		ListBookingsHandler:      bookingHandler.ListHandler,
		ConfirmBookingHandler:    bookingHandler.ConfirmHandler,
		RejectBookingHandler:     bookingHandler.RejectHandler,
		CancelBookingHandler:     bookingHandler.CancelHandler,
		StartBookingHandler:      bookingHandler.StartHandler,
		CompleteRequestHandler:   bookingHandler.CompleteRequestHandler,
		ConfirmCompletionHandler: bookingHandler.ConfirmCompletionHandler,
		DisputeBookingHandler:    bookingHandler.DisputeHandler,

		GetWalletHandler:        walletHandler.GetWalletHandler,
		ListTransactionsHandler: walletHandler.ListTransactionsHandler,
		TopUpHandler:            walletHandler.TopUpHandler,
		ConfirmTopUpHandler:     walletHandler.ConfirmTopUpHandler,
		RequestPayoutHandler:    walletHandler.RequestPayoutHandler,

		InitiateCallHandler: callHandler.InitiateHandler,
		AcceptCallHandler:   callHandler.AcceptHandler,
		DeclineCallHandler:  callHandler.DeclineHandler,
		RegisterPeerHandler: callHandler.RegisterPeerHandler,
		EndCallHandler:      callHandler.EndHandler,
		GetCallHandler:      callHandler.GetHandler,
		CallHistoryHandler:  callHandler.HistoryHandler,

		StreamHandler:            notificationHandler.StreamHandler,
		ListNotificationsHandler: notificationHandler.ListHandler,
		MarkReadHandler:          notificationHandler.MarkReadHandler,
		MarkAllReadHandler:       notificationHandler.MarkAllReadHandler,
		SubscribePushHandler:     notificationHandler.SubscribePushHandler,
		UnsubscribePushHandler:   notificationHandler.UnsubscribePushHandler,

		PlansHandler:            subscriptionHandler.PlansHandler,
		SubscriptionInfoHandler: subscriptionHandler.InfoHandler,
		PurchasePlanHandler:     subscriptionHandler.PurchaseHandler,

		AdminListUsersHandler:      adminHandler.ListUsersHandler,
		AdminSetBannedHandler:      adminHandler.SetBannedHandler,
		AdminVerifyProfileHandler:  adminHandler.VerifyProfileHandler,
		AdminListDisputesHandler:   adminHandler.ListDisputesHandler,
		AdminResolveDisputeHandler: adminHandler.ResolveDisputeHandler,
		AdminListPayoutsHandler:    adminHandler.ListPayoutsHandler,
		AdminMarkPayoutPaidHandler: adminHandler.MarkPayoutPaidHandler,
	}

	routes.RegisterRoutes(router, handlerBundle)

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
