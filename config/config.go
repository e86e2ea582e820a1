package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	AdminAPIKey       string `mapstructure:"ADMIN_API_KEY"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr        string `mapstructure:"REDIS_ADDR"`
	RedisPassword    string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB     int    `mapstructure:"REDIS_CACHE_DB"`
	RedisAuthDB      int    `mapstructure:"REDIS_AUTH_DB"`
	RedisOTPDB       int    `mapstructure:"REDIS_OTP_DB"`
	RedisTaskQueueDB int    `mapstructure:"REDIS_TASK_QUEUE_DB"`

	// Payments.
	StripeKey string `mapstructure:"STRIPE_KEY"`
	Currency  string `mapstructure:"CURRENCY"`

	// Money rules (fractions, e.g. 0.15 = 15%).
	PlatformCommission float64 `mapstructure:"PLATFORM_COMMISSION"`
	LateCancelFee      float64 `mapstructure:"LATE_CANCEL_FEE"`
	LateCancelWindowH  int     `mapstructure:"LATE_CANCEL_WINDOW_HOURS"`

	// Booking lifecycle timers.
	AutoCompleteGraceH int `mapstructure:"AUTO_COMPLETE_GRACE_HOURS"`
	BookingReminderMin int `mapstructure:"BOOKING_REMINDER_MINUTES"`

	// Call signaling.
	CallRingTimeoutSec int     `mapstructure:"CALL_RING_TIMEOUT_SECONDS"`
	CallRatePerMin     float64 `mapstructure:"CALL_RATE_PER_MIN"`

	// Web push (VAPID).
	VAPIDPublicKey  string `mapstructure:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `mapstructure:"VAPID_PRIVATE_KEY"`
	VAPIDSubject    string `mapstructure:"VAPID_SUBJECT"`

	// Media storage.
	CloudinaryURL string `mapstructure:"CLOUDINARY_URL"`
}

var AppConfig Config

// FirebaseServiceAccountKeyPath points at the FCM service account JSON.
var FirebaseServiceAccountKeyPath = "config/firebase-service-account.json"

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_AUTH_DB", 1)
	viper.SetDefault("REDIS_OTP_DB", 2)
	viper.SetDefault("REDIS_TASK_QUEUE_DB", 3)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "velora")
	viper.SetDefault("CURRENCY", "usd")
	viper.SetDefault("PLATFORM_COMMISSION", 0.15)
	viper.SetDefault("LATE_CANCEL_FEE", 0.20)
	viper.SetDefault("LATE_CANCEL_WINDOW_HOURS", 24)
	viper.SetDefault("AUTO_COMPLETE_GRACE_HOURS", 24)
	viper.SetDefault("BOOKING_REMINDER_MINUTES", 60)
	viper.SetDefault("CALL_RING_TIMEOUT_SECONDS", 45)
	viper.SetDefault("CALL_RATE_PER_MIN", 1.50)
	viper.SetDefault("VAPID_SUBJECT", "mailto:support@velora.app")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
