// Package config loads the process-wide settings snapshot. It is built once in
// main and passed by reference; nothing mutates it after startup.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	defaultAccessTTL  = 30 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

type Settings struct {
	ServerAddr  string
	DatabaseURL string

	// SecretKey signs JWTs. Required.
	SecretKey  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// GoogleClientID is the expected audience for Google ID tokens. Google
	// sign-in is disabled when empty.
	GoogleClientID string

	PaymentProvider       string
	StripeSecretKey       string
	StripeWebhookSecret   string
	RazorpayKeyID         string
	RazorpayKeySecret     string
	RazorpayWebhookSecret string

	StorageBackend  string
	StorageLocalDir string
	S3Bucket        string
	S3Region        string
	GCSBucket       string
}

// Load reads settings from the environment, honouring a .env file if present.
func Load() (*Settings, error) {
	// Missing .env is fine; real deployments set env vars directly.
	_ = godotenv.Load()

	s := &Settings{
		ServerAddr:  getenv("SERVER_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		SecretKey:  os.Getenv("SECRET_KEY"),
		AccessTTL:  defaultAccessTTL,
		RefreshTTL: defaultRefreshTTL,

		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),

		PaymentProvider:       getenv("PAYMENT_PROVIDER", "mock"),
		StripeSecretKey:       os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret:   os.Getenv("STRIPE_WEBHOOK_SECRET"),
		RazorpayKeyID:         os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret:     os.Getenv("RAZORPAY_KEY_SECRET"),
		RazorpayWebhookSecret: os.Getenv("RAZORPAY_WEBHOOK_SECRET"),

		StorageBackend:  getenv("STORAGE_BACKEND", "local"),
		StorageLocalDir: getenv("STORAGE_LOCAL_DIR", "./data/storage"),
		S3Bucket:        os.Getenv("S3_BUCKET"),
		S3Region:        os.Getenv("S3_REGION"),
		GCSBucket:       os.Getenv("GCS_BUCKET"),
	}

	if s.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL environment variable is required")
	}
	if s.SecretKey == "" {
		return nil, errors.New("SECRET_KEY environment variable is required")
	}

	var err error
	if s.AccessTTL, err = minutesEnv("ACCESS_TOKEN_EXPIRE_MINUTES", defaultAccessTTL); err != nil {
		return nil, err
	}
	if s.RefreshTTL, err = minutesEnv("REFRESH_TOKEN_EXPIRE_MINUTES", defaultRefreshTTL); err != nil {
		return nil, err
	}
	return s, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func minutesEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errors.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return time.Duration(n) * time.Minute, nil
}
