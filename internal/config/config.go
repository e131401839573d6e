package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort        string
	AppEnv         string
	AppName        string
	AllowedOrigins []string // CORS allowed origins

	Verification VerificationConfig
	RateLimit    RateLimitConfig

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MailProvider string // "smtp" | "resend"
	MailFrom     string
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	ResendAPIKey string

	AWSRegion       string
	AWSEndpointURL  string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID  string
	AWSSecretKey    string
	S3BucketName    string
	AnalyticsTable  string
	DynamoBootstrap bool
	SNSTopicARN     string

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration

	GoogleClientID string

	LinkedTrustAPIURL  string
	LinkedTrustAPIKey  string
	LinkedTrustTimeout time.Duration
}

// VerificationConfig controls the email verification code store.
type VerificationConfig struct {
	Store         string // "memory" | "file"
	FilePath      string
	TTL           time.Duration
	MaxAttempts   int
	MaxEntries    int
	SweepInterval time.Duration // 0 disables the background sweep
}

// RateLimitConfig holds the fixed-window limits for the verification endpoints.
type RateLimitConfig struct {
	Backend          string // "memory" | "redis"
	Window           time.Duration
	SendLimit        int
	SendMaxTokens    int
	ConfirmLimit     int
	ConfirmMaxTokens int
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:        getEnv("APP_PORT", "3000"),
		AppEnv:         getEnv("APP_ENV", "development"),
		AppName:        getEnv("APP_NAME", "LinkedCreds"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		Verification: VerificationConfig{
			Store:         getEnv("VERIFICATION_STORE", "memory"),
			FilePath:      getEnv("VERIFICATION_FILE_PATH", ".verification-cache/verification-codes.json"),
			TTL:           getEnvDuration("VERIFICATION_TTL", 10*time.Minute),
			MaxAttempts:   getEnvInt("VERIFICATION_MAX_ATTEMPTS", 3),
			MaxEntries:    getEnvInt("VERIFICATION_MAX_ENTRIES", 1000),
			SweepInterval: getEnvDuration("VERIFICATION_SWEEP_INTERVAL", 0),
		},
		RateLimit: RateLimitConfig{
			Backend:          getEnv("RATE_LIMIT_BACKEND", "memory"),
			Window:           getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
			SendLimit:        getEnvInt("SEND_RATE_LIMIT", 10),
			SendMaxTokens:    getEnvInt("SEND_RATE_LIMIT_TOKENS", 1000),
			ConfirmLimit:     getEnvInt("CONFIRM_RATE_LIMIT", 5),
			ConfirmMaxTokens: getEnvInt("CONFIRM_RATE_LIMIT_TOKENS", 500),
		},
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		MailProvider:      getEnv("MAIL_PROVIDER", "smtp"),
		MailFrom:          getEnv("MAIL_FROM", "noreply@example.com"),
		SMTPHost:          getEnv("SMTP_HOST", "localhost"),
		SMTPPort:          getEnv("SMTP_PORT", "1025"),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		ResendAPIKey:      getEnv("RESEND_API_KEY", ""),
		AWSRegion:         getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL:    getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID:    getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
		S3BucketName:      getEnv("S3_BUCKET_NAME", "linkedcreds-credentials"),
		AnalyticsTable:    getEnv("DYNAMO_TABLE_ANALYTICS", "user_analytics"),
		DynamoBootstrap:   getEnvBool("DYNAMO_BOOTSTRAP", true),
		SNSTopicARN:       getEnv("SNS_TOPIC_ARN", ""),
		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         getEnvDuration("JWT_EXPIRY", 7*24*time.Hour),
		GoogleClientID:    getEnv("GOOGLE_CLIENT_ID", ""),

		LinkedTrustAPIURL:  getEnv("LINKEDTRUST_API_URL", "https://live.linkedtrust.us/api"),
		LinkedTrustAPIKey:  getEnv("LINKEDTRUST_API_KEY", ""),
		LinkedTrustTimeout: getEnvDuration("LINKEDTRUST_TIMEOUT", 30*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("30m") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
