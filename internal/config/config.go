package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	DynamoTables     DynamoTables
	S3BucketName     string
	SNSOrderTopicARN string

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration
	RefreshTokenDur   time.Duration

	GoogleClientID string

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	VerificationTTL   time.Duration // validity window for issued codes
	VerificationSweep time.Duration // interval between expired-record sweeps
	MaxCodeAttempts   int

	PaymentDelay time.Duration // simulated payment capture latency

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users      string
	Sessions   string
	Products   string
	Categories string
	Orders     string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		DynamoTables: DynamoTables{
			Users:      getEnv("DYNAMO_TABLE_USERS", "users"),
			Sessions:   getEnv("DYNAMO_TABLE_SESSIONS", "sessions"),
			Products:   getEnv("DYNAMO_TABLE_PRODUCTS", "products"),
			Categories: getEnv("DYNAMO_TABLE_CATEGORIES", "categories"),
			Orders:     getEnv("DYNAMO_TABLE_ORDERS", "orders"),
		},
		S3BucketName:     getEnv("S3_BUCKET_NAME", "storefront-product-images"),
		SNSOrderTopicARN: getEnv("SNS_ORDER_TOPIC_ARN", ""),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         time.Duration(getEnvInt("JWT_EXPIRY_DAYS", 7)) * 24 * time.Hour,
		RefreshTokenDur:   time.Duration(getEnvInt("REFRESH_TOKEN_EXPIRY_DAYS", 30)) * 24 * time.Hour,

		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@allinone.store"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		VerificationTTL:   time.Duration(getEnvInt("VERIFICATION_TTL_MINUTES", 10)) * time.Minute,
		VerificationSweep: time.Duration(getEnvInt("VERIFICATION_SWEEP_MINUTES", 5)) * time.Minute,
		MaxCodeAttempts:   getEnvInt("VERIFICATION_MAX_ATTEMPTS", 5),

		PaymentDelay: time.Duration(getEnvInt("PAYMENT_DELAY_MS", 2000)) * time.Millisecond,

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
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
