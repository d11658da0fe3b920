package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// StockPolicy decides what happens when a supply item is fulfilled against
// insufficient stock.
type StockPolicy string

const (
	// StockPolicyStrict fails the fulfillment; nothing changes.
	StockPolicyStrict StockPolicy = "strict"
	// StockPolicyBestEffort fulfills the item and skips the debit, recording
	// a stock_debit_skipped audit event.
	StockPolicyBestEffort StockPolicy = "best_effort"
)

// Server captures process level configuration.
type Server struct {
	Addr          string
	DatabaseURL   string
	JWTSigningKey string
	LogLevel      string
	LogFormat     string
	TxTimeout     time.Duration
	StockPolicy   StockPolicy

	Redis       RedisConfig
	Kafka       KafkaConfig
	Attachments AttachmentConfig
}

// RedisConfig configures the optional Redis client used for distributed locks.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	LockTTL      time.Duration
}

// KafkaConfig configures the audit outbox relay. Empty Brokers disables it.
type KafkaConfig struct {
	Brokers      []string
	AuditTopic   string
	PollInterval time.Duration
}

// AttachmentConfig selects the attachment backend. Empty Bucket keeps
// attachments in memory.
type AttachmentConfig struct {
	Bucket    string
	Region    string
	Endpoint  string
	PathStyle bool
	URLExpiry time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	jwtSigningKey := os.Getenv("AYUDA_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	policy := StockPolicy(strings.ToLower(getenv("AYUDA_STOCK_POLICY", string(StockPolicyStrict))))
	if policy != StockPolicyBestEffort {
		policy = StockPolicyStrict
	}

	var brokers []string
	if raw := os.Getenv("AYUDA_KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return Server{
		Addr:          getenv("AYUDA_ADDR", ":8080"),
		DatabaseURL:   os.Getenv("AYUDA_DATABASE_URL"),
		JWTSigningKey: jwtSigningKey,
		LogLevel:      getenv("AYUDA_LOG_LEVEL", "info"),
		LogFormat:     getenv("AYUDA_LOG_FORMAT", "json"),
		TxTimeout:     getDuration("AYUDA_TX_TIMEOUT", 5*time.Second),
		StockPolicy:   policy,
		Redis: RedisConfig{
			URL:          os.Getenv("AYUDA_REDIS_URL"),
			PoolSize:     getInt("AYUDA_REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("AYUDA_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("AYUDA_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("AYUDA_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("AYUDA_REDIS_WRITE_TIMEOUT", 3*time.Second),
			LockTTL:      getDuration("AYUDA_CASE_LOCK_TTL", 10*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:      brokers,
			AuditTopic:   getenv("AYUDA_KAFKA_AUDIT_TOPIC", "ayuda.audit"),
			PollInterval: getDuration("AYUDA_OUTBOX_POLL_INTERVAL", 2*time.Second),
		},
		Attachments: AttachmentConfig{
			Bucket:    os.Getenv("AYUDA_S3_BUCKET"),
			Region:    getenv("AYUDA_S3_REGION", "us-east-1"),
			Endpoint:  os.Getenv("AYUDA_S3_ENDPOINT"),
			PathStyle: os.Getenv("AYUDA_S3_PATH_STYLE") == "true",
			URLExpiry: getDuration("AYUDA_S3_URL_EXPIRY", 15*time.Minute),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
