package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env         string
	HTTP        HTTPConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	Recognition RecognitionConfig
	Attendance  AttendanceConfig
	JWTSecret   string
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// Kiosk rate limit, requests per second per client IP
	KioskRPS   float64
	KioskBurst int
}

type DatabaseConfig struct {
	Host        string
	User        string
	Password    string
	Name        string
	Port        string
	SSLMode     string
	MaxRetries  int
	AutoMigrate bool
}

// DSN builds the key/value connection string the postgres driver expects.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode,
	)
}

type RedisConfig struct {
	Addr     string // empty disables redis (in-process locks, no cache)
	Password string
	DB       int
}

type KafkaConfig struct {
	Broker        string
	ConsumerGroup string
	PollInterval  time.Duration
}

type RecognitionConfig struct {
	BaseURL     string
	Path        string
	Timeout     time.Duration
	APIKey      string
	BearerToken string
	Threshold   float64
}

type AttendanceConfig struct {
	Timezone      string
	LateCutoff    string // HH:MM or HH:MM:SS
	RepeatPolicy  string // reject | new_pair
	MaxImageBytes int64
	LockTTL       time.Duration
	LockWait      time.Duration
}

// Load reads the process environment. Call godotenv.Load before it when a
// .env file should be honoured.
func Load() (*Config, error) {
	cfg := &Config{
		Env: envString("APP_ENV", "development"),
		HTTP: HTTPConfig{
			Port:         envString("PORT", "3000"),
			ReadTimeout:  envDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: envDuration("HTTP_WRITE_TIMEOUT", 45*time.Second),
			IdleTimeout:  envDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
			KioskRPS:     envFloat("KIOSK_RATE_LIMIT_RPS", 2),
			KioskBurst:   envInt("KIOSK_RATE_LIMIT_BURST", 5),
		},
		Database: DatabaseConfig{
			Host:        os.Getenv("DB_HOST"),
			User:        os.Getenv("DB_USER"),
			Password:    os.Getenv("DB_PASSWORD"),
			Name:        os.Getenv("DB_NAME"),
			Port:        envString("DB_PORT", "5432"),
			SSLMode:     envString("DB_SSLMODE", "disable"),
			MaxRetries:  envInt("DB_MAX_RETRIES", 5),
			AutoMigrate: envBool("DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       envInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Broker:        os.Getenv("KAFKA_BROKER"),
			ConsumerGroup: envString("KAFKA_CONSUMER_GROUP", "face-attendance-summary"),
			PollInterval:  envDuration("OUTBOX_POLL_INTERVAL", 3*time.Second),
		},
		Recognition: RecognitionConfig{
			BaseURL:     envString("RECOGNITION_SERVICE_URL", "http://localhost:5001"),
			Path:        envString("RECOGNITION_SERVICE_PATH", "/recognize"),
			Timeout:     envDuration("RECOGNITION_TIMEOUT", 10*time.Second),
			APIKey:      os.Getenv("RECOGNITION_API_KEY"),
			BearerToken: os.Getenv("RECOGNITION_BEARER_TOKEN"),
			Threshold:   envFloat("RECOGNITION_CONFIDENCE_THRESHOLD", 0.7),
		},
		Attendance: AttendanceConfig{
			Timezone:      envString("ATTENDANCE_TIMEZONE", "Local"),
			LateCutoff:    envString("ATTENDANCE_LATE_CUTOFF", "09:00"),
			RepeatPolicy:  envString("ATTENDANCE_REPEAT_POLICY", "reject"),
			MaxImageBytes: int64(envInt("ATTENDANCE_MAX_IMAGE_BYTES", 5<<20)),
			LockTTL:       envDuration("ATTENDANCE_LOCK_TTL", 10*time.Second),
			LockWait:      envDuration("ATTENDANCE_LOCK_WAIT", 3*time.Second),
		},
		JWTSecret: os.Getenv("JWT_SECRET"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Recognition.BaseURL == "" {
		return fmt.Errorf("RECOGNITION_SERVICE_URL is required")
	}
	if c.Recognition.Timeout <= 0 {
		return fmt.Errorf("RECOGNITION_TIMEOUT must be positive")
	}
	if c.Recognition.Threshold < 0 || c.Recognition.Threshold > 1 {
		return fmt.Errorf("RECOGNITION_CONFIDENCE_THRESHOLD must be within [0,1], got %v", c.Recognition.Threshold)
	}
	switch strings.ToLower(c.Attendance.RepeatPolicy) {
	case "reject", "new_pair":
	default:
		return fmt.Errorf("ATTENDANCE_REPEAT_POLICY must be reject or new_pair, got %q", c.Attendance.RepeatPolicy)
	}
	if c.Attendance.MaxImageBytes <= 0 {
		return fmt.Errorf("ATTENDANCE_MAX_IMAGE_BYTES must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func envString(key, defaultVal string) string {
	if s := strings.TrimSpace(os.Getenv(key)); s != "" {
		return s
	}
	return defaultVal
}

// envInt reads an environment variable as a non-negative integer.
// Returns the default when unset or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return n
	}
	return defaultVal
}

func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return defaultVal
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return defaultVal
}
