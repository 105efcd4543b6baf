package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the immutable process configuration, loaded once at startup
// and passed explicitly to the components that need it.
type Config struct {
	ServerPort   int
	Database     DatabaseConfig
	Auth         AuthConfig
	Registration RegistrationConfig
	Scoring      ScoringConfig
	Attachments  AttachmentsConfig
	Events       EventsConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

// AuthConfig holds the token signing settings. Secret has no default:
// the server refuses to start without one.
type AuthConfig struct {
	Secret   string
	TokenTTL int // hours
}

// RegistrationConfig bounds the age accepted at sign-up.
type RegistrationConfig struct {
	MinAge int
	MaxAge int
}

// ScoringConfig maps game id to the maximum achievable score, used for
// progress percentages. A game absent from the map reports 0%.
type ScoringConfig struct {
	MaxScores map[int]int
}

// AttachmentsConfig selects the object-storage backend for feedback
// screenshots: "none", "minio", or "gcs".
type AttachmentsConfig struct {
	Backend string
	Minio   MinioConfig
	GCS     GCSConfig
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type GCSConfig struct {
	ProjectID       string
	Bucket          string
	CredentialsFile string
}

// EventsConfig selects the domain-event broker: "none", "rabbitmq",
// or "pubsub".
type EventsConfig struct {
	Backend  string
	RabbitMQ RabbitMQConfig
	PubSub   PubSubConfig
}

type RabbitMQConfig struct {
	URL             string
	QueueDurable    bool
	QueueAutoDelete bool
	PrefetchCount   int
}

type PubSubConfig struct {
	ProjectID          string
	CredentialsFile    string
	SubscriptionSuffix string
}

// Default per-game max scores for the shipped four-topic catalog.
var defaultMaxScores = map[int]int{
	1: 60,
	2: 60,
	3: 50,
	4: 60,
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "cyberquest"),
		Password: getEnv("DB_PASSWORD", "password"),
		DBName:   getEnv("DB_NAME", "cyberquest_db"),
		UseSSL:   getEnvBool("DB_USE_SSL", false),
	}

	return Config{
		ServerPort: getEnvInt("SERVER_PORT", 8080),
		Database:   dbConfig,
		Auth: AuthConfig{
			Secret:   strings.TrimSpace(os.Getenv("JWT_SECRET")),
			TokenTTL: getEnvInt("TOKEN_TTL_HOURS", 24),
		},
		Registration: RegistrationConfig{
			MinAge: getEnvInt("REGISTER_MIN_AGE", 13),
			MaxAge: getEnvInt("REGISTER_MAX_AGE", 17),
		},
		Scoring: ScoringConfig{
			MaxScores: parseMaxScores(os.Getenv("GAME_MAX_SCORES")),
		},
		Attachments: AttachmentsConfig{
			Backend: getEnv("ATTACHMENT_BACKEND", "none"),
			Minio: MinioConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", ""),
				AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
				SecretKey: getEnv("MINIO_SECRET_KEY", ""),
				Bucket:    getEnv("MINIO_BUCKET", "cyberquest-attachments"),
				UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			},
			GCS: GCSConfig{
				ProjectID:       getEnv("GCS_PROJECT_ID", ""),
				Bucket:          getEnv("GCS_BUCKET", ""),
				CredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
			},
		},
		Events: EventsConfig{
			Backend: getEnv("EVENTS_BACKEND", "none"),
			RabbitMQ: RabbitMQConfig{
				URL:             getEnv("RABBITMQ_URL", ""),
				QueueDurable:    getEnvBool("RABBITMQ_QUEUE_DURABLE", true),
				QueueAutoDelete: getEnvBool("RABBITMQ_QUEUE_AUTODELETE", false),
				PrefetchCount:   getEnvInt("RABBITMQ_PREFETCH", 0),
			},
			PubSub: PubSubConfig{
				ProjectID:          getEnv("PUBSUB_PROJECT_ID", ""),
				CredentialsFile:    getEnv("PUBSUB_CREDENTIALS_FILE", ""),
				SubscriptionSuffix: getEnv("PUBSUB_SUBSCRIPTION_SUFFIX", "-sub"),
			},
		},
	}
}

// parseMaxScores reads "gameID:max" pairs separated by commas,
// e.g. "1:60,2:60,3:50,4:60". Falls back to the shipped defaults.
func parseMaxScores(raw string) map[int]int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		out := make(map[int]int, len(defaultMaxScores))
		for id, max := range defaultMaxScores {
			out[id] = max
		}
		return out
	}

	out := make(map[int]int)
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) != 2 {
			continue
		}
		id, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
		max, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err1 != nil || err2 != nil {
			continue
		}
		out[id] = max
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		value, err := strconv.ParseBool(strings.TrimSpace(valueStr))
		if err == nil {
			return value
		}
	}
	return defaultValue
}
