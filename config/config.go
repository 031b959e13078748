package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultRepositoryURL     = "http://localhost:8080"
	DefaultAnalyzerURL       = "http://localhost:8081"
	DefaultRepositoryTimeout = 30 * time.Second
	DefaultAnalyzerTimeout   = 5 * time.Minute
)

type Config struct {
	Repository BackendConfig
	Evaluation BackendConfig
	Analyzer   BackendConfig
	Submission SubmissionConfig
	Logging    LoggingConfig
	Journal    JournalConfig
}

// BackendConfig locates one backend service.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

type SubmissionConfig struct {
	Language    string
	TimeLimitMs int
}

type LoggingConfig struct {
	Level  string
	Pretty bool
}

// JournalConfig selects the optional sinks completed results are recorded to.
type JournalConfig struct {
	DatabaseEnabled bool
	Database        DatabaseConfig
	StorageBackend  string
	Minio           MinioConfig
	GCS             GCSConfig
	S3              S3Config
	MQBackend       string
	MQTopic         string
	RabbitMQ        RabbitMQConfig
	PubSub          PubSubConfig
	SQS             SQSConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type GCSConfig struct {
	Bucket          string
	ProjectID       string
	CredentialsFile string
}

// S3Config uses the default AWS credential chain.
type S3Config struct {
	Region string
	Bucket string
}

// RabbitMQConfig publishes to a fanout exchange named after the topic.
// Followers get a private queue unless Queue names a shared one.
type RabbitMQConfig struct {
	URL           string
	Durable       bool
	Queue         string
	PrefetchCount int
}

// PubSubConfig follows through Subscription, or <topic>-<hostname> when
// it is empty.
type PubSubConfig struct {
	ProjectID       string
	CredentialsFile string
	Subscription    string
}

type SQSConfig struct {
	Region   string
	QueueURL string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}
	if file := strings.TrimSpace(os.Getenv("CODECOACH_ENV_FILE")); file != "" {
		godotenv.Load(file)
	}

	repository := BackendConfig{
		BaseURL: getEnv("REPOSITORY_URL", DefaultRepositoryURL),
		Timeout: getEnvDuration("REPOSITORY_TIMEOUT", DefaultRepositoryTimeout),
	}

	// The evaluation engine is reached through the repository's
	// /submissions endpoint unless pointed elsewhere.
	evaluation := BackendConfig{
		BaseURL: getEnv("EVALUATION_URL", repository.BaseURL),
		Timeout: getEnvDuration("EVALUATION_TIMEOUT", DefaultRepositoryTimeout),
	}

	analyzer := BackendConfig{
		BaseURL: getEnv("ANALYZER_URL", DefaultAnalyzerURL),
		Timeout: getEnvDuration("ANALYZER_TIMEOUT", DefaultAnalyzerTimeout),
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "codecoach"),
		Password: getEnv("DB_PASSWORD", "password"),
		DBName:   getEnv("DB_NAME", "codecoach"),
		UseSSL:   getEnvBool("DB_USE_SSL", false),
	}

	return Config{
		Repository: repository,
		Evaluation: evaluation,
		Analyzer:   analyzer,
		Submission: SubmissionConfig{
			Language:    getEnv("DEFAULT_LANGUAGE", "cpp"),
			TimeLimitMs: getEnvInt("DEFAULT_TIME_LIMIT_MS", 2000),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnvBool("LOG_PRETTY", true),
		},
		Journal: JournalConfig{
			DatabaseEnabled: getEnvBool("JOURNAL_DB_ENABLED", false),
			Database:        dbConfig,
			StorageBackend:  strings.ToLower(getEnv("STORAGE_BACKEND", "none")),
			Minio: MinioConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
				AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
				SecretKey: getEnv("MINIO_SECRET_KEY", ""),
				Bucket:    getEnv("MINIO_BUCKET", "codecoach-reports"),
				UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			},
			GCS: GCSConfig{
				Bucket:          getEnv("GCS_BUCKET", ""),
				ProjectID:       getEnv("GCS_PROJECT_ID", ""),
				CredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
			},
			S3: S3Config{
				Region: getEnv("AWS_REGION", "eu-central-1"),
				Bucket: getEnv("S3_BUCKET", ""),
			},
			MQBackend: strings.ToLower(getEnv("MQ_BACKEND", "none")),
			MQTopic:   getEnv("MQ_TOPIC", "codecoach.results"),
			RabbitMQ: RabbitMQConfig{
				URL:           getEnv("RABBITMQ_URL", ""),
				Durable:       getEnvBool("RABBITMQ_DURABLE", true),
				Queue:         getEnv("RABBITMQ_QUEUE", ""),
				PrefetchCount: getEnvInt("RABBITMQ_PREFETCH_COUNT", 10),
			},
			PubSub: PubSubConfig{
				ProjectID:       getEnv("PUBSUB_PROJECT_ID", ""),
				CredentialsFile: getEnv("PUBSUB_CREDENTIALS_FILE", ""),
				Subscription:    getEnv("PUBSUB_SUBSCRIPTION", ""),
			},
			SQS: SQSConfig{
				Region:   getEnv("AWS_REGION", "eu-central-1"),
				QueueURL: getEnv("SQS_QUEUE_URL", ""),
			},
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		value, err := strconv.Atoi(strings.TrimSpace(valueStr))
		if err != nil {
			return defaultValue
		}
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		value, err := strconv.ParseBool(strings.TrimSpace(valueStr))
		if err != nil {
			return defaultValue
		}
		return value
	}
	return defaultValue
}

// getEnvDuration accepts Go duration strings ("90s", "5m") and bare integers,
// which are read as seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueStr = strings.TrimSpace(valueStr)
	if seconds, err := strconv.Atoi(valueStr); err == nil {
		if seconds <= 0 {
			return defaultValue
		}
		return time.Duration(seconds) * time.Second
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}
