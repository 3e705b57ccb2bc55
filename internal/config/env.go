package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	SslCertPath string
	Port        string
	LogLevel    string

	EmbedProvider string
	AIAPIKey      string
	EmbedModel    string
	EmbedDim      int
	OpenAIBaseURL string
	OpenAIAPIKey  string

	SourceKind   string
	DocumentsDir string
	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string
	SourcePrefix string

	ChunkSize       int
	ChunkOverlap    int
	BatchSize       int
	BatchPause      time.Duration
	UpsertAttempts  int
	RetryBaseDelay  time.Duration
	MaxPayloadBytes int
}

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	SourceDir = "dir"
	SourceS3  = "s3"
)

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {

	_ = godotenv.Load()

	return &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		SslCertPath: getEnv("SSL_CERT_PATH", ""),
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "INFO"),

		EmbedProvider: strings.ToLower(getEnv("EMBED_PROVIDER", ProviderGemini)),
		AIAPIKey:      getEnv("GEMINI_API_KEY", ""),
		EmbedModel:    getEnv("EMBED_MODEL", "text-embedding-004"),
		EmbedDim:      getEnvInt("EMBED_DIM", 0),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),

		SourceKind:   strings.ToLower(getEnv("SOURCE_KIND", SourceDir)),
		DocumentsDir: getEnv("DOCUMENTS_DIR", "./documents"),
		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		BucketName:   getEnv("BUCKET_NAME", "contexta-docs"),
		SourcePrefix: getEnv("SOURCE_PREFIX", "documents/"),

		ChunkSize:       getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap:    getEnvInt("CHUNK_OVERLAP", 200),
		BatchSize:       getEnvInt("BATCH_SIZE", 10),
		BatchPause:      getEnvDuration("BATCH_PAUSE", 300*time.Millisecond),
		UpsertAttempts:  getEnvInt("UPSERT_ATTEMPTS", 3),
		RetryBaseDelay:  getEnvDuration("RETRY_BASE_DELAY", time.Second),
		MaxPayloadBytes: getEnvInt("MAX_PAYLOAD_BYTES", 2*1024*1024),
	}
}

// Validate checks the settings every entrypoint needs before it wires anything.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL not set"))
	}
	switch c.EmbedProvider {
	case ProviderGemini, ProviderOpenAI:
	default:
		errs = append(errs, fmt.Errorf("EMBED_PROVIDER %q is not one of gemini, openai", c.EmbedProvider))
	}
	switch c.SourceKind {
	case SourceDir:
		if c.DocumentsDir == "" {
			errs = append(errs, errors.New("DOCUMENTS_DIR not set"))
		}
	case SourceS3:
		if c.BucketName == "" {
			errs = append(errs, errors.New("BUCKET_NAME not set"))
		}
	default:
		errs = append(errs, fmt.Errorf("SOURCE_KIND %q is not one of dir, s3", c.SourceKind))
	}
	if c.ChunkSize <= 0 || c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		errs = append(errs, fmt.Errorf("CHUNK_OVERLAP (%d) must be below CHUNK_SIZE (%d)", c.ChunkOverlap, c.ChunkSize))
	}
	return errors.Join(errs...)
}

// ConfigureLogging installs a text slog handler on stderr at the given level
// (DEBUG, INFO, WARN, ERROR). Unknown levels fall back to INFO.
func ConfigureLogging(level string) {
	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("env value is not an int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("env value is not a duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}
