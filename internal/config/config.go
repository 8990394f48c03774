package config

import (
	"os"
	"strings"
)

type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Postgres PostgresConfig
	AI       AIConfig
	Agent    AgentConfig
	Storage  StorageConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	LogLevel       string
	AllowedOrigins []string
	MaxUploadBytes string
}

type AuthConfig struct {
	JWTSecret               string
	JWTAccessTTL            string
	RevocationPurgeInterval string
	RateLimitPerMinute      string
	AdminUsername           string
	AdminPassword           string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

type AIConfig struct {
	APIKey         string
	TextModel      string
	EmbeddingModel string
}

type AgentConfig struct {
	BaseURL string
}

type StorageConfig struct {
	Backend   string
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

func Load() Config {
	return Config{
		Server: ServerConfig{
			Port:           getenv("PORT", "8080"),
			GinMode:        os.Getenv("GIN_MODE"),
			LogLevel:       getenv("LOG_LEVEL", "info"),
			AllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
			MaxUploadBytes: getenv("MAX_UPLOAD_BYTES", "10485760"),
		},
		Auth: AuthConfig{
			JWTSecret:               os.Getenv("JWT_SECRET"),
			JWTAccessTTL:            getenv("JWT_ACCESS_TTL", "1h"),
			RevocationPurgeInterval: getenv("REVOCATION_PURGE_INTERVAL", "10m"),
			RateLimitPerMinute:      getenv("AUTH_RATE_LIMIT_PER_MINUTE", "30"),
			AdminUsername:           os.Getenv("ADMIN_USERNAME"),
			AdminPassword:           os.Getenv("ADMIN_PASSWORD"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
		AI: AIConfig{
			APIKey:         os.Getenv("AI_API_KEY"),
			TextModel:      getenv("AI_TEXT_MODEL", "gemini-2.0-flash"),
			EmbeddingModel: getenv("AI_EMBEDDING_MODEL", "text-embedding-004"),
		},
		Agent: AgentConfig{
			BaseURL: os.Getenv("AGENT_URL"),
		},
		Storage: StorageConfig{
			Backend:   getenv("BLOB_BACKEND", "postgres"),
			Bucket:    os.Getenv("S3_BUCKET"),
			Region:    getenv("S3_REGION", "us-east-1"),
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
		},
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
