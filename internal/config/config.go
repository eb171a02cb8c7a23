package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr    string
	CORSOrigins []string

	StoreDriver  string // memory|sqlite|postgres|mongo
	DBDSN        string
	MongoURI     string
	MongoDB      string
	BlobBasePath string

	JWTSecret string
	JWTTTL    time.Duration

	// Remote question source. An empty API key disables the remote tier.
	LLMAPIKey  string
	LLMModel   string
	LLMBaseURL string
	LLMTimeout time.Duration
}

func FromEnv() Config {
	return Config{
		HTTPAddr:    envOr("HTTP_ADDR", ":8080"),
		CORSOrigins: csvOr("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),

		StoreDriver:  envOr("STORE_DRIVER", "sqlite"),
		DBDSN:        os.Getenv("DB_DSN"),
		MongoURI:     envOr("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:      envOr("MONGO_DB", "quiz_planner"),
		BlobBasePath: envOr("BLOB_BASE_PATH", "./data"),

		JWTSecret: envOr("JWT_SECRET_KEY", "dev-secret-key"),
		JWTTTL:    envDuration("JWT_TTL", time.Hour),

		LLMAPIKey:  os.Getenv("LLM_API_KEY"),
		LLMModel:   envOr("LLM_MODEL", ""),
		LLMBaseURL: os.Getenv("LLM_BASE_URL"),
		LLMTimeout: envDuration("LLM_TIMEOUT", 30*time.Second),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
