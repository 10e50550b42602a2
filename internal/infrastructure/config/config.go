package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,        default=8080"`
	Env       string `env:"ENV,         default=development"`
	LogLevel  string `env:"LOG_LEVEL,   default=info"`
	JWTSecret string `env:"JWT_SECRET,  required"`

	// FrontendURL is the public base URL used to build the links embedded in
	// verification and reset emails, and the allowed CORS origin.
	FrontendURL string `env:"FRONTEND_URL, default=http://localhost:5173"`

	SessionTTL time.Duration `env:"SESSION_TTL, default=720h"`

	Mongo MongoConfig
	Redis RedisConfig
	SMTP  SMTPConfig
	S3    S3Config
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=righthome"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT, default=587"`
	Username string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASS"`
	From     string `env:"MAIL_FROM"`
}

type S3Config struct {
	Region        string `env:"S3_REGION,     default=us-east-1"`
	Bucket        string `env:"S3_BUCKET"`
	AccessKey     string `env:"S3_ACCESS_KEY"`
	SecretKey     string `env:"S3_SECRET_KEY"`
	BaseEndpoint  string `env:"S3_ENDPOINT"`
	PublicBaseURL string `env:"S3_PUBLIC_URL"`
}

// Production reports whether the process runs with production hardening
// (secure cookies, JSON logs).
func (c *Config) Production() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
