package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/skriptik666-dev/flick-messenger/internal/transport"
)

// Config holds the compiled-in defaults, overridable through the
// environment (FLICK_ prefix) or a .env file.
type Config struct {
	AuthURL string `envconfig:"AUTH_URL" default:"http://localhost:8082"`
	APIURL  string `envconfig:"API_URL" default:"http://localhost:8083"`

	HTTPTimeout         time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	LocalSendDelay      time.Duration `envconfig:"LOCAL_SEND_DELAY" default:"500ms"`
	UploadFallbackDelay time.Duration `envconfig:"UPLOAD_FALLBACK_DELAY" default:"1s"`

	Storage StorageConfig `envconfig:"STORAGE"`
	Log     LogConfig     `envconfig:"LOG"`
}

// StorageConfig addresses the S3-compatible object store used for attachments.
type StorageConfig struct {
	Endpoint        string `envconfig:"ENDPOINT" default:"your-storage-endpoint" json:"endpoint,omitempty"`
	Bucket          string `envconfig:"BUCKET" default:"chat-files" json:"bucket,omitempty"`
	Region          string `envconfig:"REGION" default:"us-east-1" json:"region,omitempty"`
	AccessKeyID     string `envconfig:"ACCESS_KEY_ID" default:"your-access-key" json:"access_key_id,omitempty"`
	SecretAccessKey string `envconfig:"SECRET_ACCESS_KEY" json:"secret_access_key,omitempty"`
	PublicBaseURL   string `envconfig:"PUBLIC_BASE_URL" json:"public_base_url,omitempty"`
}

// Merge returns c with every non-empty field of override applied.
func (c StorageConfig) Merge(override StorageConfig) StorageConfig {
	if override.Endpoint != "" {
		c.Endpoint = override.Endpoint
	}
	if override.Bucket != "" {
		c.Bucket = override.Bucket
	}
	if override.Region != "" {
		c.Region = override.Region
	}
	if override.AccessKeyID != "" {
		c.AccessKeyID = override.AccessKeyID
	}
	if override.SecretAccessKey != "" {
		c.SecretAccessKey = override.SecretAccessKey
	}
	if override.PublicBaseURL != "" {
		c.PublicBaseURL = override.PublicBaseURL
	}
	return c
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `envconfig:"LEVEL" default:"warn"`
	Format string `envconfig:"FORMAT" default:"text"`
}

// Load reads .env (optional) and then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using defaults/env vars")
	}

	var c Config
	if err := envconfig.Process("flick", &c); err != nil {
		return Config{}, fmt.Errorf("unable to process env config: %w", err)
	}
	return c, nil
}

// Default returns the compiled-in configuration without reading the environment.
func Default() Config {
	return Config{
		AuthURL:             transport.DefaultAuthURL,
		APIURL:              transport.DefaultAPIURL,
		HTTPTimeout:         30 * time.Second,
		LocalSendDelay:      transport.DefaultLocalSendDelay,
		UploadFallbackDelay: transport.DefaultUploadFallbackDelay,
		Storage: StorageConfig{
			Endpoint:    "your-storage-endpoint",
			Bucket:      "chat-files",
			Region:      "us-east-1",
			AccessKeyID: "your-access-key",
		},
		Log: LogConfig{Level: "warn", Format: "text"},
	}
}
