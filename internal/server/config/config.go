// Package config handles configuration for the chat server: defaults, an
// optional JSON file, LIBERTALK_* environment variables and command-line
// flags, applied in that order.
package config

import "time"

// Config holds runtime settings for the server.
//
// Fields:
//   - HTTPAddr: bind address for the REST API.
//   - DatabaseDSN: storage DSN (memory://, file://dir, postgres://..., sqlite://path).
//   - SecretKey: HMAC secret for session tokens (HS256).
//   - SessionValidityDuration: lifetime of a login session.
//   - MediaBackend: "local" or "s3".
//   - MaxUploadSize / MaxVoiceDuration: upload limits.
//   - PersistenceRetries / PersistenceTimeout: bounded retry of storage calls.
type Config struct {
	HTTPAddr                string        `env:"HTTP_ADDR"`
	DatabaseDSN             string        `env:"DATABASE_DSN"`
	SecretKey               string        `env:"SECRET_KEY"`
	SessionValidityDuration time.Duration `env:"SESSION_VALIDITY"`
	LogLevel                string        `env:"LOG_LEVEL"`
	MediaBackend            string        `env:"MEDIA_BACKEND"`
	UploadDir               string        `env:"UPLOAD_DIR"`
	MaxUploadSize           int64         `env:"MAX_UPLOAD_SIZE"`
	MaxVoiceDuration        time.Duration `env:"MAX_VOICE_DURATION"`
	PersistenceRetries      uint64        `env:"PERSISTENCE_RETRIES"`
	PersistenceTimeout      time.Duration `env:"PERSISTENCE_TIMEOUT"`
	S3AccessKey             string        `env:"S3_ACCESS_KEY"`
	S3SecretKey             string        `env:"S3_SECRET_KEY"`
	S3Bucket                string        `env:"S3_BUCKET"`
	S3Region                string        `env:"S3_REGION"`
	S3BaseEndpoint          string        `env:"S3_BASE_ENDPOINT"`
}

const (
	MediaBackendLocal = "local"
	MediaBackendS3    = "s3"
)

// LoadDefaults populates Config with development defaults.
// NOTE: the secret key must be overridden outside development.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":5000"
	c.DatabaseDSN = "file://data"
	c.SecretKey = "secretKey"
	c.SessionValidityDuration = 24 * time.Hour
	c.LogLevel = "info"
	c.MediaBackend = MediaBackendLocal
	c.UploadDir = "uploads"
	c.MaxUploadSize = 16 << 20
	c.MaxVoiceDuration = 30 * time.Second
	c.PersistenceRetries = 3
	c.PersistenceTimeout = 5 * time.Second
	c.S3AccessKey = "admin"
	c.S3SecretKey = "secretpassword"
	c.S3Bucket = "libertalk"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
