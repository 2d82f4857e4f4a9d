package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/libertalk/internal/flagx"
	"github.com/dmitrijs2005/libertalk/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "30s" and integer nanoseconds are accepted.
type JsonConfig struct {
	HTTPAddr                string         `json:"http_addr"`
	DatabaseDSN             string         `json:"database_dsn"`
	SecretKey               string         `json:"secret_key"`
	SessionValidityDuration timex.Duration `json:"session_validity_duration"`
	LogLevel                string         `json:"log_level"`
	MediaBackend            string         `json:"media_backend"`
	UploadDir               string         `json:"upload_dir"`
	MaxUploadSize           int64          `json:"max_upload_size"`
	MaxVoiceDuration        timex.Duration `json:"max_voice_duration"`
	PersistenceRetries      uint64         `json:"persistence_retries"`
	PersistenceTimeout      timex.Duration `json:"persistence_timeout"`
	S3AccessKey             string         `json:"s3_access_key"`
	S3SecretKey             string         `json:"s3_secret_key"`
	S3Bucket                string         `json:"s3_bucket"`
	S3Region                string         `json:"s3_region"`
	S3BaseEndpoint          string         `json:"s3_base_endpoint"`
}

// parseJson loads the file named by -c/-config, if any, into config. Only
// keys present in the file (non-zero after decoding) override the current
// values. An unreadable or invalid file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFileFlag(os.Args[1:])

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.MediaBackend, c.MediaBackend)
	setString(&config.UploadDir, c.UploadDir)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.SessionValidityDuration.Duration != 0 {
		config.SessionValidityDuration = c.SessionValidityDuration.Duration
	}
	if c.MaxVoiceDuration.Duration != 0 {
		config.MaxVoiceDuration = c.MaxVoiceDuration.Duration
	}
	if c.PersistenceTimeout.Duration != 0 {
		config.PersistenceTimeout = c.PersistenceTimeout.Duration
	}
	if c.MaxUploadSize != 0 {
		config.MaxUploadSize = c.MaxUploadSize
	}
	if c.PersistenceRetries != 0 {
		config.PersistenceRetries = c.PersistenceRetries
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
