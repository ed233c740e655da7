package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/modcatalog/internal/flagx"
	"github.com/dmitrijs2005/modcatalog/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// accept strings like "3s" or integer nanoseconds.
type JsonConfig struct {
	LocalDSN            string         `json:"local_dsn"`
	RemoteDSN           string         `json:"remote_dsn"`
	S3Region            string         `json:"s3_region"`
	S3AccessKey         string         `json:"s3_access_key"`
	S3SecretKey         string         `json:"s3_secret_key"`
	S3BaseEndpoint      string         `json:"s3_base_endpoint"`
	S3Bucket            string         `json:"s3_bucket"`
	S3PublicBaseURL     string         `json:"s3_public_base_url"`
	VisionAPIKey        string         `json:"vision_api_key"`
	VisionBaseURL       string         `json:"vision_base_url"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	RemoteTimeout       timex.Duration `json:"remote_timeout"`
	LogLevel            string         `json:"log_level"`
}

// parseJson overlays Config with the JSON file named by -c or -config.
// Absent or empty keys leave the current value alone. Panics on read or
// unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setDur := func(dst *time.Duration, v timex.Duration) {
		if v.Duration != 0 {
			*dst = v.Duration
		}
	}

	set(&cfg.LocalDSN, jc.LocalDSN)
	set(&cfg.RemoteDSN, jc.RemoteDSN)
	set(&cfg.S3Region, jc.S3Region)
	set(&cfg.S3AccessKey, jc.S3AccessKey)
	set(&cfg.S3SecretKey, jc.S3SecretKey)
	set(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	set(&cfg.S3Bucket, jc.S3Bucket)
	set(&cfg.S3PublicBaseURL, jc.S3PublicBaseURL)
	set(&cfg.VisionAPIKey, jc.VisionAPIKey)
	set(&cfg.VisionBaseURL, jc.VisionBaseURL)
	setDur(&cfg.OnlineCheckInterval, jc.OnlineCheckInterval)
	setDur(&cfg.RemoteTimeout, jc.RemoteTimeout)
	set(&cfg.LogLevel, jc.LogLevel)
}
