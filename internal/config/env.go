package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/dmitrijs2005/modcatalog/internal/flagx"
	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// Environment variables read by parseEnv.
const (
	EnvLocalDSN            = "MODCAT_LOCAL_DSN"
	EnvRemoteDSN           = "MODCAT_REMOTE_DSN"
	EnvS3Region            = "MODCAT_S3_REGION"
	EnvS3AccessKey         = "MODCAT_S3_ACCESS_KEY"
	EnvS3SecretKey         = "MODCAT_S3_SECRET_KEY"
	EnvS3Endpoint          = "MODCAT_S3_ENDPOINT"
	EnvS3Bucket            = "MODCAT_S3_BUCKET"
	EnvS3PublicURL         = "MODCAT_S3_PUBLIC_URL"
	EnvVisionAPIKey        = "MODCAT_VISION_API_KEY"
	EnvVisionBaseURL       = "MODCAT_VISION_BASE_URL"
	EnvOnlineCheckInterval = "MODCAT_ONLINE_CHECK_INTERVAL"
	EnvRemoteTimeout       = "MODCAT_REMOTE_TIMEOUT"
	EnvLogLevel            = "MODCAT_LOG_LEVEL"
)

// parseEnv overlays Config with MODCAT_* variables.
//
// Values come from the process environment first and then from a dotenv file:
// the one named with -env, or ./.env when that exists. A missing ./.env is
// fine; a missing file named with -env panics, as do unparsable durations.
func parseEnv(cfg *Config) {
	file := readEnvFile()

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := file[key]
		return v, ok
	}

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		*dst = d
	}

	str(EnvLocalDSN, &cfg.LocalDSN)
	str(EnvRemoteDSN, &cfg.RemoteDSN)
	str(EnvS3Region, &cfg.S3Region)
	str(EnvS3AccessKey, &cfg.S3AccessKey)
	str(EnvS3SecretKey, &cfg.S3SecretKey)
	str(EnvS3Endpoint, &cfg.S3BaseEndpoint)
	str(EnvS3Bucket, &cfg.S3Bucket)
	str(EnvS3PublicURL, &cfg.S3PublicBaseURL)
	str(EnvVisionAPIKey, &cfg.VisionAPIKey)
	str(EnvVisionBaseURL, &cfg.VisionBaseURL)
	dur(EnvOnlineCheckInterval, &cfg.OnlineCheckInterval)
	dur(EnvRemoteTimeout, &cfg.RemoteTimeout)
	str(EnvLogLevel, &cfg.LogLevel)
}

func readEnvFile() map[string]string {
	path := flagx.EnvFileFlags()
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}

	vars, err := godotenv.Read(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		panic(err)
	}
	return vars
}
