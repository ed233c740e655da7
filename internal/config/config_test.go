package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	os.Args = append([]string{"modcatalog"}, args...)
	t.Cleanup(func() { os.Args = orig })
}

// inTempDir keeps a stray ./.env out of the tests.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "modcatalog.db", c.LocalDSN)
	assert.Equal(t, "module-images", c.S3Bucket)
	assert.Equal(t, 3*time.Second, c.OnlineCheckInterval)
	assert.Equal(t, 10*time.Second, c.RemoteTimeout)
	assert.Equal(t, "info", c.LogLevel)
	assert.False(t, c.RemoteEnabled())
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	inTempDir(t)
	withArgs(t)

	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	var want Config
	want.LoadDefaults()
	assert.Equal(t, want, *cfg)
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := inTempDir(t)

	require.NoError(t, os.WriteFile(".env", []byte("MODCAT_REMOTE_DSN=postgres://env\nMODCAT_S3_BUCKET=env-bucket\nMODCAT_LOG_LEVEL=warn\n"), 0o600))
	jsonFile := dir + "/cfg.json"
	require.NoError(t, os.WriteFile(jsonFile, []byte(`{"s3_bucket":"json-bucket","log_level":"debug"}`), 0o600))

	withArgs(t, "-c", jsonFile, "-log", "error")

	cfg := LoadConfig()
	assert.Equal(t, "postgres://env", cfg.RemoteDSN)
	assert.Equal(t, "json-bucket", cfg.S3Bucket)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.True(t, cfg.RemoteEnabled())
}
