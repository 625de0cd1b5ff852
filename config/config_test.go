package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	conf := Default()
	require.NoError(t, conf.Validate())
	assert.Equal(t, "8080", conf.Port)
	assert.Equal(t, int64(32<<20), conf.MaxUploadBytes)
	assert.Equal(t, 10000, conf.MaxMessageLength)
	assert.Equal(t, 1<<25, conf.MaxImagePixels)
}

func TestApplyEnv(t *testing.T) {
	conf := Default()
	err := conf.ApplyEnv(envMap(map[string]string{
		"PORT":                     "9090",
		"STEGO_ALLOWED_ORIGINS":    "http://a.test, http://b.test,",
		"STEGO_MAX_UPLOAD_MB":      "4",
		"STEGO_MAX_MESSAGE_LENGTH": "500",
		"STEGO_LEGACY_SALT":        "true",
		"STEGO_RATE_LIMIT":         "100",
		"STEGO_EMBED_RATE_LIMIT":   "10",
		"STEGO_PSNR_THRESHOLD":     "55.5",
		"STEGO_MAX_IMAGE_PIXELS":   "1000000",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9090", conf.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, conf.AllowedOrigins)
	assert.Equal(t, int64(4<<20), conf.MaxUploadBytes)
	assert.Equal(t, 500, conf.MaxMessageLength)
	assert.True(t, conf.LegacySalt)
	assert.Equal(t, 100, conf.RateLimitPerMinute)
	assert.Equal(t, 10, conf.EmbedRateLimitPerMinute)
	assert.Equal(t, 55.5, conf.PSNRThreshold)
	assert.Equal(t, 1000000, conf.MaxImagePixels)
}

func TestApplyEnvRejectsGarbage(t *testing.T) {
	for _, key := range []string{"STEGO_MAX_UPLOAD_MB", "STEGO_RATE_LIMIT", "STEGO_LEGACY_SALT", "STEGO_PSNR_THRESHOLD"} {
		err := Default().ApplyEnv(envMap(map[string]string{key: "nope"}))
		assert.Error(t, err, key)
	}
}

func TestLoadFileOverlaysDefaults(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "stego.yaml")
	require.NoError(t, os.WriteFile(filename, []byte("port: \"7000\"\nrate_limit_per_minute: 3\n"), 0600))

	conf := Default()
	require.NoError(t, conf.LoadFile(filename))
	assert.Equal(t, "7000", conf.Port)
	assert.Equal(t, 3, conf.RateLimitPerMinute)
	assert.Equal(t, DefaultEmbedRateLimit, conf.EmbedRateLimitPerMinute)

	assert.Error(t, conf.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "stego.yaml")
	conf := Default()
	conf.LegacySalt = true
	conf.AllowedOrigins = []string{"https://example.test"}
	require.NoError(t, conf.Save(filename))

	loaded := &Config{}
	require.NoError(t, loaded.LoadFile(filename))
	assert.Equal(t, conf, loaded)
}

func TestLoadFromEnvironment(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "stego.yaml")
	require.NoError(t, os.WriteFile(filename, []byte("max_message_length: 42\n"), 0600))

	t.Setenv(EnvConfigFile, filename)
	t.Setenv("PORT", "8181")

	conf, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 42, conf.MaxMessageLength)
	assert.Equal(t, "8181", conf.Port)
}

func TestValidate(t *testing.T) {
	conf := Default()
	conf.MaxMessageLength = 0
	conf.RateLimitPerMinute = -1
	conf.MaxImagePixels = 0
	err := conf.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max message length")
	assert.Contains(t, err.Error(), "rate limits")
	assert.Contains(t, err.Error(), "max image pixels")
}
