package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"MAX_UPLOAD_SIZE_BYTES", "ALLOWED_ORIGINS", "JWT_SECRET", "REPORT_CACHE_TTL"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	assert.Equal(t, int64(10*1024*1024), cfg.MaxUploadSizeBytes)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins)
	assert.Equal(t, 15*time.Minute, cfg.ReportCacheTTL)
	assert.False(t, cfg.AuthEnabled())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MAX_UPLOAD_SIZE_BYTES", "2048")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("REPORT_CACHE_TTL", "90s")
	t.Setenv("RATE_LIMIT_PER_SECOND", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "not-a-number")

	cfg := FromEnv()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, int64(2048), cfg.MaxUploadSizeBytes)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 90*time.Second, cfg.ReportCacheTTL)
	assert.Equal(t, 2.5, cfg.RateLimitPerSecond)
	assert.Equal(t, 30, cfg.RateLimitBurst)
}

func TestValidate(t *testing.T) {
	valid := func() *AppConfig {
		return &AppConfig{
			Port:               "8000",
			DatabasePath:       "reports.db",
			MaxUploadSizeBytes: 1024,
			RateLimitPerSecond: 1,
			RateLimitBurst:     1,
		}
	}

	assert.NoError(t, valid().Validate())

	short := valid()
	short.JWTSecret = "too-short"
	assert.ErrorContains(t, short.Validate(), "JWT_SECRET")

	long := valid()
	long.JWTSecret = "0123456789abcdef0123456789abcdef"
	assert.NoError(t, long.Validate())

	broken := valid()
	broken.Port = ""
	broken.MaxUploadSizeBytes = 0
	err := broken.Validate()
	assert.ErrorContains(t, err, "PORT")
	assert.ErrorContains(t, err, "MAX_UPLOAD_SIZE_BYTES")
}
