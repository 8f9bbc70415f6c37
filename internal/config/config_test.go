package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 10000, cfg.MaxPromptLength)
	assert.Equal(t, 300, cfg.OcrDPI)
	assert.Equal(t, 50, cfg.MinEmbeddedText)
	assert.Equal(t, "eng", cfg.OcrLanguage)
	assert.Equal(t, 1, cfg.Concurrency)
}

func TestLoadClampsRetryRange(t *testing.T) {
	t.Setenv("DOCMILL_GEMINI_MAX_RETRIES", "50")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.MaxRetries)

	t.Setenv("DOCMILL_GEMINI_MAX_RETRIES", "0")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.MaxRetries)
}

func TestLoadClampsTimeoutRange(t *testing.T) {
	t.Setenv("DOCMILL_GEMINI_TIMEOUT_SECONDS", "600")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 120*time.Second, cfg.Timeout)

	t.Setenv("DOCMILL_GEMINI_TIMEOUT_SECONDS", "1")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

func TestLoadIgnoresGarbageNumbers(t *testing.T) {
	t.Setenv("DOCMILL_OCR_DPI", "not-a-number")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.OcrDPI)
}
