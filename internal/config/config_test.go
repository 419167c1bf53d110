package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 0.75, cfg.Classifier.RouteThreshold)
	assert.Equal(t, 0.50, cfg.Classifier.ConfirmThreshold)
	assert.Equal(t, 10, cfg.Session.HistoryCapacity)
	assert.Equal(t, 3, cfg.Recovery.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.GetBackoffBase())
	assert.Equal(t, 5*time.Second, cfg.GetBackoffCap())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Classifier, cfg.Classifier)
}

func TestLoadOverridesAndValidation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fairway.yaml")

	content := []byte("classifier:\n  route_threshold: 0.8\n  confirm_threshold: 0.6\nsession:\n  history_capacity: 5\n")
	require.NoError(t, os.WriteFile(path, content, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.8, cfg.Classifier.RouteThreshold)
	assert.Equal(t, 5, cfg.Session.HistoryCapacity)

	// Inverted thresholds are rejected.
	bad := []byte("classifier:\n  route_threshold: 0.4\n  confirm_threshold: 0.6\n")
	require.NoError(t, os.WriteFile(path, bad, 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FAIRWAY_MODEL", "gemini-test")
	t.Setenv("FAIRWAY_HISTORY_CAPACITY", "7")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "gemini-test", cfg.LLM.Model)
	assert.Equal(t, 7, cfg.Session.HistoryCapacity)
}
