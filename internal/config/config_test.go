package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, 60*time.Second, cfg.Closure.FirstPromptThreshold)
	assert.Equal(t, 180*time.Second, cfg.Closure.CloseThreshold)
	assert.Equal(t, 300*time.Second, cfg.Closure.FinalCloseThreshold)
	assert.Equal(t, 1, cfg.Feedback.MinRating)
	assert.Equal(t, 5, cfg.Feedback.MaxRating)

	assert.Same(t, cfg, Get())
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  addr: ":9090"
closure:
  first_prompt_threshold: 30s
  close_threshold: 90s
  final_close_threshold: 150s
feedback:
  min_rating: 1
  max_rating: 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Closure.FirstPromptThreshold)
	assert.Equal(t, 90*time.Second, cfg.Closure.CloseThreshold)
	assert.Equal(t, 10, cfg.Feedback.MaxRating)

	// Untouched keys keep their defaults
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
}

func TestLoad_InvalidThresholds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
closure:
  first_prompt_threshold: 120s
  close_threshold: 60s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "thresholds must be increasing")
}

func TestLoad_InvalidRatingRange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
feedback:
  min_rating: 5
  max_rating: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rating range is empty")
}
