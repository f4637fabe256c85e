package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr":             "www.example:9000",
		"database_dsn":              "notes_dsn",
		"s3_access_key":             "user",
		"s3_secret_key":             "password",
		"s3_bucket":                 "bucket",
		"s3_region":                 "region",
		"s3_base_endpoint":          "base_endpoint",
		"summarizer_endpoint":       "http://summarizer",
		"summarizer_api_key":        "apikey",
		"summarizer_timeout":        "45s",
		"summarizer_max_attempts":   5,
		"summarizer_max_concurrent": 2,
		"worker_count":              8,
		"queue_size":                512,
		"processing_timeout":        "15m",
		"sweep_interval":            "2m",
		"reclaim_interval":          "30m",
		"reclaim_grace":             "48h",
		"cache_ttl":                 "1m",
		"cache_processing_ttl":      "3s",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.EndpointAddr)
		assert.Equal(t, "notes_dsn", cfg.DatabaseDSN)
		assert.Equal(t, "user", cfg.S3AccessKey)
		assert.Equal(t, "password", cfg.S3SecretKey)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "region", cfg.S3Region)
		assert.Equal(t, "base_endpoint", cfg.S3BaseEndpoint)
		assert.Equal(t, "http://summarizer", cfg.SummarizerEndpoint)
		assert.Equal(t, "apikey", cfg.SummarizerAPIKey)
		assert.Equal(t, 45*time.Second, cfg.SummarizerTimeout)
		assert.Equal(t, 5, cfg.SummarizerMaxAttempts)
		assert.Equal(t, 2, cfg.SummarizerMaxConcurrent)
		assert.Equal(t, 8, cfg.WorkerCount)
		assert.Equal(t, 512, cfg.QueueSize)
		assert.Equal(t, 15*time.Minute, cfg.ProcessingTimeout)
		assert.Equal(t, 2*time.Minute, cfg.SweepInterval)
		assert.Equal(t, 30*time.Minute, cfg.ReclaimInterval)
		assert.Equal(t, 48*time.Hour, cfg.ReclaimGrace)
		assert.Equal(t, 1*time.Minute, cfg.CacheTTL)
		assert.Equal(t, 3*time.Second, cfg.CacheProcessingTTL)
	})

	t.Run("no CONFIG and no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			EndpointAddr:      "defaults:1234",
			DatabaseDSN:       "notes_dsn",
			S3AccessKey:       "s3access",
			S3SecretKey:       "s3secret",
			S3Bucket:          "s3bucket",
			S3Region:          "s3region",
			S3BaseEndpoint:    "s3baseendpoint",
			WorkerCount:       4,
			QueueSize:         256,
			ProcessingTimeout: 10 * time.Minute,
			SweepInterval:     1 * time.Minute,
		}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.EndpointAddr)
		assert.Equal(t, "notes_dsn", cfg.DatabaseDSN)
		assert.Equal(t, "s3access", cfg.S3AccessKey)
		assert.Equal(t, "s3secret", cfg.S3SecretKey)
		assert.Equal(t, "s3bucket", cfg.S3Bucket)
		assert.Equal(t, "s3region", cfg.S3Region)
		assert.Equal(t, "s3baseendpoint", cfg.S3BaseEndpoint)
		assert.Equal(t, 4, cfg.WorkerCount)
		assert.Equal(t, 256, cfg.QueueSize)
		assert.Equal(t, 10*time.Minute, cfg.ProcessingTimeout)
		assert.Equal(t, 1*time.Minute, cfg.SweepInterval)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
