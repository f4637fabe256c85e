package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/autonotes/internal/flagx"
	"github.com/dmitrijs2005/autonotes/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "1s" and integer nanoseconds.
//
// This struct is an intermediate DTO (Data Transfer Object) used only for
// reading JSON configuration files. After unmarshalling, its fields are
// copied into the runtime Config struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddr            string         `json:"endpoint_addr"`
	DatabaseDSN             string         `json:"database_dsn"`
	S3AccessKey             string         `json:"s3_access_key"`
	S3SecretKey             string         `json:"s3_secret_key"`
	S3Bucket                string         `json:"s3_bucket"`
	S3Region                string         `json:"s3_region"`
	S3BaseEndpoint          string         `json:"s3_base_endpoint"`
	SummarizerEndpoint      string         `json:"summarizer_endpoint"`
	SummarizerAPIKey        string         `json:"summarizer_api_key"`
	SummarizerTimeout       timex.Duration `json:"summarizer_timeout"`
	SummarizerMaxAttempts   int            `json:"summarizer_max_attempts"`
	SummarizerMaxConcurrent int            `json:"summarizer_max_concurrent"`
	WorkerCount             int            `json:"worker_count"`
	QueueSize               int            `json:"queue_size"`
	ProcessingTimeout       timex.Duration `json:"processing_timeout"`
	SweepInterval           timex.Duration `json:"sweep_interval"`
	ReclaimInterval         timex.Duration `json:"reclaim_interval"`
	ReclaimGrace            timex.Duration `json:"reclaim_grace"`
	CacheTTL                timex.Duration `json:"cache_ttl"`
	CacheProcessingTTL      timex.Duration `json:"cache_processing_ttl"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The lookup order for the JSON file path is:
//
//	The -c or -config command-line flags.
//	If it is not set, no JSON file is loaded.
//
// If the file path is found, parseJson attempts to read and unmarshal it
// into a JsonConfig. The resulting values are copied into the target Config.
// If the file cannot be read or contains invalid JSON, the function panics.
//
// The caller is expected to merge these values with defaults and
// command-line flags as part of the full configuration process.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.S3AccessKey = c.S3AccessKey
	config.S3SecretKey = c.S3SecretKey
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.SummarizerEndpoint = c.SummarizerEndpoint
	config.SummarizerAPIKey = c.SummarizerAPIKey
	config.SummarizerTimeout = time.Duration(c.SummarizerTimeout.Duration)
	config.SummarizerMaxAttempts = c.SummarizerMaxAttempts
	config.SummarizerMaxConcurrent = c.SummarizerMaxConcurrent
	config.WorkerCount = c.WorkerCount
	config.QueueSize = c.QueueSize
	config.ProcessingTimeout = time.Duration(c.ProcessingTimeout.Duration)
	config.SweepInterval = time.Duration(c.SweepInterval.Duration)
	config.ReclaimInterval = time.Duration(c.ReclaimInterval.Duration)
	config.ReclaimGrace = time.Duration(c.ReclaimGrace.Duration)
	config.CacheTTL = time.Duration(c.CacheTTL.Duration)
	config.CacheProcessingTTL = time.Duration(c.CacheProcessingTTL.Duration)
}
