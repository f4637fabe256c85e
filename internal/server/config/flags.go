package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/autonotes/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-u string   S3 access key
//	-p string   S3 secret key
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-m string   summarizer endpoint URL
//	-k string   summarizer API key
//	-w int      worker count
//	-q int      task queue size
//	-t int      processing timeout, minutes
//	-i int      sweep interval, minutes
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers in minutes and then converted
//     to time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-u", "-p", "-b", "-g", "-e", "-m", "-k", "-w", "-q", "-t", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")

	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&config.SummarizerEndpoint, "m", config.SummarizerEndpoint, "summarizer endpoint URL")
	fs.StringVar(&config.SummarizerAPIKey, "k", config.SummarizerAPIKey, "summarizer API key")

	fs.IntVar(&config.WorkerCount, "w", config.WorkerCount, "worker count")
	fs.IntVar(&config.QueueSize, "q", config.QueueSize, "task queue size")

	processingTimeout := fs.Int("t", int(config.ProcessingTimeout.Minutes()), "processing_timeout (in minutes)")
	sweepInterval := fs.Int("i", int(config.SweepInterval.Minutes()), "sweep_interval (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.ProcessingTimeout = time.Duration(*processingTimeout) * time.Minute
	config.SweepInterval = time.Duration(*sweepInterval) * time.Minute
}
