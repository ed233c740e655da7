package config

import (
	"flag"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/modcatalog/internal/flagx"
)

var knownFlags = []string{"-l", "-d", "-u", "-p", "-b", "-g", "-e", "-w", "-k", "-v", "-i", "-t", "-log"}

// parseFlags populates Config fields from command-line flags.
//
//	-l string   local SQLite database file
//	-d string   remote PostgreSQL DSN (empty runs local-only)
//	-u string   S3 access key
//	-p string   S3 secret key
//	-b string   S3 bucket for images
//	-g string   S3 region
//	-e string   S3 endpoint URL
//	-w string   public base URL for stored images
//	-k string   vision API key
//	-v string   vision API base URL
//	-i int      online check interval in seconds
//	-t int      remote call timeout in seconds
//	-log string log level (debug, info, warn, error)
//
// os.Args is filtered with flagx.FilterArgs so -c/-config and -env, handled
// by other layers, do not trip the parser.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.LocalDSN, "l", cfg.LocalDSN, "local SQLite database file")
	fs.StringVar(&cfg.RemoteDSN, "d", cfg.RemoteDSN, "remote PostgreSQL DSN")
	fs.StringVar(&cfg.S3AccessKey, "u", cfg.S3AccessKey, "S3 access key")
	fs.StringVar(&cfg.S3SecretKey, "p", cfg.S3SecretKey, "S3 secret key")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "S3 bucket for images")
	fs.StringVar(&cfg.S3Region, "g", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3BaseEndpoint, "e", cfg.S3BaseEndpoint, "S3 endpoint URL")
	fs.StringVar(&cfg.S3PublicBaseURL, "w", cfg.S3PublicBaseURL, "public base URL for stored images")
	fs.StringVar(&cfg.VisionAPIKey, "k", cfg.VisionAPIKey, "vision API key")
	fs.StringVar(&cfg.VisionBaseURL, "v", cfg.VisionBaseURL, "vision API base URL")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	remoteTimeout := fs.Int("t", int(cfg.RemoteTimeout.Seconds()), "remote call timeout (in seconds)")
	fs.StringVar(&cfg.LogLevel, "log", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Only explicit flags override, so sub-second values from earlier layers
	// survive.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
		case "t":
			cfg.RemoteTimeout = time.Duration(*remoteTimeout) * time.Second
		}
	})
}
