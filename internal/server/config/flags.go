package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/libertalk/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g. ":5000")
//	-d string   storage DSN
//	-s string   token HMAC secret
//	-t int      session validity, minutes
//	-m string   media backend (local|s3)
//	-u string   upload directory
//	-l int      max upload size, bytes
//	-v int      max voice duration, seconds
//	-r uint     persistence retries
//	-k string   S3 access key
//	-p string   S3 secret key
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint
//
// os.Args is filtered with flagx.FilterArgs first so -c/-config and unknown
// flags do not break parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-m", "-u", "-l", "-v", "-r", "-k", "-p", "-b", "-g", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "storage DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionValidity := fs.Int("t", int(config.SessionValidityDuration.Minutes()), "session validity (in minutes)")

	fs.StringVar(&config.MediaBackend, "m", config.MediaBackend, "media backend (local|s3)")
	fs.StringVar(&config.UploadDir, "u", config.UploadDir, "upload directory")
	fs.Int64Var(&config.MaxUploadSize, "l", config.MaxUploadSize, "max upload size (in bytes)")

	maxVoice := fs.Int("v", int(config.MaxVoiceDuration.Seconds()), "max voice message duration (in seconds)")

	fs.Uint64Var(&config.PersistenceRetries, "r", config.PersistenceRetries, "persistence retries")
	fs.StringVar(&config.S3AccessKey, "k", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionValidityDuration = time.Duration(*sessionValidity) * time.Minute
	config.MaxVoiceDuration = time.Duration(*maxVoice) * time.Second
}
