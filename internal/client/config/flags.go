package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/eutype/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   API base URL
//	-l string   SSO login URL
//	-d int      auto-save delay in milliseconds
//	-s string   session cookie (name=value)
//	-T          dump HTTP exchanges to stderr
//
// Only these flags are parsed; everything else in os.Args is ignored.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-l", "-d", "-s"}, []string{"-T"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "API base URL")
	fs.StringVar(&cfg.LoginURL, "l", cfg.LoginURL, "SSO login URL")
	delay := fs.Int("d", int(cfg.AutoSaveDelay.Milliseconds()), "auto-save delay (in milliseconds)")
	fs.StringVar(&cfg.SessionCookie, "s", cfg.SessionCookie, "session cookie as name=value")
	fs.BoolVar(&cfg.Trace, "T", cfg.Trace, "dump HTTP requests and responses")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.AutoSaveDelay = time.Duration(*delay) * time.Millisecond
}
