package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ajenda/ajenda/internal/flagx"
)

var knownFlags = []string{"-a", "-t", "-s", "-i", "-l"}

// parseFlags populates Config fields from command-line flags.
//
// Only the flags listed in knownFlags are considered; everything else in
// os.Args is filtered out with flagx.FilterArgs first.
func parseFlags(cfg *Config) error {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("ajenda", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the calendar backend")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.SessionDSN, "s", cfg.SessionDSN, "session database DSN")
	interval := fs.Int("i", int(cfg.ExpiryCheckInterval.Seconds()), "token expiry check interval (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	var errs []error
	fs.Visit(func(f *flag.Flag) {
		var err error
		switch f.Name {
		case "t":
			cfg.RequestTimeout, err = seconds("-t", *timeout)
		case "i":
			cfg.ExpiryCheckInterval, err = seconds("-i", *interval)
		}
		errs = append(errs, err)
	})
	return errors.Join(errs...)
}

func seconds(name string, n int) (time.Duration, error) {
	if n <= 0 {
		return 0, fmt.Errorf("parse flags: %s must be a positive number of seconds", name)
	}
	return time.Duration(n) * time.Second, nil
}
