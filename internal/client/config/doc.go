// Package config loads runtime configuration for the ajenda CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file (see parseFile) selected via -c or -config. Files
//     ending in .yaml or .yml are read as YAML, anything else as JSON.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the calendar backend
//	-t int      request timeout (seconds)
//	-s string   session database DSN
//	-i int      token expiry check interval (seconds)
//	-l string   log level: debug, info, warn or error
//
// # File schema
//
// Durations use timex.Duration, so they can be strings like "30s" or integer
// nanoseconds:
//
//	server_url: http://localhost:8080
//	request_timeout: 30s
//	session_dsn: "file:ajenda-session?mode=memory&cache=shared"
//	expiry_check_interval: 30s
//	log_level: info
//	publish:
//	  endpoint: http://localhost:9000
//	  region: us-east-1
//	  bucket: calendars
//	  link_ttl: 24h
//
// Object storage credentials are optional; when absent the default AWS
// credential chain is used.
package config
