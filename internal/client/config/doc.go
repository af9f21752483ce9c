// Package config loads runtime configuration for the EUTYPE CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. EUTYPE_* environment variables, read through viper.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   API base URL
//	-l string   SSO login URL
//	-d int      auto-save delay (milliseconds)
//	-s string   session cookie, name=value
//	-T          trace HTTP exchanges
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "3s" or integer
// nanoseconds. Absent keys keep their previous value:
//
//	{
//	  "api_base_url": "https://files.example/api",
//	  "login_url": "https://sso.example/login",
//	  "app_path": "/eutype",
//	  "validate_path": "/auth/validate",
//	  "autosave_delay": "3s",
//	  "http_timeout": "30s",
//	  "requests_per_second": 5,
//	  "session_cookie": "session=abc",
//	  "state_db_path": "eutype.db",
//	  "log_level": "info",
//	  "log_format": "console",
//	  "trace": false,
//	  "export_dir": "."
//	}
//
// Environment keys are the JSON keys upper-cased with the EUTYPE_ prefix,
// e.g. EUTYPE_AUTOSAVE_DELAY=5s.
package config
