package config

import "time"

// Config holds runtime settings for the EUTYPE CLI.
//
// Units: AutoSaveDelay and HTTPTimeout are time.Duration; a zero HTTPTimeout
// means no client-side timeout. RequestsPerSecond of 0 disables the limiter.
type Config struct {
	APIBaseURL        string
	LoginURL          string
	AppPath           string
	ValidatePath      string
	AutoSaveDelay     time.Duration
	HTTPTimeout       time.Duration
	RequestsPerSecond float64
	SessionCookie     string
	StateDBPath       string
	LogLevel          string
	LogFormat         string
	Trace             bool
	ExportDir         string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:30500/api"
	c.LoginURL = "http://localhost:30090/login"
	c.AppPath = "/eutype"
	c.ValidatePath = "/auth/validate"
	c.AutoSaveDelay = 3 * time.Second
	c.HTTPTimeout = 0
	c.RequestsPerSecond = 0
	c.SessionCookie = ""
	c.StateDBPath = "eutype.db"
	c.LogLevel = "info"
	c.LogFormat = "console"
	c.Trace = false
	c.ExportDir = "."
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
