package config

import (
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment key, e.g. EUTYPE_API_BASE_URL.
const EnvPrefix = "EUTYPE"

// parseEnv overlays Config with EUTYPE_* environment variables. Only
// variables that are set override earlier values.
func parseEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}

	str("api_base_url", &cfg.APIBaseURL)
	str("login_url", &cfg.LoginURL)
	str("app_path", &cfg.AppPath)
	str("validate_path", &cfg.ValidatePath)
	str("session_cookie", &cfg.SessionCookie)
	str("state_db_path", &cfg.StateDBPath)
	str("log_level", &cfg.LogLevel)
	str("log_format", &cfg.LogFormat)
	str("export_dir", &cfg.ExportDir)

	if v.IsSet("autosave_delay") {
		cfg.AutoSaveDelay = v.GetDuration("autosave_delay")
	}
	if v.IsSet("http_timeout") {
		cfg.HTTPTimeout = v.GetDuration("http_timeout")
	}
	if v.IsSet("requests_per_second") {
		cfg.RequestsPerSecond = v.GetFloat64("requests_per_second")
	}
	if v.IsSet("trace") {
		cfg.Trace = v.GetBool("trace")
	}
}
