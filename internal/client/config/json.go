package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/eutype/internal/flagx"
	"github.com/dmitrijs2005/eutype/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields distinguish "absent" from "zero" so a partial file only overrides
// what it names.
type JsonConfig struct {
	APIBaseURL        *string         `json:"api_base_url"`
	LoginURL          *string         `json:"login_url"`
	AppPath           *string         `json:"app_path"`
	ValidatePath      *string         `json:"validate_path"`
	AutoSaveDelay     *timex.Duration `json:"autosave_delay"`
	HTTPTimeout       *timex.Duration `json:"http_timeout"`
	RequestsPerSecond *float64        `json:"requests_per_second"`
	SessionCookie     *string         `json:"session_cookie"`
	StateDBPath       *string         `json:"state_db_path"`
	LogLevel          *string         `json:"log_level"`
	LogFormat         *string         `json:"log_format"`
	Trace             *bool           `json:"trace"`
	ExportDir         *string         `json:"export_dir"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Without one it does nothing. Read or decode errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFile()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}
	jc.apply(cfg)
}

func (jc *JsonConfig) apply(cfg *Config) {
	setIf(&cfg.APIBaseURL, jc.APIBaseURL)
	setIf(&cfg.LoginURL, jc.LoginURL)
	setIf(&cfg.AppPath, jc.AppPath)
	setIf(&cfg.ValidatePath, jc.ValidatePath)
	setIf(&cfg.RequestsPerSecond, jc.RequestsPerSecond)
	setIf(&cfg.SessionCookie, jc.SessionCookie)
	setIf(&cfg.StateDBPath, jc.StateDBPath)
	setIf(&cfg.LogLevel, jc.LogLevel)
	setIf(&cfg.LogFormat, jc.LogFormat)
	setIf(&cfg.Trace, jc.Trace)
	setIf(&cfg.ExportDir, jc.ExportDir)
	if jc.AutoSaveDelay != nil {
		cfg.AutoSaveDelay = jc.AutoSaveDelay.Duration
	}
	if jc.HTTPTimeout != nil {
		cfg.HTTPTimeout = jc.HTTPTimeout.Duration
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
