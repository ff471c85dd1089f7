package config

import "time"

type EnvVars struct {
	AppName     string        `yaml:"app_name" env:"APP_NAME" env-default:"Rental Session" env-description:"name shown in the CLI banner"`
	Env         string        `yaml:"env" env:"ENV" env-default:"DEV" env-description:"DEV enables console logging"`
	APIBaseURL  string        `yaml:"api_base_url" env:"API_BASE_URL" env-default:"http://localhost:8000" env-description:"base URL of the marketplace API"`
	HTTPTimeout time.Duration `yaml:"http_timeout" env:"HTTP_TIMEOUT" env-default:"15s"`
	LogLevel    string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetAppName() string {
	return valueOr(e.AppName, "Rental Session")
}

func (e EnvVars) GetEnv() string {
	return valueOr(e.Env, "DEV")
}

// GetAPIBaseURL returns the base URL relative API endpoints are resolved against
func (e EnvVars) GetAPIBaseURL() string {
	return valueOr(e.APIBaseURL, "http://localhost:8000")
}

func (e EnvVars) GetHTTPTimeout() time.Duration {
	if e.HTTPTimeout <= 0 {
		return 15 * time.Second
	}
	return e.HTTPTimeout
}

func (e EnvVars) GetLogLevel() string {
	return valueOr(e.LogLevel, "info")
}

func valueOr(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
