package config

import "time"

type SessionConfig interface {
	GetRefreshWindow() time.Duration
	GetLoginPath() string
}

type SessionVars struct {
	RefreshWindow time.Duration `yaml:"refresh_window" env:"REFRESH_WINDOW" env-default:"5m" env-description:"remaining lifetime below which access tokens are refreshed before use"`
	LoginPath     string        `yaml:"login_path" env:"LOGIN_PATH" env-default:"/login"`
}

var _ SessionConfig = SessionVars{}

func (s SessionVars) GetRefreshWindow() time.Duration {
	if s.RefreshWindow <= 0 {
		return 5 * time.Minute
	}
	return s.RefreshWindow
}

func (s SessionVars) GetLoginPath() string {
	return valueOr(s.LoginPath, "/login")
}
