package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const configPathEnvVar = "CONFIG_PATH"

type Config interface {
	EnvConfig
	SessionConfig
	StoreConfig
	DevServerConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetAPIBaseURL() string
	GetHTTPTimeout() time.Duration
	GetLogLevel() string
}

type mainConfig struct {
	EnvVars   `yaml:",inline"`
	Session   SessionVars   `yaml:"session"`
	Store     StoreVars     `yaml:"store"`
	DevServer DevServerVars `yaml:"devserver"`
}

var _ Config = (*mainConfig)(nil)

// New reads the configuration from the environment. When CONFIG_PATH names a
// YAML file it is read first and the environment overrides it.
func New() (Config, error) {
	c := &mainConfig{}
	if path := os.Getenv(configPathEnvVar); path != "" {
		if err := cleanenv.ReadConfig(path, c); err != nil {
			return nil, fmt.Errorf("[config New] read %s: %w", path, err)
		}
		return c, nil
	}
	if err := cleanenv.ReadEnv(c); err != nil {
		return nil, fmt.Errorf("[config New] read env: %w", err)
	}
	return c, nil
}

// Describe returns the list of supported environment variables
func Describe() string {
	desc, err := cleanenv.GetDescription(&mainConfig{}, nil)
	if err != nil {
		return err.Error()
	}
	return desc
}

func (c *mainConfig) GetRefreshWindow() time.Duration { return c.Session.GetRefreshWindow() }
func (c *mainConfig) GetLoginPath() string { return c.Session.GetLoginPath() }
func (c *mainConfig) GetStoreType() StoreType { return c.Store.GetStoreType() }
func (c *mainConfig) GetSessionFile() string { return c.Store.GetSessionFile() }
func (c *mainConfig) GetSessionPassphrase() string { return c.Store.GetSessionPassphrase() }
func (c *mainConfig) GetRedisAddr() string { return c.Store.GetRedisAddr() }
func (c *mainConfig) GetRedisPassword() string { return c.Store.GetRedisPassword() }
func (c *mainConfig) GetRedisDB() int { return c.Store.GetRedisDB() }
func (c *mainConfig) GetRedisKey() string { return c.Store.GetRedisKey() }
func (c *mainConfig) GetDevServerAddr() string { return c.DevServer.GetDevServerAddr() }
func (c *mainConfig) GetDevServerSecret() string { return c.DevServer.GetDevServerSecret() }
func (c *mainConfig) GetAccessTokenTTL() time.Duration { return c.DevServer.GetAccessTokenTTL() }
func (c *mainConfig) GetRefreshTokenTTL() time.Duration { return c.DevServer.GetRefreshTokenTTL() }
func (c *mainConfig) GetAllowedOrigins() AllowedOrigins { return c.DevServer.GetAllowedOrigins() }
func (c *mainConfig) GetAllowedMethods() []string { return c.DevServer.GetAllowedMethods() }
func (c *mainConfig) GetAllowedHeaders() []string { return c.DevServer.GetAllowedHeaders() }
