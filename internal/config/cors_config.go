package config

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

type DevServerConfig interface {
	GetDevServerAddr() string
	GetDevServerSecret() string
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() []string
	GetAllowedHeaders() []string
}

type AllowedOrigins map[string]struct{}
type nullValue = struct{}

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	_, ok := a[origin]
	return ok
}

// List returns the origins in a stable order
func (a AllowedOrigins) List() []string {
	origins := make([]string, 0, len(a))
	for k := range a {
		origins = append(origins, k)
	}
	sort.Strings(origins)
	return origins
}

func (a AllowedOrigins) String() string {
	return strings.Join(a.List(), ", ")
}

// DevServerVars configures the local fake auth backend started by `rentalctl devserver`
type DevServerVars struct {
	Port            string        `yaml:"port" env:"DEVSERVER_PORT" env-default:"8000"`
	Secret          string        `yaml:"secret" env:"DEVSERVER_SECRET" env-default:"dev-only-secret"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"1h"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env:"REFRESH_TOKEN_TTL" env-default:"720h"`
	Origins         []string      `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" env-default:"http://localhost:5173"`
	Methods         []string      `yaml:"allowed_methods" env:"ALLOWED_METHODS" env-default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	Headers         []string      `yaml:"allowed_headers" env:"ALLOWED_HEADERS" env-default:"Accept,Authorization,Content-Type,X-Request-ID"`
}

var _ DevServerConfig = DevServerVars{}

func (d DevServerVars) GetDevServerAddr() string {
	port := valueOr(d.Port, "8000")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (d DevServerVars) GetDevServerSecret() string {
	return valueOr(d.Secret, "dev-only-secret")
}

func (d DevServerVars) GetAccessTokenTTL() time.Duration {
	if d.AccessTokenTTL <= 0 {
		return time.Hour
	}
	return d.AccessTokenTTL
}

func (d DevServerVars) GetRefreshTokenTTL() time.Duration {
	if d.RefreshTokenTTL <= 0 {
		return 30 * 24 * time.Hour
	}
	return d.RefreshTokenTTL
}

func (d DevServerVars) GetAllowedOrigins() AllowedOrigins {
	origins := AllowedOrigins{}
	for _, o := range d.Origins {
		if o = strings.TrimSpace(o); o != "" {
			origins[o] = nullValue{}
		}
	}
	return origins
}

func (d DevServerVars) GetAllowedMethods() []string {
	methods := trimmed(d.Methods, strings.ToUpper)
	if len(methods) == 0 {
		return []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	return methods
}

func (d DevServerVars) GetAllowedHeaders() []string {
	headers := trimmed(d.Headers, http.CanonicalHeaderKey)
	if len(headers) == 0 {
		return []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"}
	}
	return headers
}

func trimmed(values []string, normalise func(string) string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, normalise(v))
		}
	}
	return out
}
