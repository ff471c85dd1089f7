package authtest

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jrsteele09/go-rental-session/authapi"
	"github.com/jrsteele09/go-rental-session/token/jwt"
	"github.com/jrsteele09/go-rental-session/token/keys"
	"github.com/jrsteele09/go-rental-session/users"
	fakeuserrepo "github.com/jrsteele09/go-rental-session/users/repofake"
)

const (
	DefaultSecret     = "authtest-secret"
	DefaultAccessTTL  = time.Hour
	DefaultRefreshTTL = 30 * 24 * time.Hour
)

// Backend is an in-process stand-in for the marketplace auth API
type Backend struct {
	users     users.UserRepo
	creator   *jwt.Creator
	inspector *jwt.Inspector
	revoked   jwt.RevokedTokenCache
	router    chi.Router

	secret         string
	accessTTL      time.Duration
	refreshTTL     time.Duration
	allowedOrigins []string
	allowedMethods []string
	allowedHeaders []string
	logRoutes      bool

	refreshCalls atomic.Int64
	failRefresh  atomic.Bool
	rejectAlways atomic.Bool
}

type Option func(*Backend)

func WithSecret(secret string) Option {
	return func(b *Backend) {
		if secret != "" {
			b.secret = secret
		}
	}
}

func WithAccessTTL(ttl time.Duration) Option {
	return func(b *Backend) {
		b.accessTTL = ttl
	}
}

func WithRefreshTTL(ttl time.Duration) Option {
	return func(b *Backend) {
		b.refreshTTL = ttl
	}
}

// WithAllowedOrigins enables CORS for browser front ends
func WithAllowedOrigins(origins ...string) Option {
	return func(b *Backend) {
		b.allowedOrigins = origins
	}
}

// WithCORS overrides the methods and headers allowed cross-origin. Empty
// lists keep the defaults.
func WithCORS(methods, headers []string) Option {
	return func(b *Backend) {
		if len(methods) > 0 {
			b.allowedMethods = methods
		}
		if len(headers) > 0 {
			b.allowedHeaders = headers
		}
	}
}

// WithRouteLogging logs every request
func WithRouteLogging() Option {
	return func(b *Backend) {
		b.logRoutes = true
	}
}

// New creates a Backend with an empty user repository
func New(options ...Option) *Backend {
	b := &Backend{
		users:      fakeuserrepo.NewFakeUserRepo(),
		revoked:    jwt.NewInMemoryRevokedTokenCache(),
		secret:     DefaultSecret,
		accessTTL:  DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,

		allowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		allowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
	}
	for _, opt := range options {
		opt(b)
	}

	signer := keys.NewHMACSigner(b.secret)
	b.creator = jwt.NewCreator(signer, b.accessTTL, b.refreshTTL)
	b.inspector = jwt.NewInspector(signer, b.revoked)
	b.router = b.routes()
	return b
}

func (b *Backend) routes() chi.Router {
	r := chi.NewRouter()
	if len(b.allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: b.allowedOrigins,
			AllowedMethods: b.allowedMethods,
			AllowedHeaders: b.allowedHeaders,
			MaxAge:         60 * 15,
		}))
	}
	if b.logRoutes {
		r.Use(LoggingMiddleware)
	}

	r.Post(authapi.RouteLogin, b.LoginHandler())
	r.Post(authapi.RouteRegister, b.RegisterHandler())
	r.Post(authapi.RouteRefresh, b.RefreshHandler())

	r.Group(func(rr chi.Router) {
		rr.Use(b.RequireAuth)
		rr.Post(authapi.RouteLogout, b.LogoutHandler())
		rr.Get(authapi.RouteMe, b.MeHandler())
		rr.Get(authapi.RouteValidate, b.ValidateHandler())
		rr.Delete(authapi.RouteDeleteAccount, b.DeleteAccountHandler())
		rr.HandleFunc("/api/*", b.EchoHandler())
	})
	return r
}

func (b *Backend) Handler() http.Handler {
	return b.router
}

// AddUser registers a user directly, bypassing the HTTP API
func (b *Backend) AddUser(username, email, password string, role users.RoleType) (*users.User, error) {
	return b.createUser(username, email, password, role)
}

// IssueTokens returns a fresh access/refresh pair for user
func (b *Backend) IssueTokens(user *users.User) (string, string, error) {
	accessToken, err := b.creator.CreateAccessToken(user)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := b.creator.CreateRefreshToken(user)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// SetAccessTTL changes the lifetime of access tokens issued from now on
func (b *Backend) SetAccessTTL(ttl time.Duration) {
	b.creator.SetAccessTTL(ttl)
}

// FailRefresh makes /auth/refresh answer 401 while set
func (b *Backend) FailRefresh(fail bool) {
	b.failRefresh.Store(fail)
}

// RejectAlways makes every protected route answer 401 while set
func (b *Backend) RejectAlways(reject bool) {
	b.rejectAlways.Store(reject)
}

// RefreshCalls is the number of requests received on /auth/refresh
func (b *Backend) RefreshCalls() int {
	return int(b.refreshCalls.Load())
}

func (b *Backend) Users() users.UserRepo {
	return b.users
}
