package session

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-rental-session/internal/errors"
	"github.com/jrsteele09/go-rental-session/token"
	"github.com/jrsteele09/go-rental-session/users"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// Credentials is the credential pair plus the metadata cached alongside it
type Credentials struct {
	AccessToken  string
	RefreshToken string
	Role         users.RoleType
	Username     string
}

// Empty reports whether no access token is held
func (c Credentials) Empty() bool {
	return c.AccessToken == ""
}

// OAuth2Token returns the access token in x/oauth2 form with its decoded expiry
func (c Credentials) OAuth2Token() *oauth2.Token {
	exp, _ := token.Expiry(c.AccessToken)
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: c.RefreshToken,
		Expiry:       exp,
	}
}

func (c Credentials) values() Values {
	return Values{
		KeyAccessToken:  c.AccessToken,
		KeyRefreshToken: c.RefreshToken,
		KeyRole:         string(c.Role),
		KeyUsername:     c.Username,
	}
}

func credentialsFrom(v Values) Credentials {
	return Credentials{
		AccessToken:  v[KeyAccessToken],
		RefreshToken: v[KeyRefreshToken],
		Role:         users.RoleType(v[KeyRole]),
		Username:     v[KeyUsername],
	}
}

// Session holds the single credential set of a client. Reads are served from
// memory; writes go to the Store first.
type Session struct {
	store         Store
	refreshWindow time.Duration

	lock    sync.RWMutex
	creds   Credentials
	version uint64
}

type Option func(*Session)

// WithRefreshWindow overrides token.ProactiveRefreshWindow for State
func WithRefreshWindow(window time.Duration) Option {
	return func(s *Session) {
		if window > 0 {
			s.refreshWindow = window
		}
	}
}

// Open loads any persisted credentials from store
func Open(ctx context.Context, store Store, options ...Option) (*Session, error) {
	s := &Session{
		store:         store,
		refreshWindow: token.ProactiveRefreshWindow,
	}
	for _, opt := range options {
		opt(s)
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the store, picking up writes made by other processes
func (s *Session) Reload(ctx context.Context) error {
	values, err := s.store.Get(ctx)
	if err != nil {
		return apperrors.Wrapf(err, "[session Reload] load")
	}
	creds := credentialsFrom(values)
	if creds.AccessToken != "" && (creds.RefreshToken == "" || creds.Role == "") {
		log.Warn().Str("username", creds.Username).Msg("Stored session is incomplete")
	}

	s.lock.Lock()
	s.creds = creds
	s.version++
	s.lock.Unlock()
	return nil
}

// Set stores a new credential set, replacing any previous one
func (s *Session) Set(ctx context.Context, accessToken, refreshToken string, role users.RoleType, username string) error {
	return s.write(ctx, Credentials{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Role:         role,
		Username:     username,
	})
}

// ReplaceAccessToken swaps in a refreshed access token, keeping the refresh
// token and metadata.
func (s *Session) ReplaceAccessToken(ctx context.Context, accessToken string) error {
	creds := s.Credentials()
	if creds.RefreshToken == "" {
		return apperrors.Wrapf(apperrors.ErrNotAuthenticated, "[session ReplaceAccessToken] no session")
	}
	creds.AccessToken = accessToken
	return s.write(ctx, creds)
}

func (s *Session) write(ctx context.Context, creds Credentials) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.store.Set(ctx, creds.values()); err != nil {
		return apperrors.Wrapf(storeError(err), "[session] store set")
	}
	s.creds = creds
	s.version++
	log.Debug().Str("username", creds.Username).Str("role", string(creds.Role)).Msg("Session stored")
	return nil
}

// Clear removes all credentials. The in-memory copy is dropped even when the
// store fails, so a failed clear never leaves a usable session behind.
func (s *Session) Clear(ctx context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.creds = Credentials{}
	s.version++
	if err := s.store.Clear(ctx); err != nil {
		return apperrors.Wrapf(storeError(err), "[session] store clear")
	}
	log.Debug().Msg("Session cleared")
	return nil
}

func (s *Session) Credentials() Credentials {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.creds
}

// Version changes every time the credentials are loaded, replaced or cleared
func (s *Session) Version() uint64 {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.version
}

func (s *Session) AccessToken() string {
	return s.Credentials().AccessToken
}

func (s *Session) RefreshToken() string {
	return s.Credentials().RefreshToken
}

func (s *Session) Role() users.RoleType {
	return s.Credentials().Role
}

func (s *Session) Username() string {
	return s.Credentials().Username
}

// IsAuthenticated reports whether an access token and a role are held. It
// does not look at expiry; that is decided when a request is made.
func (s *Session) IsAuthenticated() bool {
	creds := s.Credentials()
	return creds.AccessToken != "" && creds.Role != ""
}

// State classifies the current access token
func (s *Session) State() token.State {
	return token.StateOf(s.AccessToken(), s.refreshWindow)
}

// RefreshWindow is the near-expiry window used by State
func (s *Session) RefreshWindow() time.Duration {
	return s.refreshWindow
}

func storeError(err error) error {
	if apperrors.Is(err, apperrors.ErrStoreUnavailable) {
		return err
	}
	return apperrors.Join(apperrors.ErrStoreUnavailable, err)
}
