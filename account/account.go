package account

import (
	"context"
	"io"
	"net/http"

	"github.com/jrsteele09/go-rental-session/authapi"
	"github.com/jrsteele09/go-rental-session/authfetch"
	apperrors "github.com/jrsteele09/go-rental-session/internal/errors"
	"github.com/jrsteele09/go-rental-session/session"
	"github.com/jrsteele09/go-rental-session/token"
	"github.com/jrsteele09/go-rental-session/users"
	"github.com/rs/zerolog/log"
)

// Service runs the account flows that create, use and end a session
type Service struct {
	api     *authapi.Client
	fetch   *authfetch.Client
	session *session.Session
}

func New(api *authapi.Client, fetch *authfetch.Client) *Service {
	return &Service{
		api:     api,
		fetch:   fetch,
		session: fetch.Session(),
	}
}

// Login authenticates and stores the resulting session
func (s *Service) Login(ctx context.Context, email, password string) (*session.Credentials, error) {
	result, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[account Login]")
	}
	return s.store(ctx, result)
}

// Register creates an account and stores the resulting session
func (s *Service) Register(ctx context.Context, req authapi.RegisterRequest) (*session.Credentials, error) {
	result, err := s.api.Register(ctx, req)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[account Register]")
	}
	return s.store(ctx, result)
}

func (s *Service) store(ctx context.Context, result *authapi.LoginResult) (*session.Credentials, error) {
	role, source := token.ResolveRole(result.Tokens.AccessToken, result.User.Role)
	if source == token.RoleDefaulted {
		log.Warn().
			Str("username", result.User.Username).
			Str("user_role", result.User.Role).
			Msgf("No valid role in token or user record, defaulting to %s", role)
	}

	if err := s.session.Set(ctx, result.Tokens.AccessToken, result.Tokens.RefreshToken, role, result.User.Username); err != nil {
		return nil, err
	}
	log.Info().Str("username", result.User.Username).Str("role", role.String()).Str("role_source", string(source)).Msg("Logged in")

	creds := s.session.Credentials()
	return &creds, nil
}

// Logout tells the server the session is over, then clears it whatever the
// server answered.
func (s *Service) Logout(ctx context.Context) error {
	if accessToken := s.session.AccessToken(); accessToken != "" {
		if err := s.api.Logout(ctx, accessToken); err != nil {
			log.Warn().Err(err).Msg("Server logout failed, clearing local session anyway")
		}
	}
	return s.session.Clear(ctx)
}

// Profile returns the signed-in user
func (s *Service) Profile(ctx context.Context) (*authapi.User, error) {
	body, err := s.call(ctx, http.MethodGet, authapi.RouteMe)
	if err != nil {
		return nil, err
	}
	return authapi.DecodeProfile(body)
}

// DeleteAccount removes the signed-in user and clears the session
func (s *Service) DeleteAccount(ctx context.Context) error {
	if _, err := s.call(ctx, http.MethodDelete, authapi.RouteDeleteAccount); err != nil {
		return err
	}
	log.Info().Str("username", s.session.Username()).Msg("Account deleted")
	return s.session.Clear(ctx)
}

func (s *Service) call(ctx context.Context, method, route string) ([]byte, error) {
	resp, err := s.fetch.Do(ctx, method, route, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperrors.Wrapf(err, "[account %s] read body", route)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, authapi.NewAPIError(resp.StatusCode, body)
	}
	return body, nil
}

// Authorize gates access by role. allowed empty admits any signed-in user.
func Authorize(sess *session.Session, allowed ...users.RoleType) error {
	if !sess.IsAuthenticated() {
		return apperrors.ErrNotAuthenticated
	}
	if role := sess.Role(); !role.HasAnyRole(allowed...) {
		return apperrors.Wrapf(apperrors.ErrForbidden, "%q", role)
	}
	return nil
}
