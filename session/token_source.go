package session

import (
	apperrors "github.com/jrsteele09/go-rental-session/internal/errors"
	"golang.org/x/oauth2"
)

type tokenSource struct {
	session *Session
}

// TokenSource exposes the current access token to x/oauth2 consumers. It
// never refreshes; pair it with an authfetch.Client for that.
func (s *Session) TokenSource() oauth2.TokenSource {
	return tokenSource{session: s}
}

func (ts tokenSource) Token() (*oauth2.Token, error) {
	creds := ts.session.Credentials()
	if creds.Empty() {
		return nil, apperrors.ErrNotAuthenticated
	}
	return creds.OAuth2Token(), nil
}
