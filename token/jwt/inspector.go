package jwt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-rental-session/internal/errors"
	"github.com/jrsteele09/go-rental-session/token/keys"
)

// RevokedChecker is an interface for checking if a token has been revoked
type RevokedChecker interface {
	IsRevoked(jti string) bool
}

// Verified is the result of a successful verification
type Verified struct {
	Identity  Identity
	ID        string
	ExpiresAt time.Time
}

// Inspector verifies tokens issued by a Creator
type Inspector struct {
	signer         keys.Signer
	revokedChecker RevokedChecker
}

// NewInspector creates a new JWT inspector
func NewInspector(signer keys.Signer, revokedChecker RevokedChecker) *Inspector {
	return &Inspector{
		signer:         signer,
		revokedChecker: revokedChecker,
	}
}

// Verify checks the signature, expiry, token type and revocation state of rawToken
func (i *Inspector) Verify(rawToken, tokenType string) (*Verified, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "empty token")
	}

	parsed, err := jwtlib.ParseWithClaims(rawToken, jwtlib.MapClaims{}, i.signer.GetVerificationKey,
		jwtlib.WithValidMethods([]string{i.signer.GetSigningMethod().Alg()}),
		jwtlib.WithTimeFunc(NowTimeFunc),
		jwtlib.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, apperrors.Wrapf(apperrors.ErrTokenExpired, "verify token")
		}
		return nil, fmt.Errorf("verify token: %w", errors.Join(apperrors.ErrInvalidToken, err))
	}

	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok || !parsed.Valid {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "error extracting claims from token")
	}

	if typ, _ := claims["type"].(string); typ != tokenType {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "expected %s token, got %q", tokenType, typ)
	}

	jti, _ := claims["jti"].(string)
	if jti != "" && i.revokedChecker != nil && i.revokedChecker.IsRevoked(jti) {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "token revoked")
	}

	sub, _ := claims["sub"].(string)
	var id Identity
	if err := json.Unmarshal([]byte(sub), &id); err != nil {
		return nil, apperrors.Wrapf(errors.Join(apperrors.ErrInvalidToken, err), "sub claim")
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "token missing exp claim")
	}

	return &Verified{Identity: id, ID: jti, ExpiresAt: exp.Time}, nil
}
