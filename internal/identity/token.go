package identity

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/huangang/teamtask/internal/config"
)

// SessionClaims are the claims carried by provider session tokens.
type SessionClaims struct {
	AuthorizedParty string `json:"azp,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier checks session tokens offline against the provider's
// published key. Exactly one of publicKey and secret is set.
type JWTVerifier struct {
	publicKey         *rsa.PublicKey
	secret            []byte
	issuer            string
	authorizedParties []string
}

func NewJWTVerifier(cfg *config.IdentityConfig) (*JWTVerifier, error) {
	v := &JWTVerifier{
		issuer:            cfg.Issuer,
		authorizedParties: cfg.AuthorizedParties,
	}

	switch {
	case cfg.JWTPublicKey != "":
		// env vars often carry the PEM with escaped newlines
		pem := strings.ReplaceAll(cfg.JWTPublicKey, `\n`, "\n")
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
		if err != nil {
			return nil, fmt.Errorf("identity: parse jwt public key: %w", err)
		}
		v.publicKey = key
	case cfg.JWTSecret != "":
		v.secret = []byte(cfg.JWTSecret)
	default:
		return nil, errors.New("identity: no token verification key configured")
	}

	return v, nil
}

// Authenticate returns the token subject.
func (v *JWTVerifier) Authenticate(_ context.Context, tokenString string) (string, error) {
	opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.publicKey != nil {
		opts = append(opts, jwt.WithValidMethods([]string{"RS256"}))
	} else {
		opts = append(opts, jwt.WithValidMethods([]string{"HS256"}))
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, v.keyFunc, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}

	if len(v.authorizedParties) > 0 && claims.AuthorizedParty != "" &&
		!slices.Contains(v.authorizedParties, claims.AuthorizedParty) {
		return "", fmt.Errorf("%w: unauthorized party %q", ErrInvalidToken, claims.AuthorizedParty)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: no user id in token", ErrInvalidToken)
	}
	return claims.Subject, nil
}

func (v *JWTVerifier) keyFunc(_ *jwt.Token) (interface{}, error) {
	if v.publicKey != nil {
		return v.publicKey, nil
	}
	return v.secret, nil
}
