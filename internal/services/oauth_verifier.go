package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

// IDTokenVerifier checks an OAuth ID token and returns its email claim.
type IDTokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (string, error)
}

type oauthClaims struct {
	Email         string `json:"email"`
	EmailVerified *bool  `json:"email_verified,omitempty"`
	jwt.RegisteredClaims
}

type keyfuncVerifier struct {
	keyfunc  jwt.Keyfunc
	audience string
	issuer   string
}

// NewJWKSVerifier fetches the provider JWKS and keeps it refreshed in the
// background until ctx ends.
func NewJWKSVerifier(ctx context.Context, jwksURL, audience, issuer string) (IDTokenVerifier, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, fmt.Errorf("load JWKS: %w", err)
	}
	return NewKeyfuncVerifier(jwks.Keyfunc, audience, issuer), nil
}

func NewKeyfuncVerifier(kf jwt.Keyfunc, audience, issuer string) IDTokenVerifier {
	return &keyfuncVerifier{keyfunc: kf, audience: audience, issuer: issuer}
}

func (v *keyfuncVerifier) Verify(_ context.Context, rawToken string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256", "ES256"}),
		jwt.WithExpirationRequired(),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims oauthClaims
	token, err := jwt.ParseWithClaims(rawToken, &claims, v.keyfunc, opts...)
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid ID token")
	}
	if claims.EmailVerified != nil && !*claims.EmailVerified {
		return "", errors.New("email not verified")
	}
	if claims.Email == "" {
		return "", errors.New("ID token has no email claim")
	}
	return claims.Email, nil
}
