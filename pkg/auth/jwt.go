package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrMissingToken     = errors.New("missing authentication token")
	ErrInvalidClaims    = errors.New("invalid token claims")
)

// Claims are the token claims the backend cares about. The Cognito identity
// token carries the app client id in "aud" and marks itself with
// token_use=id; access tokens are rejected.
type Claims struct {
	Email    string `json:"email"`
	TokenUse string `json:"token_use"`
	jwt.RegisteredClaims
}

// UserID is the opaque subject identifier used as the storage partition key.
func (c *Claims) UserID() string {
	return c.Subject
}

// VerifierConfig configures token verification. RS256 verification is keyed
// by the user-pool issuer and resolves signing keys through its JWKS
// endpoint; HS256 with a shared secret is kept for local development.
type VerifierConfig struct {
	// Region and UserPoolID identify the pool; together they form the
	// expected issuer https://cognito-idp.{region}.amazonaws.com/{poolID}.
	Region     string
	UserPoolID string
	// ClientID is the app client id bound to the token audience.
	ClientID string
	// SecretKey enables HS256 verification instead of JWKS (development).
	SecretKey string
}

// Issuer returns the expected token issuer for the configured pool.
func (c VerifierConfig) Issuer() string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", c.Region, c.UserPoolID)
}

// Verifier validates bearer tokens.
type Verifier struct {
	issuer   string
	clientID string
	secret   []byte
	keys     *jwksCache
}

// NewVerifier builds a verifier from config. When SecretKey is set the
// verifier runs in HS256 mode and never touches the network.
func NewVerifier(cfg VerifierConfig) (*Verifier, error) {
	v := &Verifier{
		clientID: cfg.ClientID,
	}
	if cfg.UserPoolID != "" {
		v.issuer = cfg.Issuer()
	}
	if cfg.SecretKey != "" {
		v.secret = []byte(cfg.SecretKey)
		return v, nil
	}
	if cfg.Region == "" || cfg.UserPoolID == "" {
		return nil, errors.New("user pool region and id required for JWKS verification")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("client id required")
	}
	v.keys = newJWKSCache(v.issuer + "/.well-known/jwks.json")
	return v, nil
}

// Verify parses and validates a bearer token, returning its claims.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if v.secret != nil {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Method)
			}
			return v.secret, nil
		}
		if token.Method != jwt.SigningMethodRS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Method)
		}
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token missing kid header")
		}
		return v.keys.Key(ctx, kid)
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}
	if !token.Valid {
		return nil, ErrInvalidClaims
	}

	if v.issuer != "" && claims.Issuer != v.issuer {
		return nil, fmt.Errorf("%w: invalid issuer", ErrInvalidClaims)
	}
	if v.clientID != "" && !containsAudience(claims.Audience, v.clientID) {
		return nil, fmt.Errorf("%w: invalid audience", ErrInvalidClaims)
	}
	switch {
	case claims.TokenUse == "id":
	case v.secret != nil && claims.TokenUse == "":
		// locally signed dev tokens may omit token_use
	default:
		return nil, fmt.Errorf("%w: not an identity token", ErrInvalidClaims)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidClaims)
	}

	return claims, nil
}

func containsAudience(aud jwt.ClaimStrings, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}
	return false
}
