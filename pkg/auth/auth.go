// Package auth issues and checks the admin's bearer tokens.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"

	"portfolio/pkg/clock"
	"portfolio/pkg/models"
)

// ErrNoToken is returned when a request carries no bearer token.
var ErrNoToken = fmt.Errorf("%w: no token provided", models.ErrUnauthorized)

// ErrInvalidToken is returned for malformed, tampered or expired tokens.
var ErrInvalidToken = fmt.Errorf("%w: invalid token", models.ErrUnauthorized)

// privateClaims are the claims beyond the registered ones.
type privateClaims struct {
	Username string `json:"username"`
}

// Service checks credentials against one configured admin and signs HS256
// tokens. Tokens are stateless: logging out means discarding the token.
type Service struct {
	username string
	password string
	key      []byte
	ttl      time.Duration
	clock    clock.Clock
}

// NewService creates a Service. The signing key is derived from secret.
func NewService(username, password, secret string, ttl time.Duration, clk clock.Clock) *Service {
	key := sha256.Sum256([]byte(secret))
	return &Service{
		username: username,
		password: password,
		key:      key[:],
		ttl:      ttl,
		clock:    clk,
	}
}

// TTL returns how long issued tokens stay valid.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Login returns a signed token when username and password match the
// configured pair. An unconfigured pair never matches.
func (s *Service) Login(username, password string) (string, error) {
	if s.username == "" || s.password == "" {
		return "", models.ErrInvalidCredentials
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) == 1
	if !userOK || !passOK {
		return "", models.ErrInvalidCredentials
	}
	return s.Issue(username)
}

// Issue signs a token for username without checking a password.
func (s *Service) Issue(username string) (string, error) {
	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: s.key},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return "", fmt.Errorf("creating signer: %w", err)
	}

	now := s.clock.Now()
	claims := jwt.Claims{
		Subject:  username,
		IssuedAt: jwt.NewNumericDate(now),
		Expiry:   jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token, err := jwt.Signed(signer).Claims(claims).Claims(privateClaims{Username: username}).Serialize()
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return token, nil
}

// Verify checks the token's signature and expiry and returns its username.
func (s *Service) Verify(raw string) (string, error) {
	if raw == "" {
		return "", ErrNoToken
	}
	if !canonical(raw) {
		return "", ErrInvalidToken
	}

	tok, err := jwt.ParseSigned(raw, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		return "", ErrInvalidToken
	}
	var claims jwt.Claims
	var priv privateClaims
	if err := tok.Claims(s.key, &claims, &priv); err != nil {
		return "", ErrInvalidToken
	}
	now := s.clock.Now()
	if err := claims.ValidateWithLeeway(jwt.Expected{Time: now}, 0); err != nil {
		return "", ErrInvalidToken
	}
	// ValidateWithLeeway still accepts now == exp; a token is expired on
	// or after exp.
	if claims.Expiry == nil || !now.Before(claims.Expiry.Time()) {
		return "", ErrInvalidToken
	}
	if priv.Username == "" || priv.Username != claims.Subject {
		return "", ErrInvalidToken
	}
	return priv.Username, nil
}

// canonical reports whether raw is three strictly encoded base64url
// segments. The decoder used for signature checks tolerates stray trailing
// bits, so without this a flipped final character could still verify.
func canonical(raw string) bool {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return false
	}
	enc := base64.RawURLEncoding.Strict()
	for _, p := range parts {
		if p == "" {
			return false
		}
		if _, err := enc.DecodeString(p); err != nil {
			return false
		}
	}
	return true
}
