package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer   = "fantasy11"
	tokenAudience = "fantasy11-api"

	// Допуск на рассинхрон часов клиента и сервера
	clockLeeway = 30 * time.Second

	refreshTokenBytes = 32
)

// ErrTokenInvalid is returned for access tokens that fail signature or claim checks.
var ErrTokenInvalid = errors.New("invalid access token")

// AccessClaims are the claims carried by a fantasy11 access token.
// The user ID travels in the standard "sub" claim.
type AccessClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// UserID returns the subject of the token.
func (c *AccessClaims) UserID() string {
	return c.Subject
}

// JWTConfig holds the signing secret and token lifetimes.
type JWTConfig struct {
	Secret          []byte
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// GenerateAccessToken signs an HS256 access token for the user and
// returns it together with its lifetime in seconds.
func GenerateAccessToken(cfg JWTConfig, userID, username string) (string, int64, error) {
	issued := time.Now()
	claims := AccessClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			IssuedAt:  jwt.NewNumericDate(issued),
			NotBefore: jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(cfg.AccessTokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.Secret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, int64(cfg.AccessTokenTTL / time.Second), nil
}

// ValidateAccessToken checks signature, issuer, audience and expiry of
// an access token. Any failure wraps ErrTokenInvalid.
func ValidateAccessToken(cfg JWTConfig, raw string) (*AccessClaims, error) {
	var claims AccessClaims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (any, error) { return cfg.Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(clockLeeway),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	return &claims, nil
}

// GenerateRefreshToken returns an opaque random refresh token and the
// moment it stops being accepted.
func GenerateRefreshToken(cfg JWTConfig) (string, time.Time, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), time.Now().Add(cfg.RefreshTokenTTL), nil
}
