package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

const (
	refreshTokenBytes = 64
	resetTokenBytes   = 32
)

// TokenConfig is built once at startup and never mutated.
type TokenConfig struct {
	Secret    string
	Issuer    string
	Audience  string
	AccessTTL time.Duration
}

type AccessClaims struct {
	UserID    string `json:"uid"`
	Username  string `json:"unm"`
	SessionID string `json:"sid"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// AccessSubject is what an access token is issued for.
type AccessSubject struct {
	UserID    string
	Username  string
	Email     string
	Role      string
	SessionID string
}

type TokenIssuer struct {
	cfg TokenConfig
	now func() time.Time
}

type TokenIssuerOption func(*TokenIssuer)

func WithClock(now func() time.Time) TokenIssuerOption {
	return func(t *TokenIssuer) {
		t.now = now
	}
}

func NewTokenIssuer(cfg TokenConfig, opts ...TokenIssuerOption) (*TokenIssuer, error) {
	switch {
	case cfg.Secret == "":
		return nil, errors.New("token issuer: secret is required")
	case cfg.Issuer == "":
		return nil, errors.New("token issuer: issuer is required")
	case cfg.Audience == "":
		return nil, errors.New("token issuer: audience is required")
	case cfg.AccessTTL <= 0:
		return nil, errors.New("token issuer: access token ttl must be positive")
	}

	issuer := &TokenIssuer{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(issuer)
	}
	return issuer, nil
}

func (t *TokenIssuer) AccessTTL() time.Duration {
	return t.cfg.AccessTTL
}

func (t *TokenIssuer) IssueAccessToken(subject AccessSubject) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(t.cfg.AccessTTL)

	claims := AccessClaims{
		UserID:    subject.UserID,
		Username:  subject.Username,
		SessionID: subject.SessionID,
		Role:      subject.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.cfg.Issuer,
			Audience:  jwt.ClaimStrings{t.cfg.Audience},
			Subject:   subject.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(t.cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign jwt: %w", err)
	}
	return signed, expiresAt, nil
}

func (t *TokenIssuer) ValidateAccessToken(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(t.cfg.Secret), nil
	},
		jwt.WithIssuer(t.cfg.Issuer),
		jwt.WithAudience(t.cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IssueRefreshToken returns an opaque token and the hash that is persisted
// in its place.
func (t *TokenIssuer) IssueRefreshToken() (string, []byte, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", nil, fmt.Errorf("generate refresh token: %w", err)
	}

	token := base64.RawURLEncoding.EncodeToString(buf)
	return token, HashRefreshToken(token), nil
}

func HashRefreshToken(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return sum[:]
}

// GenerateResetToken returns a hex token for the reset link and its sha256
// hex hash for storage.
func GenerateResetToken() (token string, hash string, err error) {
	buf := make([]byte, resetTokenBytes)
	if _, err = rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("generate reset token: %w", err)
	}

	token = hex.EncodeToString(buf)
	return token, HashResetToken(token), nil
}

func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
