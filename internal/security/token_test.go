package security_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/api/internal/security"
)

func newIssuer(t *testing.T, cfg security.TokenConfig, opts ...security.TokenIssuerOption) *security.TokenIssuer {
	t.Helper()
	issuer, err := security.NewTokenIssuer(cfg, opts...)
	require.NoError(t, err)
	return issuer
}

func testTokenConfig() security.TokenConfig {
	return security.TokenConfig{
		Secret:    "super-secret",
		Issuer:    "marketplace",
		Audience:  "marketplace-web",
		AccessTTL: 15 * time.Minute,
	}
}

func TestNewTokenIssuer_RequiresConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*security.TokenConfig)
		errMsg string
	}{
		{"missing secret", func(c *security.TokenConfig) { c.Secret = "" }, "secret is required"},
		{"missing issuer", func(c *security.TokenConfig) { c.Issuer = "" }, "issuer is required"},
		{"missing audience", func(c *security.TokenConfig) { c.Audience = "" }, "audience is required"},
		{"zero ttl", func(c *security.TokenConfig) { c.AccessTTL = 0 }, "ttl must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testTokenConfig()
			tt.mutate(&cfg)

			issuer, err := security.NewTokenIssuer(cfg)
			require.Error(t, err)
			assert.Nil(t, issuer)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestTokenIssuer_IssueAndValidate(t *testing.T) {
	now := time.Now()
	issuer := newIssuer(t, testTokenConfig(), security.WithClock(func() time.Time { return now }))

	token, expiresAt, err := issuer.IssueAccessToken(security.AccessSubject{
		UserID:    "u1",
		Username:  "alice",
		Email:     "alice@example.com",
		Role:      "seller",
		SessionID: "s1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, now.Add(15*time.Minute), expiresAt, time.Second)

	claims, err := issuer.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "s1", claims.SessionID)
	assert.Equal(t, "seller", claims.Role)
	assert.Equal(t, "alice@example.com", claims.Subject)
	assert.Equal(t, "marketplace", claims.Issuer)
}

func TestTokenIssuer_RejectsExpired(t *testing.T) {
	issuedAt := time.Now().Add(-time.Hour)
	old := newIssuer(t, testTokenConfig(), security.WithClock(func() time.Time { return issuedAt }))
	token, _, err := old.IssueAccessToken(security.AccessSubject{UserID: "u1"})
	require.NoError(t, err)

	_, err = newIssuer(t, testTokenConfig()).ValidateAccessToken(token)
	assert.ErrorIs(t, err, security.ErrInvalidToken)
}

func TestTokenIssuer_RejectsWrongSecretIssuerAudience(t *testing.T) {
	token, _, err := newIssuer(t, testTokenConfig()).IssueAccessToken(security.AccessSubject{UserID: "u1"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*security.TokenConfig)
	}{
		{"wrong secret", func(c *security.TokenConfig) { c.Secret = "other-secret" }},
		{"wrong issuer", func(c *security.TokenConfig) { c.Issuer = "someone-else" }},
		{"wrong audience", func(c *security.TokenConfig) { c.Audience = "mobile" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testTokenConfig()
			tt.mutate(&cfg)

			_, err := newIssuer(t, cfg).ValidateAccessToken(token)
			assert.ErrorIs(t, err, security.ErrInvalidToken)
		})
	}
}

func TestTokenIssuer_RejectsNoneAlgorithm(t *testing.T) {
	cfg := testTokenConfig()
	claims := security.AccessClaims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newIssuer(t, cfg).ValidateAccessToken(unsigned)
	assert.ErrorIs(t, err, security.ErrInvalidToken)
}

func TestTokenIssuer_RejectsMalformed(t *testing.T) {
	_, err := newIssuer(t, testTokenConfig()).ValidateAccessToken("not.a.jwt")
	assert.ErrorIs(t, err, security.ErrInvalidToken)
}

func TestIssueRefreshToken(t *testing.T) {
	issuer := newIssuer(t, testTokenConfig())

	first, firstHash, err := issuer.IssueRefreshToken()
	require.NoError(t, err)
	second, _, err := issuer.IssueRefreshToken()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Len(t, firstHash, 32)
	assert.Equal(t, security.HashRefreshToken(first), firstHash)
}

func TestResetToken(t *testing.T) {
	token, hash, err := security.GenerateResetToken()
	require.NoError(t, err)
	assert.Len(t, token, 64)

	assert.Equal(t, security.HashResetToken(token), hash)
	assert.NotEqual(t, security.HashResetToken(token+"x"), hash)
}
