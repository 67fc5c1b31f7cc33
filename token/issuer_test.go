package token_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-identity-server/token"
	"github.com/stretchr/testify/require"
)

const (
	accessSecret  = "access-secret"
	refreshSecret = "refresh-secret"
	testSubject   = "user-1"
	testEmail     = "john.doe@example.com"
	testSessionID = "session-1"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newIssuer(t *testing.T, c *clock) *token.Issuer {
	t.Helper()

	access, err := token.NewHMACSigner(accessSecret)
	require.NoError(t, err)
	refresh, err := token.NewHMACSigner(refreshSecret)
	require.NoError(t, err)

	issuer, err := token.NewIssuer(access, refresh,
		token.WithTokenExpiry(15*time.Minute, 7*24*time.Hour),
		token.WithNowFunc(c.Now),
	)
	require.NoError(t, err)
	return issuer
}

func TestNewIssuer_RequiresSigners(t *testing.T) {
	signer, err := token.NewHMACSigner(accessSecret)
	require.NoError(t, err)

	_, err = token.NewIssuer(nil, signer)
	require.Error(t, err)
	_, err = token.NewIssuer(signer, nil)
	require.Error(t, err)

	_, err = token.NewHMACSigner("")
	require.Error(t, err)
}

func TestNewIssuer_Defaults(t *testing.T) {
	signer, err := token.NewHMACSigner(accessSecret)
	require.NoError(t, err)

	issuer, err := token.NewIssuer(signer, signer)
	require.NoError(t, err)
	require.Equal(t, token.DefaultAccessTokenExpiry, issuer.AccessTokenExpiry())
	require.Equal(t, token.DefaultRefreshTokenExpiry, issuer.RefreshTokenExpiry())
}

func TestIssueAccessToken_RoundTrip(t *testing.T) {
	c := &clock{now: time.Unix(1_700_000_000, 0)}
	issuer := newIssuer(t, c)

	raw, err := issuer.IssueAccessToken(testSubject, testEmail)
	require.NoError(t, err)
	require.Len(t, strings.Split(raw, "."), 3)

	claims, err := issuer.VerifyAccessToken(raw)
	require.NoError(t, err)
	require.Equal(t, testSubject, claims.Subject)
	require.Equal(t, testEmail, claims.Email)
	require.NotEmpty(t, claims.ID)
	require.Equal(t, c.now.Unix(), claims.IssuedAt.Unix())
	require.Equal(t, c.now.Add(15*time.Minute).Unix(), claims.ExpiresAt.Unix())
}

func TestIssueAccessToken_UniqueWithinSameTick(t *testing.T) {
	c := &clock{now: time.Unix(1_700_000_000, 0)}
	issuer := newIssuer(t, c)

	first, err := issuer.IssueAccessToken(testSubject, testEmail)
	require.NoError(t, err)
	second, err := issuer.IssueAccessToken(testSubject, testEmail)
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}

func TestIssueRefreshToken_RoundTrip(t *testing.T) {
	c := &clock{now: time.Unix(1_700_000_000, 0)}
	issuer := newIssuer(t, c)

	raw, err := issuer.IssueRefreshToken(testSubject, testSessionID)
	require.NoError(t, err)

	claims, err := issuer.VerifyRefreshToken(raw)
	require.NoError(t, err)
	require.Equal(t, testSubject, claims.Subject)
	require.Equal(t, testSessionID, claims.SessionID)
	require.Equal(t, c.now.Add(7*24*time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestIssue_RejectsMissingClaims(t *testing.T) {
	c := &clock{now: time.Unix(1_700_000_000, 0)}
	issuer := newIssuer(t, c)

	_, err := issuer.IssueAccessToken("", testEmail)
	require.Error(t, err)
	_, err = issuer.IssueRefreshToken(testSubject, "")
	require.Error(t, err)
}

func TestVerify_Expired(t *testing.T) {
	c := &clock{now: time.Unix(1_700_000_000, 0)}
	issuer := newIssuer(t, c)

	access, err := issuer.IssueAccessToken(testSubject, testEmail)
	require.NoError(t, err)
	refresh, err := issuer.IssueRefreshToken(testSubject, testSessionID)
	require.NoError(t, err)

	c.now = c.now.Add(15 * time.Minute)
	_, err = issuer.VerifyAccessToken(access)
	require.ErrorIs(t, err, token.ErrInvalidToken)

	var invalid *token.InvalidTokenError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, "expired", invalid.Reason)

	_, err = issuer.VerifyRefreshToken(refresh)
	require.NoError(t, err, "refresh token outlives the access token")

	c.now = c.now.Add(7 * 24 * time.Hour)
	_, err = issuer.VerifyRefreshToken(refresh)
	require.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestVerify_SecretsAreNotInterchangeable(t *testing.T) {
	c := &clock{now: time.Unix(1_700_000_000, 0)}
	issuer := newIssuer(t, c)

	access, err := issuer.IssueAccessToken(testSubject, testEmail)
	require.NoError(t, err)
	refresh, err := issuer.IssueRefreshToken(testSubject, testSessionID)
	require.NoError(t, err)

	_, err = issuer.VerifyRefreshToken(access)
	require.ErrorIs(t, err, token.ErrInvalidToken)
	_, err = issuer.VerifyAccessToken(refresh)
	require.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestVerify_WrongSecret(t *testing.T) {
	c := &clock{now: time.Unix(1_700_000_000, 0)}
	issuer := newIssuer(t, c)

	other, err := token.NewHMACSigner("someone-else")
	require.NoError(t, err)
	forged, err := other.Sign(&token.RefreshClaims{
		SessionID: testSessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   testSubject,
			IssuedAt:  jwt.NewNumericDate(c.now),
			ExpiresAt: jwt.NewNumericDate(c.now.Add(time.Hour)),
		},
	})
	require.NoError(t, err)

	_, err = issuer.VerifyRefreshToken(forged)
	var invalid *token.InvalidTokenError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, "signature", invalid.Reason)
}

func TestVerify_RejectsUnsignedAndMissingClaims(t *testing.T) {
	c := &clock{now: time.Unix(1_700_000_000, 0)}
	issuer := newIssuer(t, c)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &token.RefreshClaims{
		SessionID: testSessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   testSubject,
			ExpiresAt: jwt.NewNumericDate(c.now.Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.VerifyRefreshToken(unsigned)
	require.ErrorIs(t, err, token.ErrInvalidToken)

	signer, err := token.NewHMACSigner(refreshSecret)
	require.NoError(t, err)
	noSession, err := signer.Sign(&token.RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   testSubject,
			ExpiresAt: jwt.NewNumericDate(c.now.Add(time.Hour)),
		},
	})
	require.NoError(t, err)
	_, err = issuer.VerifyRefreshToken(noSession)
	require.ErrorIs(t, err, token.ErrInvalidToken)

	noExpiry, err := signer.Sign(&token.RefreshClaims{
		SessionID:        testSessionID,
		RegisteredClaims: jwt.RegisteredClaims{Subject: testSubject},
	})
	require.NoError(t, err)
	_, err = issuer.VerifyRefreshToken(noExpiry)
	require.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestVerify_Garbage(t *testing.T) {
	c := &clock{now: time.Unix(1_700_000_000, 0)}
	issuer := newIssuer(t, c)

	for _, raw := range []string{"", "   ", "abc", "a.b.c", "a.b", "...."} {
		_, err := issuer.VerifyRefreshToken(raw)
		require.ErrorIs(t, err, token.ErrInvalidToken, raw)
	}
}

func TestVerify_AnySingleCharacterMutationFails(t *testing.T) {
	c := &clock{now: time.Unix(1_700_000_000, 0)}
	issuer := newIssuer(t, c)

	raw, err := issuer.IssueRefreshToken(testSubject, testSessionID)
	require.NoError(t, err)

	for i := range raw {
		replacement := byte('A')
		if raw[i] == 'A' {
			replacement = 'B'
		}
		mutated := raw[:i] + string(replacement) + raw[i+1:]

		_, err := issuer.VerifyRefreshToken(mutated)
		require.ErrorIs(t, err, token.ErrInvalidToken, "mutation at index %d", i)
	}
}
