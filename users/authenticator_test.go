package users_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/go-identity-server/auth"
	apperrors "github.com/jrsteele09/go-identity-server/internal/errors"
	"github.com/jrsteele09/go-identity-server/users"
	fakeuserrepo "github.com/jrsteele09/go-identity-server/users/repofake"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "jane@example.com"
	testPassword = "Passw0rd"
)

func setupAuthenticator(t *testing.T) (*users.Authenticator, *users.User) {
	t.Helper()

	repo := fakeuserrepo.NewFakeUserRepo()
	user, err := users.NewUser(testEmail, testPassword, "Jane", "Doe", time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(context.Background(), user))

	authenticator, err := users.NewAuthenticator(repo)
	require.NoError(t, err)
	return authenticator, user
}

func TestNewAuthenticator_RequiresRepo(t *testing.T) {
	_, err := users.NewAuthenticator(nil)
	require.Error(t, err)
}

func TestAuthenticateCredentials(t *testing.T) {
	authenticator, user := setupAuthenticator(t)
	ctx := context.Background()

	subjectID, err := authenticator.AuthenticateCredentials(ctx, "JANE@example.com", testPassword)
	require.NoError(t, err)
	require.Equal(t, user.ID, subjectID)

	_, err = authenticator.AuthenticateCredentials(ctx, testEmail, "wrong")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = authenticator.AuthenticateCredentials(ctx, "nobody@example.com", testPassword)
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	require.NotErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLookupPrincipal(t *testing.T) {
	authenticator, user := setupAuthenticator(t)
	ctx := context.Background()

	principal, err := authenticator.LookupPrincipal(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, &auth.Principal{ID: user.ID, Email: testEmail}, principal)

	_, err = authenticator.LookupPrincipal(ctx, "unknown")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
