package fakesessionrepo_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-identity-server/sessions"
	fakesessionrepo "github.com/jrsteele09/go-identity-server/sessions/repofakes"
	"github.com/jrsteele09/go-identity-server/sessions/sessionstest"
	"github.com/stretchr/testify/require"
)

func TestFakeSessionRepo_Contract(t *testing.T) {
	sessionstest.RunRegistryContract(t, func(t *testing.T, maxSessions int) (sessions.Registry, func(string) []string) {
		repo, err := fakesessionrepo.NewFakeSessionRepo(maxSessions)
		require.NoError(t, err)
		return repo, repo.List
	})
}

func TestNewFakeSessionRepo_RejectsZeroCap(t *testing.T) {
	_, err := fakesessionrepo.NewFakeSessionRepo(0)
	require.Error(t, err)
}

func TestFakeSessionRepo_CancelledContext(t *testing.T) {
	repo, err := fakesessionrepo.NewFakeSessionRepo(2)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, repo.RecordSession(ctx, "u1", "s1"), context.Canceled)
	require.Empty(t, repo.List("u1"))
}
