// Package sessionstest holds the behaviour every sessions.Registry must satisfy.
package sessionstest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/jrsteele09/go-identity-server/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory builds an empty registry with the given cap. list returns the subject's
// sessions, most recent first.
type Factory func(t *testing.T, maxSessions int) (reg sessions.Registry, list func(subjectID string) []string)

// RunRegistryContract runs the shared registry behaviour tests.
func RunRegistryContract(t *testing.T, newRegistry Factory) {
	ctx := context.Background()

	t.Run("record and check", func(t *testing.T) {
		reg, _ := newRegistry(t, 5)
		require.NoError(t, reg.RecordSession(ctx, "u1", "s1"))

		active, err := reg.IsActive(ctx, "u1", "s1")
		require.NoError(t, err)
		require.True(t, active)

		active, err = reg.IsActive(ctx, "u1", "unknown")
		require.NoError(t, err)
		require.False(t, active)

		active, err = reg.IsActive(ctx, "u2", "s1")
		require.NoError(t, err)
		require.False(t, active, "sessions are scoped to their subject")
	})

	t.Run("most recent first and capped", func(t *testing.T) {
		reg, list := newRegistry(t, 3)
		for i := 1; i <= 4; i++ {
			require.NoError(t, reg.RecordSession(ctx, "u1", fmt.Sprintf("s%d", i)))
		}

		require.Equal(t, []string{"s4", "s3", "s2"}, list("u1"))
		active, err := reg.IsActive(ctx, "u1", "s1")
		require.NoError(t, err)
		require.False(t, active, "oldest session is evicted")
	})

	t.Run("cap of one", func(t *testing.T) {
		reg, list := newRegistry(t, 1)
		require.NoError(t, reg.RecordSession(ctx, "u1", "s1"))
		require.NoError(t, reg.RecordSession(ctx, "u1", "s2"))
		require.Equal(t, []string{"s2"}, list("u1"))
	})

	t.Run("revoke is idempotent", func(t *testing.T) {
		reg, list := newRegistry(t, 5)
		require.NoError(t, reg.RecordSession(ctx, "u1", "s1"))
		require.NoError(t, reg.RecordSession(ctx, "u1", "s2"))

		require.NoError(t, reg.Revoke(ctx, "u1", "s1"))
		require.NoError(t, reg.Revoke(ctx, "u1", "s1"))
		require.NoError(t, reg.Revoke(ctx, "u1", "never-existed"))
		require.NoError(t, reg.Revoke(ctx, "nobody", "s1"))

		require.Equal(t, []string{"s2"}, list("u1"))
	})

	t.Run("revoke all", func(t *testing.T) {
		reg, list := newRegistry(t, 5)
		require.NoError(t, reg.RecordSession(ctx, "u1", "s1"))
		require.NoError(t, reg.RecordSession(ctx, "u1", "s2"))
		require.NoError(t, reg.RecordSession(ctx, "u2", "s3"))

		require.NoError(t, reg.RevokeAll(ctx, "u1"))
		require.NoError(t, reg.RevokeAll(ctx, "u1"))

		require.Empty(t, list("u1"))
		for _, sid := range []string{"s1", "s2"} {
			active, err := reg.IsActive(ctx, "u1", sid)
			require.NoError(t, err)
			require.False(t, active)
		}
		active, err := reg.IsActive(ctx, "u2", "s3")
		require.NoError(t, err)
		require.True(t, active, "other subjects are untouched")
	})

	t.Run("concurrent logins never exceed the cap", func(t *testing.T) {
		const maxSessions = 3
		reg, list := newRegistry(t, maxSessions)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				assert.NoError(t, reg.RecordSession(ctx, "u1", fmt.Sprintf("s%d", i)))
			}(i)
		}
		wg.Wait()

		require.Len(t, list("u1"), maxSessions)
	})
}
