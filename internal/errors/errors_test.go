package errors_test

import (
	"fmt"
	"testing"

	apperrors "github.com/jrsteele09/go-identity-server/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestWrapf_Nil(t *testing.T) {
	require.NoError(t, apperrors.Wrapf(nil, "op %s", "x"))
}

func TestWrapf_KeepsChain(t *testing.T) {
	err := apperrors.Wrapf(apperrors.ErrNotFound, "users.GetByID %s", "u-1")
	require.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	require.Equal(t, "users.GetByID u-1: not found", err.Error())
}

func TestUnavailable_WrapsBoth(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := apperrors.Unavailable(cause, "sessions.RecordSession")
	require.True(t, apperrors.Is(err, apperrors.ErrStoreUnavailable))
	require.True(t, apperrors.Is(err, cause))
	require.Contains(t, err.Error(), "sessions.RecordSession")
	require.NoError(t, apperrors.Unavailable(nil, "noop"))
}
