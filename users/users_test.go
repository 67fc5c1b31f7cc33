package users_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-identity-server/users"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		password string
		valid    bool
	}{
		{"Passw0rd", true},
		{"short1A", false},
		{"alllowercase1", false},
		{"ALLUPPERCASE1", false},
		{"NoNumbersHere", false},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := users.ValidatePasswordStrength(tt.password)
			if tt.valid {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestNewUser_HashesPassword(t *testing.T) {
	joined := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	user, err := users.NewUser(" Jane@Example.COM", "Passw0rd", "Jane", "Doe", joined)
	require.NoError(t, err)

	require.Equal(t, "jane@example.com", user.Email)
	require.NotEqual(t, "Passw0rd", user.PasswordHash)
	require.True(t, users.CheckPasswordHash("Passw0rd", user.PasswordHash))
	require.False(t, users.CheckPasswordHash("passw0rd", user.PasswordHash))
	require.Equal(t, joined, user.DateJoined)
}
