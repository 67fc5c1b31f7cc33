package auth

import "context"

// Principal is the externally owned identity a session belongs to.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// CredentialVerifier resolves an email and password to a subject id. A wrong email or
// password returns an error matching apperrors.ErrInvalidCredentials.
type CredentialVerifier interface {
	AuthenticateCredentials(ctx context.Context, email, password string) (string, error)
}

// PrincipalLookup resolves a subject id. Unknown subjects return an error matching
// apperrors.ErrNotFound.
type PrincipalLookup interface {
	LookupPrincipal(ctx context.Context, subjectID string) (*Principal, error)
}
