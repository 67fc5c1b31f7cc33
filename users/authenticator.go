package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jrsteele09/go-identity-server/auth"
	apperrors "github.com/jrsteele09/go-identity-server/internal/errors"
	"golang.org/x/crypto/bcrypt"
)

var (
	_ auth.CredentialVerifier = (*Authenticator)(nil)
	_ auth.PrincipalLookup    = (*Authenticator)(nil)
)

// Authenticator adapts a UserRepo to the ports consumed by auth.SessionAuthority.
type Authenticator struct {
	repo      UserRepo
	dummyHash []byte
}

func NewAuthenticator(repo UserRepo) (*Authenticator, error) {
	if repo == nil {
		return nil, errors.New("[NewAuthenticator] user repo is required")
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("[NewAuthenticator] dummy hash: %w", err)
	}
	return &Authenticator{repo: repo, dummyHash: dummy}, nil
}

// AuthenticateCredentials returns the subject id of the user owning email and password.
// Unknown emails still pay for one bcrypt comparison so timing does not reveal them.
func (a *Authenticator) AuthenticateCredentials(ctx context.Context, email, password string) (string, error) {
	user, err := a.repo.GetByEmail(ctx, NormaliseEmail(email))
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		_ = bcrypt.CompareHashAndPassword(a.dummyHash, []byte(password))
		return "", apperrors.ErrInvalidCredentials
	case err != nil:
		return "", err
	}

	if !CheckPasswordHash(password, user.PasswordHash) {
		return "", apperrors.ErrInvalidCredentials
	}
	return user.ID, nil
}

func (a *Authenticator) LookupPrincipal(ctx context.Context, subjectID string) (*auth.Principal, error) {
	user, err := a.repo.GetByID(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	return &auth.Principal{ID: user.ID, Email: user.Email}, nil
}
