// Package sessions tracks which refresh-token sessions are still active for a subject.
//
// Each subject owns an ordered list of session ids, most recent first, capped at a
// configured size. Recording a session beyond the cap evicts the oldest one. The list is
// only reachable through Registry; implementations must be safe for concurrent use.
package sessions

import (
	"context"
	"fmt"

	apperrors "github.com/jrsteele09/go-identity-server/internal/errors"
)

// DefaultMaxSessions is the number of concurrent sessions kept per subject
const DefaultMaxSessions = 5

// Registry is the session store contract used by the auth package.
type Registry interface {
	// RecordSession pushes sessionID to the head of the subject's list and trims the
	// list to the cap in one atomic step.
	RecordSession(ctx context.Context, subjectID, sessionID string) error

	// IsActive reports whether sessionID is in the subject's list.
	IsActive(ctx context.Context, subjectID, sessionID string) (bool, error)

	// Revoke removes sessionID. Removing an unknown session is not an error.
	Revoke(ctx context.Context, subjectID, sessionID string) error

	// RevokeAll removes every session of the subject, side records included.
	RevokeAll(ctx context.Context, subjectID string) error
}

// ValidateMaxSessions rejects caps below one.
func ValidateMaxSessions(maxSessions int) error {
	if maxSessions < 1 {
		return fmt.Errorf("%w: max sessions must be >= 1, got %d", apperrors.ErrInvalidConfig, maxSessions)
	}
	return nil
}

// SubjectSessionsKey is the store key of the subject's session list. The braces are a
// Redis cluster hash tag so every key of one subject lands in the same slot.
func SubjectSessionsKey(subjectID string) string {
	return "sessions:{" + subjectID + "}"
}

// SessionKeyPrefix prefixes the per-session side record of a subject.
func SessionKeyPrefix(subjectID string) string {
	return "session:{" + subjectID + "}:"
}

// SessionKey is the side record for one session.
func SessionKey(subjectID, sessionID string) string {
	return SessionKeyPrefix(subjectID) + sessionID
}
