package fakesessionrepo

import (
	"context"
	"slices"
	"sync"

	"github.com/jrsteele09/go-identity-server/sessions"
)

var _ sessions.Registry = (*FakeSessionRepo)(nil)

// FakeSessionRepo is an in-memory sessions.Registry. A single mutex serialises
// every operation, so same-subject logins never exceed the cap.
type FakeSessionRepo struct {
	maxSessions int
	sessions    map[string][]string // subject ID to session IDs, most recent first
	lock        sync.RWMutex
}

func NewFakeSessionRepo(maxSessions int) (*FakeSessionRepo, error) {
	if err := sessions.ValidateMaxSessions(maxSessions); err != nil {
		return nil, err
	}
	return &FakeSessionRepo{
		maxSessions: maxSessions,
		sessions:    make(map[string][]string),
	}, nil
}

func (sr *FakeSessionRepo) RecordSession(ctx context.Context, subjectID, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sr.lock.Lock()
	defer sr.lock.Unlock()

	list := append([]string{sessionID}, sr.sessions[subjectID]...)
	if len(list) > sr.maxSessions {
		list = list[:sr.maxSessions]
	}
	sr.sessions[subjectID] = list
	return nil
}

func (sr *FakeSessionRepo) IsActive(ctx context.Context, subjectID, sessionID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	return slices.Contains(sr.sessions[subjectID], sessionID), nil
}

func (sr *FakeSessionRepo) Revoke(ctx context.Context, subjectID, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sr.lock.Lock()
	defer sr.lock.Unlock()

	list := slices.DeleteFunc(slices.Clone(sr.sessions[subjectID]), func(s string) bool {
		return s == sessionID
	})
	if len(list) == 0 {
		delete(sr.sessions, subjectID)
		return nil
	}
	sr.sessions[subjectID] = list
	return nil
}

func (sr *FakeSessionRepo) RevokeAll(ctx context.Context, subjectID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sr.lock.Lock()
	defer sr.lock.Unlock()

	delete(sr.sessions, subjectID)
	return nil
}

// List returns a copy of the subject's sessions, most recent first.
func (sr *FakeSessionRepo) List(subjectID string) []string {
	sr.lock.RLock()
	defer sr.lock.RUnlock()
	return slices.Clone(sr.sessions[subjectID])
}
