// Package redisrepo is the Redis implementation of sessions.Registry.
//
// Layout per subject:
//
//	sessions:{<subject>}            LIST of session ids, most recent first
//	session:{<subject>}:<sid>       STRING side record (value = subject), TTL = session TTL
//
// Recording (push, evict, trim) and revoke-all each run as one Lua script, so no reader
// observes a half-applied change. All keys of a subject share a cluster hash tag.
package redisrepo

import (
	"context"
	"slices"
	"time"

	apperrors "github.com/jrsteele09/go-identity-server/internal/errors"
	"github.com/jrsteele09/go-identity-server/sessions"
	"github.com/redis/go-redis/v9"
)

var _ sessions.Registry = (*Repo)(nil)

var recordScript = redis.NewScript(`
local list = KEYS[1]
local prefix = ARGV[1]
local sid = ARGV[2]
local cap = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])
local subject = ARGV[5]

redis.call('LREM', list, '0', sid)
redis.call('LPUSH', list, sid)
local evicted = redis.call('LRANGE', list, tostring(cap), '-1')
for _, old in ipairs(evicted) do
  redis.call('DEL', prefix .. old)
end
redis.call('LTRIM', list, '0', tostring(cap - 1))

if ttl > 0 then
  redis.call('SET', prefix .. sid, subject, 'PX', ARGV[4])
  redis.call('PEXPIRE', list, ARGV[4])
else
  redis.call('SET', prefix .. sid, subject)
end
return #evicted
`)

var revokeAllScript = redis.NewScript(`
local list = KEYS[1]
local prefix = ARGV[1]
local sids = redis.call('LRANGE', list, '0', '-1')
for _, sid in ipairs(sids) do
  redis.call('DEL', prefix .. sid)
end
redis.call('DEL', list)
return #sids
`)

type Repo struct {
	client      redis.UniversalClient
	maxSessions int
	sessionTTL  time.Duration
}

type Option func(*Repo)

// WithSessionTTL expires side records and idle lists after ttl, normally the refresh token TTL.
func WithSessionTTL(ttl time.Duration) Option {
	return func(r *Repo) {
		r.sessionTTL = ttl
	}
}

func New(client redis.UniversalClient, maxSessions int, options ...Option) (*Repo, error) {
	if err := sessions.ValidateMaxSessions(maxSessions); err != nil {
		return nil, err
	}
	r := &Repo{
		client:      client,
		maxSessions: maxSessions,
	}
	for _, opt := range options {
		opt(r)
	}
	return r, nil
}

func (r *Repo) RecordSession(ctx context.Context, subjectID, sessionID string) error {
	err := recordScript.Run(ctx, r.client,
		[]string{sessions.SubjectSessionsKey(subjectID)},
		sessions.SessionKeyPrefix(subjectID),
		sessionID,
		r.maxSessions,
		r.sessionTTL.Milliseconds(),
		subjectID,
	).Err()
	return apperrors.Unavailable(err, "redisrepo.RecordSession")
}

func (r *Repo) IsActive(ctx context.Context, subjectID, sessionID string) (bool, error) {
	list, err := r.List(ctx, subjectID)
	if err != nil {
		return false, err
	}
	return slices.Contains(list, sessionID), nil
}

func (r *Repo) Revoke(ctx context.Context, subjectID, sessionID string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, sessions.SubjectSessionsKey(subjectID), 0, sessionID)
		pipe.Del(ctx, sessions.SessionKey(subjectID, sessionID))
		return nil
	})
	return apperrors.Unavailable(err, "redisrepo.Revoke")
}

func (r *Repo) RevokeAll(ctx context.Context, subjectID string) error {
	err := revokeAllScript.Run(ctx, r.client,
		[]string{sessions.SubjectSessionsKey(subjectID)},
		sessions.SessionKeyPrefix(subjectID),
	).Err()
	return apperrors.Unavailable(err, "redisrepo.RevokeAll")
}

// List returns the subject's session ids, most recent first.
func (r *Repo) List(ctx context.Context, subjectID string) ([]string, error) {
	list, err := r.client.LRange(ctx, sessions.SubjectSessionsKey(subjectID), 0, -1).Result()
	if err != nil {
		return nil, apperrors.Unavailable(err, "redisrepo.List")
	}
	return list, nil
}

func (r *Repo) Ping(ctx context.Context) error {
	return apperrors.Unavailable(r.client.Ping(ctx).Err(), "redisrepo.Ping")
}
