package service

import (
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
)

type session struct {
	id        snowflake.ID
	invoice   invoicedomain.Invoice
	createdAt time.Time
	updatedAt time.Time
}

// snapshot is a value copy of a session taken under the store lock.
// Callers only ever see snapshots, never the live session, so reads
// cannot race with a concurrent mutation of the same draft.
type snapshot struct {
	id        snowflake.ID
	invoice   invoicedomain.Invoice
	createdAt time.Time
	updatedAt time.Time
}

func snapshotOf(sess *session) snapshot {
	return snapshot{
		id:        sess.id,
		invoice:   sess.invoice.Clone(),
		createdAt: sess.createdAt,
		updatedAt: sess.updatedAt,
	}
}

// Store holds live draft sessions in memory. Drafts are editing state, not
// records: they are never persisted and disappear when idle or discarded.
type Store struct {
	mu       sync.Mutex
	sessions map[snowflake.ID]*session
}

func NewStore() *Store {
	return &Store{sessions: make(map[snowflake.ID]*session)}
}

func (s *Store) put(sess *session) snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.id] = sess
	return snapshotOf(sess)
}

// mutate runs fn against the session under the store lock and bumps the
// session's updated time, so each mutation also refreshes idle expiry.
func (s *Store) mutate(id snowflake.ID, now time.Time, fn func(*session) error) (snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return snapshot{}, errSessionMissing
	}
	if err := fn(sess); err != nil {
		return snapshot{}, err
	}
	sess.updatedAt = now
	return snapshotOf(sess), nil
}

func (s *Store) get(id snowflake.ID) (snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return snapshot{}, false
	}
	return snapshotOf(sess), true
}

func (s *Store) delete(id snowflake.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

// Len reports the live session count.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// PurgeIdle removes sessions whose last update is older than maxIdle and
// reports how many were removed.
func (s *Store) PurgeIdle(now time.Time, maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}
	cutoff := now.Add(-maxIdle)
	removed := 0
	s.mu.Lock()
	for id, sess := range s.sessions {
		if sess.updatedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	s.mu.Unlock()
	return removed
}
