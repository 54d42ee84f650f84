package session

import (
	"context"
	"sync"
	"time"
)

// Store keeps one State per session id and hands out exclusive access to it.
// Different sessions never block each other.
type Store struct {
	mu      sync.Mutex
	entries map[int64]*entry
	now     func() time.Time
}

type entry struct {
	lock     chan struct{}
	state    State
	lastUsed time.Time
	// refs counts holders and waiters; referenced entries are never evicted
	refs int
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		entries: make(map[int64]*entry),
		now:     time.Now,
	}
}

// Acquire waits for exclusive access to the session and returns its state
// along with a release func. A missing session is created zeroed. If ctx ends
// first the session is left untouched and ctx.Err() is returned.
func (s *Store) Acquire(ctx context.Context, id int64) (*State, func(), error) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok {
		e = &entry{lock: make(chan struct{}, 1), lastUsed: s.now()}
		s.entries[id] = e
	}
	e.refs++
	s.mu.Unlock()

	select {
	case e.lock <- struct{}{}:
	case <-ctx.Done():
		s.mu.Lock()
		e.refs--
		s.mu.Unlock()
		return nil, nil, ctx.Err()
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			s.mu.Lock()
			e.lastUsed = s.now()
			e.refs--
			s.mu.Unlock()
			<-e.lock
		})
	}
	return &e.state, release, nil
}

// Snapshot returns a copy of an existing session's state. Unlike Acquire it
// never creates a session.
func (s *Store) Snapshot(ctx context.Context, id int64) (State, bool) {
	s.mu.Lock()
	_, ok := s.entries[id]
	s.mu.Unlock()
	if !ok {
		return State{}, false
	}

	st, release, err := s.Acquire(ctx, id)
	if err != nil {
		return State{}, false
	}
	defer release()
	return st.Clone(), true
}

// EvictIdle drops sessions nobody holds or waits for that were last used
// more than ttl ago. It returns the number of evicted sessions.
func (s *Store) EvictIdle(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-ttl)
	evicted := 0
	for id, e := range s.entries {
		if e.refs == 0 && e.lastUsed.Before(cutoff) {
			delete(s.entries, id)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of tracked sessions
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
