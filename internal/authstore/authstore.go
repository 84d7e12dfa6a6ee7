// Package authstore holds the process-wide view of the authenticated
// principal. Independently mounted consumers (public surface, back-office)
// observe one source of truth through a subscribe-and-replay interface
// instead of racing their own upstream listeners.
package authstore

import "sync"

// Principal is the authenticated user, or nil when signed out.
type Principal struct {
	UID           string `json:"uid"`
	Email         string `json:"email,omitempty"`
	DisplayName   string `json:"displayName,omitempty"`
	PhotoURL      string `json:"photoUrl,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
}

// State is the store's full (user, loading) pair, always delivered together.
type State struct {
	User    *Principal `json:"user"`
	Loading bool       `json:"loading"`
}

type Store struct {
	mu      sync.Mutex
	user    *Principal
	loading bool
	subs    map[int]func(State)
	nextSub int
}

// New returns a store in the loading state: no user known yet.
func New() *Store {
	return &Store{loading: true, subs: map[int]func(State){}}
}

// Current returns the store's (user, loading) pair.
func (s *Store) Current() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{User: s.user, Loading: s.loading}
}

// SetUser replaces the principal and notifies every subscriber synchronously
// with the full new pair.
func (s *Store) SetUser(u *Principal) {
	s.mu.Lock()
	s.user = u
	state := State{User: s.user, Loading: s.loading}
	subs := s.snapshotSubs()
	s.mu.Unlock()
	for _, fn := range subs {
		fn(state)
	}
}

// SetLoading flips the loading flag and notifies every subscriber.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	state := State{User: s.user, Loading: s.loading}
	subs := s.snapshotSubs()
	s.mu.Unlock()
	for _, fn := range subs {
		fn(state)
	}
}

// Subscribe registers a listener and synchronously replays the current pair
// to it before returning, so a listener subscribing after the last mutation
// still observes it. The returned unsubscribe function is idempotent.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs[id] = fn
	state := State{User: s.user, Loading: s.loading}
	s.mu.Unlock()

	fn(state)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// SubscriberCount reports the number of registered listeners.
func (s *Store) SubscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// snapshotSubs copies the subscriber list in a stable order so notification
// runs outside the lock. Caller holds s.mu.
func (s *Store) snapshotSubs() []func(State) {
	out := make([]func(State), 0, len(s.subs))
	for id := 1; id <= s.nextSub; id++ {
		if fn, ok := s.subs[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}
