package session

import (
	"context"
	"sync"
	"sync/atomic"
)

// Store is the single source of truth for session state. All mutation goes
// through named transitions; there is no ad-hoc field access from call sites.
// The token field writes through to the configured TokenStorage; user, loading
// and error are memory-only.
type Store struct {
	mu      sync.RWMutex
	snap    Snapshot
	storage TokenStorage
	logger  Logger

	subMu  sync.Mutex
	subs   map[uint64]func(Snapshot)
	subSeq uint64

	// fetchSeq tags identity fetches so a stale, slower response cannot
	// overwrite a newer one.
	fetchSeq atomic.Uint64
}

// NewStore returns a Store backed by the given token storage. A nil storage
// defaults to the in-memory adapter.
func NewStore(storage TokenStorage) *Store {
	return &Store{
		snap:    Snapshot{Phase: PhaseUnauthenticated},
		storage: normalizeStorage(storage),
		logger:  defLogger{},
		subs:    map[uint64]func(Snapshot){},
	}
}

func (s *Store) WithLogger(logger Logger) *Store {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Snapshot returns a read-only copy of the current session state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Subscribe registers fn to run after every settled transition. The returned
// cancel func removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	s.subSeq++
	id := s.subSeq
	s.subs[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// NextIdentitySeq issues the tag for a new identity fetch. Responses carrying
// an older tag are discarded by the ApplyCurrentUser* transitions.
func (s *Store) NextIdentitySeq() uint64 {
	return s.fetchSeq.Add(1)
}

// BeginHydration reads the persisted token. An absent or unreadable token
// leaves the store unauthenticated; a present token moves it to the
// authenticating phase pending backend confirmation.
func (s *Store) BeginHydration(ctx context.Context) string {
	token, err := s.storage.Read(ctx)
	if err != nil {
		s.logger.Warn("token storage read failed, hydrating unauthenticated: %v", err)
		token = ""
	}

	s.mu.Lock()
	if token == "" {
		s.snap = Snapshot{Phase: PhaseUnauthenticated}
	} else {
		s.snap = Snapshot{Phase: PhaseAuthenticating, Token: token}
	}
	snap := s.snap
	s.mu.Unlock()

	s.notify(snap)
	return token
}

// BeginAuthenticating marks a credential exchange in flight and clears the
// previous error. No-op when already authenticated.
func (s *Store) BeginAuthenticating() {
	s.mu.Lock()
	if !canTransition(s.snap.Phase, PhaseAuthenticating) {
		s.mu.Unlock()
		return
	}
	s.snap.Phase = PhaseAuthenticating
	s.snap.Error = ""
	snap := s.snap
	s.mu.Unlock()

	s.notify(snap)
}

// ApplyLoginSuccess transitions to authenticated, persists the token, and
// clears any previous error.
func (s *Store) ApplyLoginSuccess(ctx context.Context, user *User, token string) {
	s.mu.Lock()
	s.snap = Snapshot{
		Phase: PhaseAuthenticated,
		Token: token,
		User:  user,
	}
	snap := s.snap
	s.mu.Unlock()

	if err := s.storage.Write(ctx, token); err != nil {
		s.logger.Warn("token storage write failed: %v", err)
	}

	s.notify(snap)
}

// ApplyLoginFailure transitions to the error phase with a user-facing
// message; token and user are cleared.
func (s *Store) ApplyLoginFailure(ctx context.Context, message string) {
	s.mu.Lock()
	s.snap = Snapshot{
		Phase: PhaseError,
		Error: message,
	}
	snap := s.snap
	s.mu.Unlock()

	s.clearStorage(ctx)
	s.notify(snap)
}

// ApplyLogout unconditionally transitions to unauthenticated. It is
// idempotent and never fails the caller; storage clear errors are only
// logged. Once applied, in-flight identity responses for the old token are
// discarded.
func (s *Store) ApplyLogout(ctx context.Context) {
	s.mu.Lock()
	s.snap = Snapshot{Phase: PhaseUnauthenticated}
	snap := s.snap
	s.mu.Unlock()

	s.clearStorage(ctx)
	s.notify(snap)
}

// ApplyCurrentUserSuccess merges the confirmed user and reports whether the
// response was applied. Stale responses (an older seq, or a token cleared
// since the fetch was issued) are discarded.
func (s *Store) ApplyCurrentUserSuccess(ctx context.Context, seq uint64, user *User) bool {
	s.mu.Lock()
	if seq != s.fetchSeq.Load() || s.snap.Token == "" {
		s.mu.Unlock()
		return false
	}
	s.snap.Phase = PhaseAuthenticated
	s.snap.User = user
	s.snap.Error = ""
	snap := s.snap
	s.mu.Unlock()

	s.notify(snap)
	return true
}

// ApplyCurrentUserFailure fails closed: an unverifiable token must not be
// trusted, so token and user are cleared together. Stale responses are
// discarded the same way as successes.
func (s *Store) ApplyCurrentUserFailure(ctx context.Context, seq uint64) bool {
	s.mu.Lock()
	if seq != s.fetchSeq.Load() || s.snap.Token == "" {
		s.mu.Unlock()
		return false
	}
	s.snap = Snapshot{Phase: PhaseUnauthenticated}
	snap := s.snap
	s.mu.Unlock()

	s.clearStorage(ctx)
	s.notify(snap)
	return true
}

func (s *Store) clearStorage(ctx context.Context) {
	if err := s.storage.Clear(ctx); err != nil {
		s.logger.Warn("token storage clear failed: %v", err)
	}
}

func (s *Store) notify(snap Snapshot) {
	s.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
