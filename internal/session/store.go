package session

import (
	"context"
	"errors"
	"sync"

	"onestop-realtime/pkg/log"
	"onestop-realtime/pkg/storage"
)

// Config holds the session store dependencies.
type Config struct {
	Storage  storage.Storage
	Client   IdentityClient
	Logger   log.Logger
	TokenKey string
}

type watcher struct {
	id int
	fn func(credential string)
}

type store struct {
	cfg Config

	mu         sync.Mutex
	credential string
	identity   Identity
	loading    bool

	nextWatcherID int
	watchers      []watcher
}

// New creates a session Store. The store starts anonymous; call Init to
// restore a persisted session.
func New(cfg Config) Store {
	return &store{
		cfg:      cfg,
		identity: Anonymous(),
	}
}

func (s *store) Init(ctx context.Context) error {
	token, err := s.cfg.Storage.Get(s.cfg.TokenKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.cfg.Logger.Warnf(ctx, "Failed to read persisted credential: %v", err)
		}
		return s.LoadIdentity(ctx)
	}

	s.mu.Lock()
	s.credential = token
	s.mu.Unlock()

	if err := s.LoadIdentity(ctx); err != nil {
		return err
	}
	s.notifyIfCurrent(token)
	return nil
}

func (s *store) SetCredential(ctx context.Context, token string) error {
	s.mu.Lock()
	if token == s.credential {
		s.mu.Unlock()
		return nil
	}
	s.credential = token
	if token == "" {
		s.identity = Anonymous()
	}
	s.mu.Unlock()

	s.persist(ctx, token)

	// Resolve the identity before announcing the change so that watchers
	// (the channel manager) observe a credential whose identity is known.
	// A rejected fetch clears the session inside LoadIdentity and notifies
	// with the empty credential instead.
	if err := s.LoadIdentity(ctx); err != nil {
		return err
	}
	s.notifyIfCurrent(token)
	return nil
}

func (s *store) LoadIdentity(ctx context.Context) error {
	s.mu.Lock()
	token := s.credential
	if token == "" {
		s.identity = Anonymous()
		s.loading = false
		s.mu.Unlock()
		return nil
	}
	s.loading = true
	s.mu.Unlock()

	identity, err := s.cfg.Client.FetchIdentity(ctx, token)

	s.mu.Lock()
	if s.credential != token {
		// Credential changed while the fetch was outstanding; the result
		// belongs to a session that no longer exists.
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		s.loading = false
		s.mu.Unlock()
		s.cfg.Logger.Warnf(ctx, "Identity fetch failed, clearing session: %v", err)
		return s.Logout(ctx)
	}
	s.identity = identity
	s.loading = false
	s.mu.Unlock()

	s.cfg.Logger.Infof(ctx, "Identity resolved: id=%s role=%s", identity.ID, identity.Role)
	return nil
}

func (s *store) Logout(ctx context.Context) error {
	s.mu.Lock()
	hadCredential := s.credential != ""
	s.credential = ""
	s.identity = Anonymous()
	s.loading = false
	watchers := s.snapshotWatchersLocked()
	s.mu.Unlock()

	if !hadCredential {
		return nil
	}

	s.persist(ctx, "")
	s.notify(watchers, "")
	return nil
}

func (s *store) Credential() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credential
}

func (s *store) Identity() Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

func (s *store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *store) Subscribe(fn func(credential string)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextWatcherID
	s.nextWatcherID++
	s.watchers = append(s.watchers, watcher{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, w := range s.watchers {
			if w.id == id {
				s.watchers = append(s.watchers[:i], s.watchers[i+1:]...)
				break
			}
		}
	}
}

// persist mirrors the credential to durable storage. Mirror failures are
// logged, not surfaced; the in-memory session stays authoritative.
func (s *store) persist(ctx context.Context, token string) {
	var err error
	if token == "" {
		err = s.cfg.Storage.Remove(s.cfg.TokenKey)
	} else {
		err = s.cfg.Storage.Set(s.cfg.TokenKey, token)
	}
	if err != nil {
		s.cfg.Logger.Errorf(ctx, "Failed to persist credential: %v", err)
	}
}

func (s *store) snapshotWatchersLocked() []watcher {
	watchers := make([]watcher, len(s.watchers))
	copy(watchers, s.watchers)
	return watchers
}

func (s *store) notify(watchers []watcher, token string) {
	for _, w := range watchers {
		w.fn(token)
	}
}

// notifyIfCurrent notifies watchers with token unless the credential moved on
// in the meantime (for example a rejected identity fetch cleared it).
func (s *store) notifyIfCurrent(token string) {
	s.mu.Lock()
	if s.credential != token {
		s.mu.Unlock()
		return
	}
	watchers := s.snapshotWatchersLocked()
	s.mu.Unlock()

	s.notify(watchers, token)
}
