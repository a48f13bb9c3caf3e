package reconcile

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/guildroster/roster_backend/config"
	"github.com/sirupsen/logrus"
)

// Store keeps sessions in memory, scoped by guild.
type Store struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	idleTimeout time.Duration
	now         func() time.Time
}

func NewStore(idleTimeout time.Duration) *Store {
	if idleTimeout <= 0 {
		idleTimeout = 2 * time.Hour
	}
	return &Store{
		sessions:    make(map[string]*Session),
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

// NewStoreFromEnv reads IMPORT_SESSION_IDLE_MINUTES (default 120).
func NewStoreFromEnv() *Store {
	return NewStore(time.Duration(config.IntFromEnv("IMPORT_SESSION_IDLE_MINUTES", 120)) * time.Minute)
}

func (st *Store) create(guildId string, teamId int, reference string, opts Options) *Session {
	s := newSession(uuid.NewString(), guildId, teamId, reference, opts, st.now)
	st.mu.Lock()
	st.sessions[s.id] = s
	st.mu.Unlock()
	return s
}

// Get hides sessions of other guilds behind ErrSessionNotFound.
func (st *Store) Get(guildId string, id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok || s.guildId != guildId {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (st *Store) Delete(guildId string, id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok || s.guildId != guildId {
		return ErrSessionNotFound
	}
	delete(st.sessions, id)
	return nil
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep drops sessions idle for longer than the timeout and returns how many.
func (st *Store) Sweep() int {
	cutoff := st.now().Add(-st.idleTimeout)

	st.mu.Lock()
	defer st.mu.Unlock()
	removed := 0
	for id, s := range st.sessions {
		if s.idle(cutoff) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (st *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := st.Sweep(); n > 0 {
				config.GetLogger().WithFields(logrus.Fields{
					"module":  "reconcile",
					"removed": n,
				}).Info("swept idle import sessions")
			}
		}
	}
}
