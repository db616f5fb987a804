package realtime

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Channel is one user's live push connection.
type Channel interface {
	Send(event string, payload interface{}) error
	Close() error
}

// Registry tracks the single active push channel per user. A second connect
// for the same user displaces the first (last connect wins).
type Registry struct {
	mu    sync.RWMutex
	conns map[string]Channel
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]Channel)}
}

// Register installs the channel as the user's active connection, closing any
// channel it replaces.
func (r *Registry) Register(userID string, ch Channel) {
	r.mu.Lock()
	prev := r.conns[userID]
	r.conns[userID] = ch
	r.mu.Unlock()

	if prev != nil && prev != ch {
		if err := prev.Close(); err != nil {
			logrus.WithField("userID", userID).Debugf("Closing displaced channel: %v", err)
		}
	}
}

// Lookup returns the user's active channel, if any.
func (r *Registry) Lookup(userID string) (Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ch, ok := r.conns[userID]
	return ch, ok
}

// Connected reports whether the user currently has a push channel.
func (r *Registry) Connected(userID string) bool {
	_, ok := r.Lookup(userID)
	return ok
}

// Unregister scans for the channel and removes it. A channel that has already
// been displaced by a reconnect is left alone, so the disconnect of a stale
// connection never tears down its successor.
func (r *Registry) Unregister(ch Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for userID, current := range r.conns {
		if current == ch {
			delete(r.conns, userID)
			return
		}
	}
}
