// Package guard keeps at most one provisioning sequence running per cart action.
package guard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Guard marks a key as in flight until released or expired
type Guard interface {
	// Acquire returns false if key is already held. The token identifies
	// this holder to Release.
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	// Release frees key only while token still holds it
	Release(ctx context.Context, key, token string) error
}

type lease struct {
	token     string
	expiresAt time.Time
}

// InMemoryGuard is a single-instance Guard
type InMemoryGuard struct {
	mu      sync.Mutex
	entries map[string]lease
	now     func() time.Time
}

// NewInMemoryGuard creates a new in-memory guard
func NewInMemoryGuard() *InMemoryGuard {
	return &InMemoryGuard{
		entries: make(map[string]lease),
		now:     time.Now,
	}
}

func (g *InMemoryGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if held, ok := g.entries[key]; ok && now.Before(held.expiresAt) {
		return "", false, nil
	}

	// Drop expired entries while the lock is held
	for k, held := range g.entries {
		if !now.Before(held.expiresAt) {
			delete(g.entries, k)
		}
	}

	token := uuid.NewString()
	g.entries[key] = lease{token: token, expiresAt: now.Add(ttl)}
	return token, true, nil
}

func (g *InMemoryGuard) Release(ctx context.Context, key, token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if held, ok := g.entries[key]; ok && held.token == token {
		delete(g.entries, key)
	}
	return nil
}

// Size returns the number of held keys
func (g *InMemoryGuard) Size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries)
}

var _ Guard = (*InMemoryGuard)(nil)
