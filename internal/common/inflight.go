package common

import (
	"errors"
	"sync"
)

// ErrInFlight is returned when the same operation is already running.
var ErrInFlight = errors.New("operation already in progress")

// InflightGuard admits at most one holder per key.
type InflightGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewInflightGuard() *InflightGuard {
	return &InflightGuard{held: make(map[string]struct{})}
}

// Acquire claims key. The returned release func must be called exactly once.
func (g *InflightGuard) Acquire(key string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.held[key]; busy {
		return nil, ErrInFlight
	}
	g.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.held, key)
			g.mu.Unlock()
		})
	}, nil
}

// Busy reports whether key is currently held.
func (g *InflightGuard) Busy(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.held[key]
	return busy
}
