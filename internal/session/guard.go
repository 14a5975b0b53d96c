package session

import (
	"sync"

	"github.com/google/uuid"
)

// Request keys used by Session.
const (
	KeyGenerate = "generate"
	KeySelect   = "select"
)

// Guard tracks in-flight requests by key. A key can be held by one
// request at a time; later attempts are rejected rather than queued.
type Guard struct {
	mu       sync.Mutex
	inflight map[string]string
}

// NewGuard creates an empty Guard.
func NewGuard() *Guard {
	return &Guard{inflight: make(map[string]string)}
}

// Acquire claims key and returns a token identifying the request along
// with a release func. It returns ErrRequestInFlight if key is held.
func (g *Guard) Acquire(key string) (string, func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.inflight[key]; busy {
		return "", nil, ErrRequestInFlight
	}
	token := uuid.NewString()
	g.inflight[key] = token

	var once sync.Once
	release := func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			if g.inflight[key] == token {
				delete(g.inflight, key)
			}
		})
	}
	return token, release, nil
}

// Held reports whether key is currently claimed.
func (g *Guard) Held(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.inflight[key]
	return ok
}

// Active returns the number of requests in flight.
func (g *Guard) Active() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.inflight)
}
