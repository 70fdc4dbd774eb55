package server

import (
	"sync"

	"golang.org/x/time/rate"
)

// limiters hands out one token bucket per player.
type limiters struct {
	mu    sync.Mutex
	every rate.Limit
	burst int
	byID  map[string]*rate.Limiter
}

func newLimiters(every rate.Limit, burst int) *limiters {
	return &limiters{every: every, burst: burst, byID: make(map[string]*rate.Limiter)}
}

// allow takes a token for playerID. Lookup and Allow share the lock so a
// concurrent forget never hands out a fresh bucket mid-call.
func (l *limiters) allow(playerID string) bool {
	if l.every == rate.Inf {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.byID[playerID]
	if !ok {
		lim = rate.NewLimiter(l.every, l.burst)
		l.byID[playerID] = lim
	}
	return lim.Allow()
}

// forget drops limiters that have refilled completely; they carry no state
// a fresh limiter would not.
func (l *limiters) forget() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, lim := range l.byID {
		if lim.Tokens() >= float64(l.burst) {
			delete(l.byID, id)
		}
	}
}
