package session

import (
	"fmt"
	"slices"
	"sync"
)

// maxIDAttempts bounds retries when the id generator collides with a live session.
const maxIDAttempts = 16

// Registry owns the live sessions and their lifetime.
type Registry struct {
	mu       sync.Mutex
	limits   Limits
	rng      Random
	ids      IDGenerator
	sessions map[string]*Session
	order    []string // insertion order, for stable FindJoinable
}

func NewRegistry(limits Limits, rng Random, ids IDGenerator) *Registry {
	return &Registry{
		limits:   limits,
		rng:      rng,
		ids:      ids,
		sessions: make(map[string]*Session),
	}
}

// Create opens a new waiting session with a freshly drawn target.
func (r *Registry) Create() (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.sessions) >= r.limits.MaxConcurrentSessions {
		return nil, ErrCapacityExceeded
	}

	id, err := r.uniqueID()
	if err != nil {
		return nil, err
	}

	span := r.limits.TargetMax - r.limits.TargetMin + 1
	s := newSession(id, r.limits.TargetMin+r.rng.IntN(span), r.limits.MaxPlayersPerSession)
	r.sessions[id] = s
	r.order = append(r.order, id)
	return s, nil
}

func (r *Registry) uniqueID() (string, error) {
	for range maxIDAttempts {
		id := r.ids.NewID()
		if _, taken := r.sessions[id]; !taken && id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w after %d attempts", ErrIDExhausted, maxIDAttempts)
}

// FindJoinable returns the oldest waiting session.
func (r *Registry) FindJoinable() (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.order {
		s := r.sessions[id]
		if s.State() == StateWaiting {
			return s, true
		}
	}
	return nil, false
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Destroy removes a session. Unknown ids are ignored.
func (r *Registry) Destroy(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return
	}
	delete(r.sessions, id)
	r.order = slices.DeleteFunc(r.order, func(v string) bool { return v == id })
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// All returns the live sessions in creation order.
func (r *Registry) All() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Session, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.sessions[id])
	}
	return out
}
