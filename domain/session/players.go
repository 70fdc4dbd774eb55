package session

import "sync"

// PlayerIndex maps each player to the single session they belong to.
type PlayerIndex struct {
	mu      sync.RWMutex
	players map[string]string // player id -> session id
}

func NewPlayerIndex() *PlayerIndex {
	return &PlayerIndex{players: make(map[string]string)}
}

// Assign records membership. A player already mapped anywhere, including
// to sessionID itself, is rejected.
func (x *PlayerIndex) Assign(playerID, sessionID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if _, ok := x.players[playerID]; ok {
		return ErrAlreadyAssigned
	}
	x.players[playerID] = sessionID
	return nil
}

func (x *PlayerIndex) Unassign(playerID string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.players, playerID)
}

func (x *PlayerIndex) SessionOf(playerID string) (string, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	id, ok := x.players[playerID]
	return id, ok
}

func (x *PlayerIndex) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.players)
}
