package session

import "errors"

var (
	ErrCapacityExceeded = errors.New("session capacity exceeded")
	ErrAlreadyAssigned  = errors.New("player already assigned to a session")
	ErrSessionFull      = errors.New("session full")
	ErrSessionNotFound  = errors.New("session not found")
	ErrNotInSession     = errors.New("player not in session")
	ErrNotActive        = errors.New("session not active")
	ErrIDExhausted      = errors.New("could not generate a unique session id")
)
