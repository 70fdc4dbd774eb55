package session

import (
	"errors"
	"fmt"
)

// Limits are fixed at process start.
type Limits struct {
	MinPlayers            int
	MaxPlayersPerSession  int
	MaxConcurrentSessions int

	// TargetMin and TargetMax bound the secret number.
	TargetMin int
	TargetMax int

	// GuessMin and GuessMax bound the numbers offered in the guess prompt.
	// They intentionally differ from the target range.
	GuessMin int
	GuessMax int
}

func DefaultLimits() Limits {
	return Limits{
		MinPlayers:            2,
		MaxPlayersPerSession:  5,
		MaxConcurrentSessions: 3,
		TargetMin:             1,
		TargetMax:             8,
		GuessMin:              1,
		GuessMax:              10,
	}
}

// Validate reports limits that would make a session impossible to fill or play.
func (l Limits) Validate() error {
	var errs []error
	if l.MinPlayers < 1 {
		errs = append(errs, fmt.Errorf("min players must be at least 1, got %d", l.MinPlayers))
	}
	if l.MaxPlayersPerSession < l.MinPlayers {
		errs = append(errs, fmt.Errorf("max players per session (%d) below min players (%d)", l.MaxPlayersPerSession, l.MinPlayers))
	}
	if l.MaxConcurrentSessions < 1 {
		errs = append(errs, fmt.Errorf("max concurrent sessions must be at least 1, got %d", l.MaxConcurrentSessions))
	}
	if l.TargetMin > l.TargetMax {
		errs = append(errs, fmt.Errorf("target range [%d, %d] is empty", l.TargetMin, l.TargetMax))
	}
	if l.GuessMin > l.GuessMax {
		errs = append(errs, fmt.Errorf("guess range [%d, %d] is empty", l.GuessMin, l.GuessMax))
	}
	return errors.Join(errs...)
}
