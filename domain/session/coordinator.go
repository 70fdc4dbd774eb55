package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

type JoinOutcome int

const (
	Joined JoinOutcome = iota
	AlreadyInSession
	NoCapacity
)

func (o JoinOutcome) String() string {
	switch o {
	case Joined:
		return "joined"
	case AlreadyInSession:
		return "already_in_session"
	case NoCapacity:
		return "no_capacity"
	default:
		return "unknown"
	}
}

type JoinResult struct {
	Outcome   JoinOutcome
	SessionID string
	// Started is set when this join activated the session.
	Started       bool
	Notifications []Notification
}

type LeaveOutcome int

const (
	Left LeaveOutcome = iota
	NotInSession
)

func (o LeaveOutcome) String() string {
	if o == Left {
		return "left"
	}
	return "not_in_session"
}

type LeaveResult struct {
	Outcome   LeaveOutcome
	SessionID string
	// Destroyed is set when the leave emptied the session.
	Destroyed     bool
	Notifications []Notification
}

type GuessOutcome int

const (
	Won GuessOutcome = iota
	WrongGuess
	NotInGame
	NotActive
)

func (o GuessOutcome) String() string {
	switch o {
	case Won:
		return "won"
	case WrongGuess:
		return "wrong"
	case NotInGame:
		return "not_in_game"
	case NotActive:
		return "not_active"
	default:
		return "unknown"
	}
}

type GuessResult struct {
	Outcome       GuessOutcome
	SessionID     string
	Hint          Hint
	Winner        Player
	Target        int
	Notifications []Notification
}

// SessionInfo is a read-only view of a live session. It never carries the target.
type SessionInfo struct {
	ID      string
	State   State
	Players []Player
}

// Coordinator serializes join, leave and guess requests against the registry,
// the player index and the affected session. Each call holds one lock for its
// whole duration, so no caller observes a half-applied request.
type Coordinator struct {
	mu       sync.Mutex
	limits   Limits
	sessions *Registry
	players  *PlayerIndex
	log      *slog.Logger
}

func NewCoordinator(limits Limits, sessions *Registry, players *PlayerIndex, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		limits:   limits,
		sessions: sessions,
		players:  players,
		log:      logger,
	}
}

func (c *Coordinator) Limits() Limits { return c.limits }

// Join places the player in the oldest waiting session, opening a new one
// when none has room.
func (c *Coordinator) Join(playerID, name string) JoinResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	if sid, ok := c.players.SessionOf(playerID); ok {
		return JoinResult{
			Outcome:       AlreadyInSession,
			SessionID:     sid,
			Notifications: []Notification{notify(playerID, msgAlreadyInGame)},
		}
	}

	// A waiting session that is already full gets one retry, straight to a new session.
	for attempt := 0; attempt < 2; attempt++ {
		s, err := c.allocate(attempt == 0)
		if err != nil {
			c.log.Warn("no session available", slog.String("player_id", playerID), slog.String("error", err.Error()))
			break
		}

		if err := s.AddPlayer(playerID, name); err != nil {
			c.discardIfEmpty(s)
			if errors.Is(err, ErrSessionFull) {
				continue
			}
			c.log.Error("add player", slog.String("session_id", s.ID), slog.String("player_id", playerID), slog.String("error", err.Error()))
			break
		}
		if err := c.players.Assign(playerID, s.ID); err != nil {
			s.RemovePlayer(playerID)
			c.discardIfEmpty(s)
			return JoinResult{
				Outcome:       AlreadyInSession,
				Notifications: []Notification{notify(playerID, msgAlreadyInGame)},
			}
		}
		c.log.Info("player joined", slog.String("session_id", s.ID), slog.String("player_id", playerID), slog.Int("players", s.Size()))

		res := JoinResult{
			Outcome:       Joined,
			SessionID:     s.ID,
			Notifications: []Notification{notify(playerID, fmt.Sprintf(msgJoined, s.ID))},
		}
		if s.Activate(c.limits.MinPlayers) {
			res.Started = true
			res.Notifications = append(res.Notifications, c.startNotifications(s)...)
			c.log.Info("game started", slog.String("session_id", s.ID), slog.Int("players", s.Size()))
		}
		return res
	}

	return JoinResult{
		Outcome:       NoCapacity,
		Notifications: []Notification{notify(playerID, msgNoCapacity)},
	}
}

func (c *Coordinator) allocate(lookup bool) (*Session, error) {
	if lookup {
		if s, ok := c.sessions.FindJoinable(); ok {
			return s, nil
		}
	}
	s, err := c.sessions.Create()
	if err != nil {
		return nil, err
	}
	c.log.Info("session created", slog.String("session_id", s.ID), slog.Int("sessions", c.sessions.Len()))
	return s, nil
}

func (c *Coordinator) discardIfEmpty(s *Session) {
	if s.Size() == 0 {
		c.sessions.Destroy(s.ID)
	}
}

func (c *Coordinator) startNotifications(s *Session) []Notification {
	roster := s.Players()
	started := fmt.Sprintf(msgStarted, c.limits.GuessMin, c.limits.GuessMax)
	choices := c.limits.guessChoices()

	out := make([]Notification, 0, 2*len(roster))
	for _, p := range roster {
		out = append(out, notify(p.ID, started))
	}
	for _, p := range roster {
		out = append(out, notify(p.ID, msgGuessPrompt, choices...))
	}
	return out
}

// Leave removes the player from their session, destroying it once empty.
// An active session keeps running with whoever remains.
func (c *Coordinator) Leave(playerID string) LeaveResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	notIn := LeaveResult{
		Outcome:       NotInSession,
		Notifications: []Notification{notify(playerID, msgNotInSession)},
	}

	sid, ok := c.players.SessionOf(playerID)
	if !ok {
		return notIn
	}
	s, err := c.sessions.Get(sid)
	if err != nil {
		// stale mapping: the session is already gone
		c.players.Unassign(playerID)
		return notIn
	}

	leaver, _ := s.Player(playerID)
	empty := s.RemovePlayer(playerID)
	c.players.Unassign(playerID)

	res := LeaveResult{
		Outcome:       Left,
		SessionID:     sid,
		Notifications: []Notification{notify(playerID, msgLeft)},
	}
	for _, p := range s.Players() {
		res.Notifications = append(res.Notifications, notify(p.ID, fmt.Sprintf(msgOtherLeft, leaver.Name)))
	}
	c.log.Info("player left", slog.String("session_id", sid), slog.String("player_id", playerID), slog.Int("players", s.Size()))

	if empty {
		c.sessions.Destroy(sid)
		res.Destroyed = true
		c.log.Info("session destroyed", slog.String("session_id", sid), slog.String("reason", "empty"))
	}
	return res
}

// Guess resolves a guess. The first correct guess ends the session and frees
// every member to join again.
func (c *Coordinator) Guess(playerID string, value int) GuessResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	notIn := GuessResult{
		Outcome:       NotInGame,
		Notifications: []Notification{notify(playerID, msgNotInActiveGame)},
	}

	sid, ok := c.players.SessionOf(playerID)
	if !ok {
		return notIn
	}
	s, err := c.sessions.Get(sid)
	if err != nil {
		c.players.Unassign(playerID)
		return notIn
	}

	r, err := s.ResolveGuess(playerID, value)
	switch {
	case errors.Is(err, ErrNotActive):
		return GuessResult{
			Outcome:       NotActive,
			SessionID:     sid,
			Notifications: []Notification{notify(playerID, msgNotActive)},
		}
	case err != nil:
		c.log.Error("resolve guess", slog.String("session_id", sid), slog.String("player_id", playerID), slog.String("error", err.Error()))
		notIn.SessionID = sid
		return notIn
	case !r.Correct:
		return GuessResult{
			Outcome:       WrongGuess,
			SessionID:     sid,
			Hint:          r.Hint,
			Notifications: []Notification{notify(playerID, hintText(r.Hint))},
		}
	}

	res := GuessResult{
		Outcome:   Won,
		SessionID: sid,
		Winner:    r.Winner,
		Target:    r.Target,
		Notifications: []Notification{
			notify(playerID, fmt.Sprintf(msgWon, r.Winner.Name, r.Target)),
		},
	}
	for _, p := range s.Players() {
		if p.ID != playerID {
			res.Notifications = append(res.Notifications, notify(p.ID, fmt.Sprintf(msgOtherWon, r.Winner.Name, r.Target)))
		}
		c.players.Unassign(p.ID)
	}
	c.sessions.Destroy(sid)
	c.log.Info("session won",
		slog.String("session_id", sid),
		slog.String("player_id", playerID),
		slog.Int("target", r.Target),
	)
	return res
}

// Sessions lists the live sessions in creation order.
func (c *Coordinator) Sessions() []SessionInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	all := c.sessions.All()
	out := make([]SessionInfo, 0, len(all))
	for _, s := range all {
		out = append(out, SessionInfo{ID: s.ID, State: s.State(), Players: s.Players()})
	}
	return out
}
