package session

// State is the lifecycle position of a session.
type State int

const (
	StateWaiting State = iota
	StateActive
	// StateEnded is terminal. Ended sessions are removed from the registry
	// in the same operation, so it is only seen as a transition outcome.
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StateActive:
		return "active"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Hint tells a player which way to move after a wrong guess.
type Hint string

const (
	HintHigher Hint = "higher"
	HintLower  Hint = "lower"
)

type Player struct {
	ID   string
	Name string
}

// Session is one round of the guessing game.
//
// Session is not safe for concurrent use. All mutation goes through the
// Coordinator, which holds its lock for the whole request.
type Session struct {
	ID string

	target     int
	maxPlayers int
	players    map[string]*Player
	order      []string // join order, used for stable notification ordering
	state      State
}

func newSession(id string, target, maxPlayers int) *Session {
	return &Session{
		ID:         id,
		target:     target,
		maxPlayers: maxPlayers,
		players:    make(map[string]*Player),
		state:      StateWaiting,
	}
}

func (s *Session) State() State { return s.state }

func (s *Session) Active() bool { return s.state == StateActive }

func (s *Session) Size() int { return len(s.players) }

func (s *Session) Full() bool { return len(s.players) >= s.maxPlayers }

func (s *Session) Has(playerID string) bool {
	_, ok := s.players[playerID]
	return ok
}

func (s *Session) Player(playerID string) (Player, bool) {
	p, ok := s.players[playerID]
	if !ok {
		return Player{}, false
	}
	return *p, true
}

// Players returns the roster in join order.
func (s *Session) Players() []Player {
	out := make([]Player, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.players[id])
	}
	return out
}

// AddPlayer puts a player on the roster.
func (s *Session) AddPlayer(playerID, name string) error {
	if s.Has(playerID) {
		return ErrAlreadyAssigned
	}
	if s.Full() {
		return ErrSessionFull
	}
	s.players[playerID] = &Player{ID: playerID, Name: name}
	s.order = append(s.order, playerID)
	return nil
}

// RemovePlayer drops a player from the roster and reports whether the
// session is now empty. Removing from an active session keeps it active.
func (s *Session) RemovePlayer(playerID string) (empty bool) {
	if _, ok := s.players[playerID]; ok {
		delete(s.players, playerID)
		for i, id := range s.order {
			if id == playerID {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	return len(s.players) == 0
}

// Activate moves a waiting session to active once the roster reaches
// minPlayers. It reports true only on the transition itself.
func (s *Session) Activate(minPlayers int) bool {
	if s.state != StateWaiting || len(s.players) < minPlayers {
		return false
	}
	s.state = StateActive
	return true
}

// Resolution is the outcome of a resolved guess.
type Resolution struct {
	Correct bool
	Hint    Hint
	Winner  Player
	Target  int
}

// ResolveGuess compares value with the secret target. A correct guess ends
// the session; the caller is responsible for tearing it down.
func (s *Session) ResolveGuess(playerID string, value int) (Resolution, error) {
	if s.state != StateActive {
		return Resolution{}, ErrNotActive
	}
	p, ok := s.players[playerID]
	if !ok {
		return Resolution{}, ErrNotInSession
	}
	switch {
	case value == s.target:
		s.state = StateEnded
		return Resolution{Correct: true, Winner: *p, Target: s.target}, nil
	case value < s.target:
		return Resolution{Hint: HintHigher}, nil
	default:
		return Resolution{Hint: HintLower}, nil
	}
}
