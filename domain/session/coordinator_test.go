package session

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textsFor(ns []Notification, playerID string) []string {
	var out []string
	for _, n := range ns {
		if n.PlayerID == playerID {
			out = append(out, n.Text)
		}
	}
	return out
}

func TestCoordinatorTwoPlayersStartGame(t *testing.T) {
	c := newTestCoordinator(targets(5))

	first := c.Join("p1", "Ann")
	assert.Equal(t, Joined, first.Outcome)
	assert.Equal(t, "s1", first.SessionID)
	assert.False(t, first.Started)
	assert.Equal(t, []string{"✅ You have joined game session s1."}, textsFor(first.Notifications, "p1"))

	s, err := c.sessions.Get("s1")
	require.NoError(t, err)
	assert.Equal(t, StateWaiting, s.State())

	second := c.Join("p2", "Bob")
	assert.Equal(t, Joined, second.Outcome)
	assert.Equal(t, "s1", second.SessionID)
	assert.True(t, second.Started)
	assert.Equal(t, StateActive, s.State())
	assert.Equal(t, []Player{{ID: "p1", Name: "Ann"}, {ID: "p2", Name: "Bob"}}, s.Players())

	started := "🎯 The game has started! Guess a number between 1 and 10."
	assert.Equal(t, []string{started, "🔢 Make a guess:"}, textsFor(second.Notifications, "p1"))
	assert.Equal(t, []string{"✅ You have joined game session s1.", started, "🔢 Make a guess:"}, textsFor(second.Notifications, "p2"))

	prompt := second.Notifications[len(second.Notifications)-1]
	require.Len(t, prompt.Choices, 10)
	assert.Equal(t, Choice{Label: "1", Token: "guess_1"}, prompt.Choices[0])
	assert.Equal(t, Choice{Label: "10", Token: "guess_10"}, prompt.Choices[9])
}

func TestCoordinatorGuessFlow(t *testing.T) {
	c := newTestCoordinator(targets(5))
	c.Join("p1", "Ann")
	c.Join("p2", "Bob")

	r := c.Guess("p1", 3)
	assert.Equal(t, WrongGuess, r.Outcome)
	assert.Equal(t, HintHigher, r.Hint)
	assert.Equal(t, []string{"❌ Wrong guess! ⬆️ Go higher!"}, textsFor(r.Notifications, "p1"))
	assert.Len(t, r.Notifications, 1, "wrong guesses stay private")

	r = c.Guess("p2", 9)
	assert.Equal(t, WrongGuess, r.Outcome)
	assert.Equal(t, HintLower, r.Hint)

	r = c.Guess("p1", 5)
	assert.Equal(t, Won, r.Outcome)
	assert.Equal(t, Player{ID: "p1", Name: "Ann"}, r.Winner)
	assert.Equal(t, 5, r.Target)
	assert.Equal(t, []string{"🎉 Ann, you won! The number was 5."}, textsFor(r.Notifications, "p1"))
	assert.Equal(t, []string{"🏁 Ann guessed the number 5. The game is over."}, textsFor(r.Notifications, "p2"))

	_, err := c.sessions.Get("s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Zero(t, c.players.Len())

	assert.Equal(t, Joined, c.Join("p1", "Ann").Outcome)
	assert.Equal(t, Joined, c.Join("p2", "Bob").Outcome)
}

func TestCoordinatorGuessBeforeStart(t *testing.T) {
	c := newTestCoordinator(targets(5))
	c.Join("p1", "Ann")

	r := c.Guess("p1", 5)
	assert.Equal(t, NotActive, r.Outcome)
	assert.Equal(t, []string{"⚠️ The game is not active!"}, textsFor(r.Notifications, "p1"))
	assert.Equal(t, 1, c.sessions.Len())

	stranger := c.Guess("stranger", 5)
	assert.Equal(t, NotInGame, stranger.Outcome)
	assert.Equal(t, []string{"⚠️ You are not in an active game!"}, textsFor(stranger.Notifications, "stranger"))
}

func TestCoordinatorJoinRetriesFullWaitingSession(t *testing.T) {
	// A roster cap below the start threshold leaves a waiting session full.
	limits := DefaultLimits()
	limits.MinPlayers = 3
	limits.MaxPlayersPerSession = 2
	c := NewCoordinator(limits, NewRegistry(limits, targets(5), &sequenceIDs{}), NewPlayerIndex(), discardLogger())

	assert.Equal(t, "s1", c.Join("p1", "Ann").SessionID)
	assert.Equal(t, "s1", c.Join("p2", "Bob").SessionID)

	r := c.Join("p3", "Cid")
	assert.Equal(t, Joined, r.Outcome)
	assert.Equal(t, "s2", r.SessionID)

	s1, err := c.sessions.Get("s1")
	require.NoError(t, err)
	assert.Equal(t, 2, s1.Size())
	assert.Equal(t, StateWaiting, s1.State())
}

func TestCoordinatorJoinRetryWithoutCapacity(t *testing.T) {
	limits := DefaultLimits()
	limits.MinPlayers = 3
	limits.MaxPlayersPerSession = 2
	limits.MaxConcurrentSessions = 1
	c := NewCoordinator(limits, NewRegistry(limits, targets(5), &sequenceIDs{}), NewPlayerIndex(), discardLogger())

	c.Join("p1", "Ann")
	c.Join("p2", "Bob")

	r := c.Join("p3", "Cid")
	assert.Equal(t, NoCapacity, r.Outcome)
	assert.Equal(t, 1, c.sessions.Len())
	_, ok := c.players.SessionOf("p3")
	assert.False(t, ok)
}

func TestCoordinatorJoinTwice(t *testing.T) {
	c := newTestCoordinator(targets(5))
	c.Join("p1", "Ann")

	r := c.Join("p1", "Ann")
	assert.Equal(t, AlreadyInSession, r.Outcome)
	assert.Equal(t, "s1", r.SessionID)
	assert.Equal(t, []string{"⚠️ You are already in a game session!"}, textsFor(r.Notifications, "p1"))

	s, _ := c.sessions.Get("s1")
	assert.Equal(t, 1, s.Size())
}

func TestCoordinatorLeaveBeforeStartFreesSession(t *testing.T) {
	c := newTestCoordinator(targets(5))
	c.Join("p1", "Ann")

	r := c.Leave("p1")
	assert.Equal(t, Left, r.Outcome)
	assert.True(t, r.Destroyed)
	assert.Equal(t, []string{"🚪 You have left the game."}, textsFor(r.Notifications, "p1"))
	assert.Zero(t, c.sessions.Len())

	again := c.Join("p1", "Ann")
	assert.Equal(t, Joined, again.Outcome)
	assert.Equal(t, "s2", again.SessionID)
}

func TestCoordinatorLeaveActiveSessionKeepsPlaying(t *testing.T) {
	c := newTestCoordinator(targets(5))
	c.Join("p1", "Ann")
	c.Join("p2", "Bob")

	r := c.Leave("p2")
	assert.Equal(t, Left, r.Outcome)
	assert.False(t, r.Destroyed)
	assert.Equal(t, []string{"🚪 Bob has left the game."}, textsFor(r.Notifications, "p1"))

	s, err := c.sessions.Get("s1")
	require.NoError(t, err)
	assert.True(t, s.Active())
	assert.Equal(t, 1, s.Size())

	assert.Equal(t, Won, c.Guess("p1", 5).Outcome)
}

func TestCoordinatorLeaveNotInSession(t *testing.T) {
	c := newTestCoordinator(targets(5))
	r := c.Leave("p1")
	assert.Equal(t, NotInSession, r.Outcome)
	assert.Equal(t, []string{"⚠️ You are not in any game session."}, textsFor(r.Notifications, "p1"))
}

func TestCoordinatorNoCapacity(t *testing.T) {
	c := newTestCoordinator(targets(5))
	// Each pair fills and activates one session.
	for i := range 6 {
		require.Equal(t, Joined, c.Join(fmt.Sprintf("p%d", i), "P").Outcome)
	}
	require.Equal(t, 3, c.sessions.Len())

	r := c.Join("late", "Late")
	assert.Equal(t, NoCapacity, r.Outcome)
	assert.Equal(t, []string{"⚠️ Maximum game sessions reached. Try again later."}, textsFor(r.Notifications, "late"))
	_, ok := c.players.SessionOf("late")
	assert.False(t, ok)
}

func TestCoordinatorFillsWaitingSessionFirst(t *testing.T) {
	limits := DefaultLimits()
	limits.MinPlayers = 3
	limits.MaxPlayersPerSession = 3
	c := NewCoordinator(limits, NewRegistry(limits, targets(5), &sequenceIDs{}), NewPlayerIndex(), discardLogger())

	for _, p := range []string{"a", "b", "c"} {
		assert.Equal(t, "s1", c.Join(p, p).SessionID)
	}
	assert.Equal(t, "s2", c.Join("d", "d").SessionID)
}

func TestCoordinatorStaleMapping(t *testing.T) {
	c := newTestCoordinator(targets(5))
	require.NoError(t, c.players.Assign("ghost", "gone"))

	assert.Equal(t, NotInGame, c.Guess("ghost", 1).Outcome)
	_, ok := c.players.SessionOf("ghost")
	assert.False(t, ok)

	require.NoError(t, c.players.Assign("ghost", "gone"))
	assert.Equal(t, NotInSession, c.Leave("ghost").Outcome)
	_, ok = c.players.SessionOf("ghost")
	assert.False(t, ok)
}

func TestCoordinatorSessions(t *testing.T) {
	c := newTestCoordinator(targets(5))
	c.Join("p1", "Ann")
	c.Join("p2", "Bob")
	c.Join("p3", "Cid")

	got := c.Sessions()
	require.Len(t, got, 2)
	assert.Equal(t, SessionInfo{ID: "s1", State: StateActive, Players: []Player{{"p1", "Ann"}, {"p2", "Bob"}}}, got[0])
	assert.Equal(t, SessionInfo{ID: "s2", State: StateWaiting, Players: []Player{{"p3", "Cid"}}}, got[1])
}

// checkInvariants asserts exclusivity, capacity and non-empty sessions.
func checkInvariants(t *testing.T, c *Coordinator) {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	limits := c.limits
	all := c.sessions.All()
	assert.LessOrEqual(t, len(all), limits.MaxConcurrentSessions)

	seen := map[string]string{}
	for _, s := range all {
		assert.Positive(t, s.Size(), "session %s is empty", s.ID)
		assert.LessOrEqual(t, s.Size(), limits.MaxPlayersPerSession)
		if s.Size() >= limits.MinPlayers {
			assert.True(t, s.Active(), "session %s reached min players but is waiting", s.ID)
		}
		for _, p := range s.Players() {
			prev, dup := seen[p.ID]
			assert.False(t, dup, "player %s in %s and %s", p.ID, prev, s.ID)
			seen[p.ID] = s.ID

			sid, ok := c.players.SessionOf(p.ID)
			assert.True(t, ok)
			assert.Equal(t, s.ID, sid)
		}
	}
	assert.Equal(t, len(seen), c.players.Len())
}

func TestCoordinatorInvariantsUnderRandomActions(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	c := newTestCoordinator(NewSeededRandom(3, 5))

	wasActive := map[string]bool{}
	for range 2000 {
		p := fmt.Sprintf("p%d", rng.IntN(20))
		switch rng.IntN(3) {
		case 0:
			c.Join(p, p)
		case 1:
			c.Leave(p)
		case 2:
			c.Guess(p, 1+rng.IntN(10))
		}
		checkInvariants(t, c)

		for _, info := range c.Sessions() {
			if wasActive[info.ID] {
				assert.Equal(t, StateActive, info.State, "session %s reverted", info.ID)
			}
			if info.State == StateActive {
				wasActive[info.ID] = true
			}
		}
	}
}

func TestCoordinatorConcurrentRequests(t *testing.T) {
	c := newTestCoordinator(NewSeededRandom(1, 1))

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rng := rand.New(rand.NewPCG(uint64(w), 99))
			for range 500 {
				p := fmt.Sprintf("p%d", rng.IntN(16))
				switch rng.IntN(3) {
				case 0:
					c.Join(p, p)
				case 1:
					c.Leave(p)
				default:
					c.Guess(p, 1+rng.IntN(10))
				}
			}
		}()
	}
	wg.Wait()

	checkInvariants(t, c)
}
