package session

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// stubRandom returns the queued values in order, then repeats the last one.
type stubRandom struct {
	mu     sync.Mutex
	values []int
	i      int
}

func (r *stubRandom) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.values) == 0 {
		return 0
	}
	v := r.values[min(r.i, len(r.values)-1)]
	r.i++
	return v % n
}

// targets builds a stub that makes the registry draw the given targets under DefaultLimits.
func targets(ts ...int) *stubRandom {
	r := &stubRandom{}
	for _, t := range ts {
		r.values = append(r.values, t-DefaultLimits().TargetMin)
	}
	return r
}

// sequenceIDs hands out the queued ids, then s1, s2, ...
type sequenceIDs struct {
	mu  sync.Mutex
	ids []string
	n   int
}

func (g *sequenceIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.ids) > 0 {
		id := g.ids[0]
		g.ids = g.ids[1:]
		return id
	}
	g.n++
	return fmt.Sprintf("s%d", g.n)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCoordinator(rng Random) *Coordinator {
	limits := DefaultLimits()
	return NewCoordinator(limits, NewRegistry(limits, rng, &sequenceIDs{}), NewPlayerIndex(), discardLogger())
}
