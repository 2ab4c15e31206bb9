package automaton

import "sync"

// frontier is the scratch space for one simulation. seen[s] holds the level
// (plus one) at which state s was last admitted, so membership is reset by
// advancing the level instead of clearing the slice.
type frontier struct {
	seen    []uint32
	current []State
	next    []State
	succ    []State
}

var frontierPool = sync.Pool{
	New: func() any { return &frontier{} },
}

func acquireFrontier(numStates int) *frontier {
	f := frontierPool.Get().(*frontier)
	if cap(f.seen) < numStates+1 {
		f.seen = make([]uint32, numStates+1)
	} else {
		f.seen = f.seen[:numStates+1]
		clear(f.seen)
	}
	f.current = f.current[:0]
	f.next = f.next[:0]
	return f
}

func releaseFrontier(f *frontier) {
	frontierPool.Put(f)
}

// admit adds s to list unless it was already admitted at this level.
func (f *frontier) admit(list []State, s State, level uint32) []State {
	if f.seen[s] == level {
		return list
	}
	f.seen[s] = level
	return append(list, s)
}

// close expands f.current with every state reachable through ε-transitions.
// f.current doubles as the work queue: states appended during the walk are
// visited by the same loop.
func (f *frontier) close(a Automaton, level uint32) {
	for head := 0; head < len(f.current); head++ {
		f.succ = a.Epsilon(f.current[head], f.succ[:0])
		for _, s := range f.succ {
			f.current = f.admit(f.current, s, level)
		}
	}
}

// step consumes r from every state in f.current and makes the result the
// new f.current.
func (f *frontier) step(a Automaton, r rune, level uint32) {
	f.next = f.next[:0]
	for _, s := range f.current {
		f.succ = a.Step(s, r, f.succ[:0])
		for _, t := range f.succ {
			f.next = f.admit(f.next, t, level)
		}
	}
	f.current, f.next = f.next, f.current
}

func (f *frontier) accepting(a Automaton) bool {
	for _, s := range f.current {
		if a.IsAccept(s) {
			return true
		}
	}
	return false
}

// ShortestPrefix simulates a over candidate one input rune at a time and
// returns the length of the shortest non-empty accepted prefix.
//
// Every level is fully ε-closed before the next rune is consumed, so the
// first level holding an accepting state is the shortest accepted prefix.
// The simulation stops early once no state survives.
func ShortestPrefix(a Automaton, candidate []rune) (int, bool) {
	f := acquireFrontier(a.NumStates())
	defer releaseFrontier(f)

	level := uint32(1)
	f.current = f.admit(f.current, a.Start(), level)
	f.close(a, level)

	for i, r := range candidate {
		level++
		f.step(a, r, level)
		if len(f.current) == 0 {
			return 0, false
		}
		f.close(a, level)
		if f.accepting(a) {
			return i + 1, true
		}
	}
	return 0, false
}

// Run reports whether a accepts the whole input.
func Run(a Automaton, input []rune) bool {
	f := acquireFrontier(a.NumStates())
	defer releaseFrontier(f)

	level := uint32(1)
	f.current = f.admit(f.current, a.Start(), level)
	f.close(a, level)

	for _, r := range input {
		level++
		f.step(a, r, level)
		if len(f.current) == 0 {
			return false
		}
		f.close(a, level)
	}
	return f.accepting(a)
}
