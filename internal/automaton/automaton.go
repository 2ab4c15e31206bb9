package automaton

// State represents a state in a nondeterministic finite automaton.
type State uint32

// DeadState is the absent transition target. No automaton ever enters it.
const DeadState State = 0

// Automaton is a nondeterministic automaton over runes with ε-transitions.
// Simulation (see Run and ShortestPrefix) tracks sets of states level by
// level, so implementations only describe single transitions.
//
// Properties:
//   - Finite: states are numbered 1..NumStates()
//   - Successor lists are appended to dst to avoid allocation
//   - Transitions are pure; an Automaton is safe for concurrent simulation
type Automaton interface {
	// Start returns the initial state.
	Start() State

	// NumStates returns the number of live states.
	NumStates() int

	// Step appends the successors of state on input r to dst.
	Step(state State, r rune, dst []State) []State

	// Epsilon appends the successors of state reachable without input to dst.
	Epsilon(state State, dst []State) []State

	// IsAccept returns true if the state is an accepting state.
	IsAccept(state State) bool
}
