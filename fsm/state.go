// Package fsm provides per-conversation finite-state-machine context for
// maxbot handlers. Each conversation is addressed by a StorageKey and owns
// a free-form data map plus an optional named state.
package fsm

import "fmt"

// State is a named position inside a StatesGroup. Its canonical name is
// "<group>:<name>"; that string is what gets persisted and compared.
//
// The zero State means "no state".
type State struct {
	name string
}

// None is the absence of a state.
var None = State{}

// RawState wraps an already-canonical name ("Group:name") in a State. It is
// meant for interop with values read back from storage; prefer states built
// through NewStatesGroup.
func RawState(name string) State { return State{name: name} }

// String returns the canonical name, or "" for None.
func (s State) String() string { return s.name }

// IsNone reports whether the state is the zero "no state" value.
func (s State) IsNone() bool { return s.name == "" }

// Is compares the state against a canonical name.
func (s State) Is(name string) bool { return s.name == name }

// StatesGroup is a fixed set of states sharing a group name. Groups are
// built once at startup; the constructor registers every state up front, so
// enumeration is a plain slice copy.
type StatesGroup struct {
	name   string
	states []State
}

// NewStatesGroup creates a group and its states. State names must be unique
// within the group.
//
//	wizard := fsm.NewStatesGroup("Wizard", "step1", "step2")
//	wizard.State("step1") // State "Wizard:step1"
func NewStatesGroup(name string, stateNames ...string) *StatesGroup {
	g := &StatesGroup{name: name, states: make([]State, 0, len(stateNames))}
	seen := make(map[string]struct{}, len(stateNames))
	for _, n := range stateNames {
		if _, dup := seen[n]; dup {
			panic(fmt.Sprintf("fsm: duplicate state %q in group %q", n, name))
		}
		seen[n] = struct{}{}
		g.states = append(g.states, State{name: name + ":" + n})
	}
	return g
}

// Name returns the group name.
func (g *StatesGroup) Name() string { return g.name }

// State looks up a state by its short name. It panics on an unknown name,
// which surfaces typos at startup rather than as silently unmatched
// handlers.
func (g *StatesGroup) State(name string) State {
	full := g.name + ":" + name
	for _, s := range g.states {
		if s.name == full {
			return s
		}
	}
	panic(fmt.Sprintf("fsm: unknown state %q in group %q", name, g.name))
}

// States returns every state in declaration order.
func (g *StatesGroup) States() []State {
	out := make([]State, len(g.states))
	copy(out, g.states)
	return out
}

// Contains reports whether the canonical name belongs to this group.
func (g *StatesGroup) Contains(name string) bool {
	for _, s := range g.states {
		if s.name == name {
			return true
		}
	}
	return false
}
