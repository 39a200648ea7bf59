package solver

import (
	"tromino/game"
)

// StateSpace is an ordered set of states, indexed by key. It seeds the value
// table of a solve: every state starts at value 0.
type StateSpace struct {
	States []game.State
	Keys   []game.StateKey
	Index  map[game.StateKey]int
}

func newStateSpace(capacity int) *StateSpace {
	return &StateSpace{
		States: make([]game.State, 0, capacity),
		Keys:   make([]game.StateKey, 0, capacity),
		Index:  make(map[game.StateKey]int, capacity),
	}
}

// add appends s unless an equal state is already present.
func (sp *StateSpace) add(s game.State) bool {
	key := s.Key()
	if _, ok := sp.Index[key]; ok {
		return false
	}
	sp.Index[key] = len(sp.States)
	sp.States = append(sp.States, s)
	sp.Keys = append(sp.Keys, key)
	return true
}

func (sp *StateSpace) Len() int {
	return len(sp.States)
}

func (sp *StateSpace) Contains(s game.State) bool {
	_, ok := sp.Index[s.Key()]
	return ok
}

// Values returns the zero-valued table over every state in the space.
func (sp *StateSpace) Values() map[game.StateKey]float64 {
	values := make(map[game.StateKey]float64, len(sp.Keys))
	for _, key := range sp.Keys {
		values[key] = 0
	}
	return values
}

// GenerateAllStates enumerates every occupancy of a width x height field
// crossed with both pieces. Fields of 64 cells or more cannot be enumerated
// with a bitmask and yield an empty result.
func GenerateAllStates(width, height int) []game.State {
	cells := width * height
	if cells <= 0 || cells >= 64 {
		return nil
	}
	total := uint64(1) << cells
	states := make([]game.State, 0, total*uint64(len(game.Pieces)))
	for mask := uint64(0); mask < total; mask++ {
		field := game.FieldFromMask(width, height, mask)
		for i, piece := range game.Pieces {
			f := field
			if i > 0 {
				f = field.Clone()
			}
			states = append(states, game.NewState(f, piece))
		}
	}
	return states
}

// successors returns the states reached from s by one placement of its next
// piece followed by line clears, for every action and every following piece.
func successors(s game.State) []game.State {
	var next []game.State
	for _, a := range s.AvailableActions() {
		for _, placed := range s.AllStatesFromAction(a) {
			next = append(next, placed.CompleteLines())
		}
	}
	return next
}

// GenerateReachableStates runs a breadth-first search from the seeds over
// placements and line clears. States are ordered by discovery.
func GenerateReachableStates(seeds ...game.State) *StateSpace {
	space := newStateSpace(1024)
	queue := []game.State{}
	for _, seed := range seeds {
		if space.add(seed) {
			queue = append(queue, seed)
		}
	}

	for head := 0; head < len(queue); head++ {
		for _, next := range successors(queue[head]) {
			if space.add(next) {
				queue = append(queue, next)
			}
		}
	}
	return space
}

func spaceOf(states []game.State) *StateSpace {
	space := newStateSpace(len(states))
	for _, s := range states {
		space.add(s)
	}
	return space
}
