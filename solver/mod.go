package solver

import (
	"fmt"
	"tromino/game"
	"tromino/utils"
)

// Strategy decides how the two piece branches of a state are combined.
type Strategy int

const (
	// Expectation averages the branches with the coin probability and
	// maximizes over actions.
	Expectation Strategy = iota
	// MinMax lets an adversary pick the branch with the lowest best-action
	// value.
	MinMax
	// MinAvg lets an adversary pick the branch with the lowest mean action
	// value.
	MinAvg
)

var strategyNames = []string{"expectation", "minmax", "minavg"}

func (s Strategy) String() string {
	if s < 0 || int(s) >= len(strategyNames) {
		return "unknown"
	}
	return strategyNames[s]
}

func ParseStrategy(name string) (Strategy, error) {
	i := utils.FindIndex(strategyNames, name)
	if i < 0 {
		return 0, fmt.Errorf("unknown strategy %q, expected one of %v", name, strategyNames)
	}
	return Strategy(i), nil
}

// ActionPolicy maps a state to the placement to play.
type ActionPolicy map[game.StateKey]game.Action

func (p ActionPolicy) Lookup(s game.State) (game.Action, bool) {
	a, ok := p[s.Key()]
	return a, ok
}

// AdversaryPolicy maps a state to the piece an adversary deals after the
// state's next piece is placed.
type AdversaryPolicy map[game.StateKey]game.Piece

func (p AdversaryPolicy) Lookup(s game.State) (game.Piece, bool) {
	piece, ok := p[s.Key()]
	return piece, ok
}
