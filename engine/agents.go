package engine

import (
	"fmt"
	"tromino/experiments/metrics"
	"tromino/game"
	"tromino/meta"
	"tromino/solver"

	"golang.org/x/exp/rand"
)

// PolicyAgent replays a solved action policy.
type PolicyAgent struct {
	Policy solver.ActionPolicy
}

func NewPolicyAgent(policy solver.ActionPolicy) *PolicyAgent {
	return &PolicyAgent{Policy: policy}
}

// ChooseAction panics when a live state is missing from the policy: the replay
// has left the states the policy was solved over.
func (a *PolicyAgent) ChooseAction(s game.State) (game.Action, bool) {
	if len(s.AvailableActions()) == 0 {
		return game.NullAction, false
	}
	action, ok := a.Policy.Lookup(s)
	if !ok {
		panic(fmt.Sprintf("the state:\n%s\nhas no associated action in the provided policy", s))
	}
	return action, true
}

func (a *PolicyAgent) String() string {
	return "policy"
}

// RandomAgent plays a uniformly random legal action.
type RandomAgent struct {
	rng *rand.Rand
}

func NewRandomAgent(rng *rand.Rand) *RandomAgent {
	return &RandomAgent{rng: rng}
}

func (a *RandomAgent) ChooseAction(s game.State) (game.Action, bool) {
	actions := s.AvailableActions()
	if len(actions) == 0 {
		return game.NullAction, false
	}
	return actions[a.rng.Intn(len(actions))], true
}

func (a *RandomAgent) String() string {
	return "random"
}

// CoinAdversary deals an I piece with probability ProbaI.
type CoinAdversary struct {
	ProbaI float64

	rng *rand.Rand
}

func NewCoinAdversary(rng *rand.Rand) *CoinAdversary {
	return &CoinAdversary{ProbaI: meta.ProbaIPiece, rng: rng}
}

func (a *CoinAdversary) NextPiece(s game.State) game.Piece {
	return game.CoinPiece(a.rng, a.ProbaI)
}

func (a *CoinAdversary) String() string {
	return "coin"
}

// PolicyAdversary deals the piece of a solved adversary policy, looked up by
// the exact current state. States without an entry fall back to the coin.
type PolicyAdversary struct {
	Name   string
	Policy solver.AdversaryPolicy
	ProbaI float64

	rng *rand.Rand
}

func NewPolicyAdversary(name string, policy solver.AdversaryPolicy, rng *rand.Rand) *PolicyAdversary {
	return &PolicyAdversary{Name: name, Policy: policy, ProbaI: meta.ProbaIPiece, rng: rng}
}

func (a *PolicyAdversary) NextPiece(s game.State) game.Piece {
	if piece, ok := a.Policy.Lookup(s); ok {
		return piece
	}
	return game.CoinPiece(a.rng, a.ProbaI)
}

func (a *PolicyAdversary) String() string {
	return a.Name
}

// PlayPolicy replays policy against the adversary policy from initial. An
// empty adversary policy replays against the game's coin.
func (g *Game) PlayPolicy(initial game.State, policy solver.ActionPolicy, adversary solver.AdversaryPolicy) (int, metrics.GameMetric, []metrics.StepMetric) {
	a := NewPolicyAdversary("adversary", adversary, g.rng)
	a.ProbaI = g.ProbaI
	return g.Play(initial, NewPolicyAgent(policy), a)
}
