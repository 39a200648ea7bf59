package solver

import (
	"fmt"
	"math"
	"tromino/experiments/metrics"
	"tromino/game"
	"tromino/meta"
	"tromino/utils"

	"github.com/rs/zerolog/log"
)

// MDP solves the placement problem from an initial state by value iteration.
type MDP struct {
	initial       game.State
	lambda        float64
	epsilon       float64
	maxIterations int
	probaI        float64
	reward        game.RewardFunc
	strategy      Strategy
	fullSpace     bool
	metrics       metrics.Collector

	space  *StateSpace
	values []float64
}

// Result is the outcome of a solve. Adversary is empty for the Expectation
// strategy.
type Result struct {
	Actions    ActionPolicy
	Adversary  AdversaryPolicy
	Values     map[game.StateKey]float64
	Iterations int
	Delta      float64
	Converged  bool
	Metric     metrics.SolveMetric
}

// Average returns the mean value over the solved states.
func (r Result) Average() float64 {
	if len(r.Values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range r.Values {
		sum += v
	}
	return sum / float64(len(r.Values))
}

func NewMDP(initial game.State, table game.RewardTable, options ...Option) *MDP {
	m := &MDP{ // Default values
		initial:       initial.Clone(),
		lambda:        meta.LAMBDA,
		epsilon:       meta.EPSILON,
		maxIterations: meta.MAX_ITERATIONS,
		probaI:        meta.ProbaIPiece,
		reward:        game.TableReward(table),
		strategy:      Expectation,
		metrics:       metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// Initial returns the state replays start from.
func (m *MDP) Initial() game.State {
	return m.initial.Clone()
}

// Probability returns the coin probability of an I piece the MDP is solved
// with. Replays of its policies should deal with the same coin.
func (m *MDP) Probability() float64 {
	return m.probaI
}

// StateSpace returns the states of the last solve, building them if needed.
func (m *MDP) StateSpace() *StateSpace {
	if m.space == nil {
		m.space = m.buildStateSpace()
	}
	return m.space
}

func (m *MDP) buildStateSpace() *StateSpace {
	if m.fullSpace {
		states := GenerateAllStates(m.initial.Field.Width(), m.initial.Field.Height())
		if len(states) > 0 {
			return spaceOf(states)
		}
		log.Warn().Msgf("%dx%d field is too large to enumerate, falling back to reachable states",
			m.initial.Field.Width(), m.initial.Field.Height())
	}
	// Both openings are seeded so a replay may deal either first piece.
	return GenerateReachableStates(m.initial, m.initial.WithPiece(m.initial.Next.Other()))
}

// Solve runs value iteration until the largest value change of a sweep drops
// below epsilon or the iteration cap is reached. It panics if a transition
// leaves the state space, which means the state space is not closed under
// the transition function.
func (m *MDP) Solve() Result {
	space := m.StateSpace()
	m.values = make([]float64, space.Len())

	log.Info().Msgf("starting %s value iteration over %d states...", m.strategy, space.Len())
	m.metrics.Start(m.strategy.String(), space.Len())

	result := Result{
		Actions:   make(ActionPolicy),
		Adversary: make(AdversaryPolicy),
	}

	delta := math.Inf(1)
	iterations := 0
	for iterations < m.maxIterations && delta >= m.epsilon {
		delta = 0
		backups := 0
		for j, s := range space.States {
			b, ok := m.backup(s)
			if !ok { // Dead board
				continue
			}
			backups++

			key := space.Keys[j]
			result.Actions[key] = b.action
			if m.strategy != Expectation {
				result.Adversary[key] = b.piece
			}

			delta = max(delta, math.Abs(b.value-m.values[j]))
			m.values[j] = b.value
		}
		iterations++
		m.metrics.AddSweep(delta)
		m.metrics.AddBackups(backups)
		log.Debug().Msgf("i = %d and delta = %g", iterations, delta)
	}

	result.Iterations = iterations
	result.Delta = delta
	result.Converged = delta < m.epsilon
	m.metrics.SetConverged(result.Converged)
	result.Values = make(map[game.StateKey]float64, space.Len())
	for j, key := range space.Keys {
		result.Values[key] = m.values[j]
	}
	result.Metric = m.metrics.Complete()

	log.Info().Msgf("completed %s value iteration after %d iterations (delta=%g, average value=%.4f)",
		m.strategy, iterations, delta, result.Average())
	return result
}

type backup struct {
	value    float64
	action   game.Action
	piece    game.Piece
	branches []float64 // Per piece branch value, adversarial strategies only
}

// backup computes the new value of s from the current value table. The
// second result is false when s has no legal action.
func (m *MDP) backup(s game.State) (backup, bool) {
	actions := s.AvailableActions()
	if len(actions) == 0 {
		return backup{}, false
	}

	// branches[p][k] is the value of action k when piece p follows.
	branches := make([][]float64, len(game.Pieces))
	for p := range branches {
		branches[p] = make([]float64, len(actions))
	}
	for k, a := range actions {
		for p, placed := range s.AllStatesFromAction(a) {
			after := placed.CompleteLines()
			j, ok := m.space.Index[after.Key()]
			if !ok {
				panic(fmt.Sprintf("state cannot be derived into a non-reachable state:\n%s", after))
			}
			branches[p][k] = m.reward(s, placed, after) + m.lambda*m.values[j]
		}
	}

	switch m.strategy {
	case Expectation:
		expected := make([]float64, len(actions))
		for k := range actions {
			expected[k] = m.probaI*branches[game.IPiece][k] + (1-m.probaI)*branches[game.LPiece][k]
		}
		best := utils.ArgMax(expected)
		return backup{value: expected[best], action: actions[best]}, true
	case MinMax, MinAvg:
		values := make([]float64, len(game.Pieces))
		for p, branch := range branches {
			if m.strategy == MinMax {
				values[p] = branch[utils.ArgMax(branch)]
			} else {
				values[p] = utils.Mean(branch)
			}
		}
		// The adversary deals the piece that leaves the player the lowest value
		piece := game.IPiece
		if values[game.LPiece] < values[game.IPiece] {
			piece = game.LPiece
		}
		branch := branches[piece]
		return backup{
			value:    values[piece],
			action:   actions[utils.ArgMax(branch)],
			piece:    piece,
			branches: values,
		}, true
	default:
		panic(fmt.Sprintf("unexpected strategy %d", m.strategy))
	}
}

// ActionValueIteration solves for the placement policy against the fair coin.
func ActionValueIteration(initial game.State, table game.RewardTable, lambda, epsilon float64, maxIterations int) ActionPolicy {
	m := NewMDP(initial, table, WithLambda(lambda), WithEpsilon(epsilon), WithMaxIterations(maxIterations))
	return m.Solve().Actions
}

// TrominoValueIterationMinMax solves for the adversary that deals the piece
// minimizing the player's best action value.
func TrominoValueIterationMinMax(initial game.State, table game.RewardTable, lambda, epsilon float64, maxIterations int) AdversaryPolicy {
	m := NewMDP(initial, table, WithStrategy(MinMax),
		WithLambda(lambda), WithEpsilon(epsilon), WithMaxIterations(maxIterations))
	return m.Solve().Adversary
}

// TrominoValueIterationMinAvg solves for the adversary that deals the piece
// minimizing the player's mean action value.
func TrominoValueIterationMinAvg(initial game.State, table game.RewardTable, lambda, epsilon float64, maxIterations int) AdversaryPolicy {
	m := NewMDP(initial, table, WithStrategy(MinAvg),
		WithLambda(lambda), WithEpsilon(epsilon), WithMaxIterations(maxIterations))
	return m.Solve().Adversary
}

// TrominoValueIterationGapAvg is TrominoValueIterationMinAvg with holes left
// on the board penalized by gapWeight.
func TrominoValueIterationGapAvg(initial game.State, table game.RewardTable, gapWeight, lambda, epsilon float64, maxIterations int) AdversaryPolicy {
	m := NewMDP(initial, table, WithStrategy(MinAvg), WithReward(game.GapReward(table, gapWeight)),
		WithLambda(lambda), WithEpsilon(epsilon), WithMaxIterations(maxIterations))
	return m.Solve().Adversary
}
