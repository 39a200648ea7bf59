package solver

import (
	"tromino/experiments/metrics"
	"tromino/game"
)

type Option func(m *MDP)

// WithLambda sets the discount factor, which must lie in [0, 1).
func WithLambda(lambda float64) Option {
	return func(m *MDP) {
		if lambda >= 0 && lambda < 1 {
			m.lambda = lambda
		}
	}
}

func WithEpsilon(epsilon float64) Option {
	return func(m *MDP) {
		if epsilon > 0 {
			m.epsilon = epsilon
		}
	}
}

func WithMaxIterations(iterations int) Option {
	return func(m *MDP) {
		if iterations > 0 {
			m.maxIterations = iterations
		}
	}
}

// WithProbability sets the probability of the coin dealing an I piece. Games
// replaying the solved policies read it back through MDP.Probability.
func WithProbability(probaI float64) Option {
	return func(m *MDP) {
		if probaI >= 0 && probaI <= 1 {
			m.probaI = probaI
		}
	}
}

func WithReward(reward game.RewardFunc) Option {
	return func(m *MDP) {
		if reward != nil {
			m.reward = reward
		}
	}
}

func WithStrategy(strategy Strategy) Option {
	return func(m *MDP) {
		m.strategy = strategy
	}
}

// WithFullStateSpace solves over every enumerable state instead of the states
// reachable from the initial state.
func WithFullStateSpace() Option {
	return func(m *MDP) {
		m.fullSpace = true
	}
}

func WithMetrics(collector metrics.Collector) Option {
	return func(m *MDP) {
		if collector != nil {
			m.metrics = collector
		}
	}
}
