// meta/meta.go
package meta

// ProbaIPiece is the probability that the coin picks an I piece.
const ProbaIPiece = 0.5

// MAX_ACTIONS caps the number of placements in a single game.
const MAX_ACTIONS = 10000

// FIELD_WIDTH and FIELD_HEIGHT are the default board dimensions.
const FIELD_WIDTH = 4
const FIELD_HEIGHT = 4

// LAMBDA is the default discount factor.
const LAMBDA = 0.9

// EPSILON is the default value iteration convergence threshold.
const EPSILON = 1e-8

// MAX_ITERATIONS defines the default value iteration sweep cap.
const MAX_ITERATIONS = 1000

// GO_ROUTINES defines the number of goroutines for sweeps.
const GO_ROUTINES = 8

// GAMES defines the number of evaluation games per policy.
const GAMES = 100

// TRACED_GAMES bounds the games per config and adversary whose steps are
// written as trajectories.
const TRACED_GAMES = 5
