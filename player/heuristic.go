package player

import (
	"fmt"
	"math"
	"tromino/game"
)

// Heuristic is a greedy player scoring each placement by a linear combination
// of board features of the placed board: aggregate height, complete lines,
// holes and bumpiness, in that order.
type Heuristic struct {
	Weights [4]float64
}

func NewHeuristic(weights [4]float64) *Heuristic {
	return &Heuristic{Weights: weights}
}

func (h *Heuristic) Evaluate(f game.Field) float64 {
	score := h.Weights[0] * float64(f.AggregateHeight())
	score += h.Weights[1] * float64(f.CompleteLines())
	score += h.Weights[2] * float64(f.Holes())
	score += h.Weights[3] * float64(f.Bumpiness())
	return score
}

// ChooseAction returns the first action with the highest score.
func (h *Heuristic) ChooseAction(s game.State) (game.Action, bool) {
	best := game.NullAction
	bestScore := math.Inf(-1)
	for _, action := range s.AvailableActions() {
		placed := s.ApplyActionTromino(action, s.Next)
		if score := h.Evaluate(placed.Field); score > bestScore {
			bestScore = score
			best = action
		}
	}
	return best, !best.IsNull()
}

func (h *Heuristic) String() string {
	return fmt.Sprintf("heuristic[%.2f, %.2f, %.2f, %.2f]", h.Weights[0], h.Weights[1], h.Weights[2], h.Weights[3])
}
