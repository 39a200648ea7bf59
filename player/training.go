package player

import (
	"fmt"
	"math"
	"strings"
	"tromino/engine"
	"tromino/game"
	"tromino/utils"

	"github.com/rs/zerolog/log"
)

// Arms are the heuristic weight sets the trainer chooses between.
var Arms = [][4]float64{
	{-0.51, 0.76, -0.36, -0.18}, // Balanced
	{-0.8, 0.5, -0.2, -0.1},     // Height averse
	{-0.2, 0.8, -0.8, -0.3},     // Line clearing
	{-0.4, 0.6, -0.1, -0.8},     // Bumpiness averse
	{-1.0, 1.0, -1.0, -1.0},     // Aggressive
	{-0.1, 0.5, -0.5, -0.5},     // Cautious
}

// Trainer is a UCB1 multi-armed bandit over heuristic weight arms. Every game
// is played from an empty field against the adversary, and the game score is
// the arm's reward.
type Trainer struct {
	arms    [][4]float64
	plays   []int
	rewards []float64
	total   int

	game      *engine.Game
	initial   game.State
	adversary engine.Adversary
}

func NewTrainer(g *engine.Game, adversary engine.Adversary) *Trainer {
	field := game.NewField(g.State.Field.Width(), g.State.Field.Height())
	return &Trainer{
		arms:      Arms,
		plays:     make([]int, len(Arms)),
		rewards:   make([]float64, len(Arms)),
		game:      g,
		initial:   game.NewState(field, g.State.Next),
		adversary: adversary,
	}
}

func (t *Trainer) Train(games int) {
	for i := 0; i < games; i++ {
		arm := t.selectArm()
		score, _, _ := t.game.Play(t.initial, NewHeuristic(t.arms[arm]), t.adversary)

		t.plays[arm]++
		t.rewards[arm] += float64(score)
		t.total++

		if (i+1)%100 == 0 {
			log.Info().Msgf("training game %d/%d completed", i+1, games)
		}
	}
}

// selectArm plays every arm once, then picks the arm with the highest upper
// confidence bound.
func (t *Trainer) selectArm() int {
	for arm, plays := range t.plays {
		if plays == 0 {
			return arm
		}
	}
	ucb := make([]float64, len(t.arms))
	for arm := range t.arms {
		mean := t.rewards[arm] / float64(t.plays[arm])
		ucb[arm] = mean + math.Sqrt(2*math.Log(float64(t.total))/float64(t.plays[arm]))
	}
	return utils.ArgMax(ucb)
}

// BestWeights returns the arm with the highest mean reward. The second result
// is false before any game is played.
func (t *Trainer) BestWeights() ([4]float64, bool) {
	best := -1
	bestMean := math.Inf(-1)
	for arm, plays := range t.plays {
		if plays == 0 {
			continue
		}
		if mean := t.rewards[arm] / float64(plays); mean > bestMean {
			bestMean = mean
			best = arm
		}
	}
	if best < 0 {
		return [4]float64{}, false
	}
	return t.arms[best], true
}

func (t *Trainer) Plays() []int {
	return append([]int(nil), t.plays...)
}

func (t *Trainer) String() string {
	weights, ok := t.BestWeights()
	if !ok {
		return "No weights found."
	}
	parts := make([]string, len(weights))
	for i, w := range weights {
		parts[i] = fmt.Sprintf("%.2f", w)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
