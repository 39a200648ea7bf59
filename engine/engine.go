package engine

import (
	"fmt"
	"time"
	"tromino/experiments/metrics"
	"tromino/game"
	"tromino/meta"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// Agent picks the placement of the state's next piece. The second result is
// false when the state has no legal action.
type Agent interface {
	ChooseAction(s game.State) (game.Action, bool)
}

// Adversary picks the piece that follows the placement made from s.
type Adversary interface {
	NextPiece(s game.State) game.Piece
}

// Game holds a live state and the score accumulated on it.
type Game struct {
	State   game.State
	Score   int
	Rewards game.RewardTable
	ProbaI  float64 // Coin probability of the adversaries built by the game
	Trace   bool    // Record one step metric per placement

	rng *rand.Rand
}

// NewGame starts a game on field with the first piece chosen by the coin.
func NewGame(table game.RewardTable, field game.Field, rng *rand.Rand) *Game {
	return &Game{
		State:   game.NewState(field.Clone(), game.RandomPiece(rng)),
		Rewards: table,
		ProbaI:  meta.ProbaIPiece,
		rng:     rng,
	}
}

// Play resets the game to initial, lets the adversary deal the first piece and
// runs agent against adversary until no action is left or the action cap is
// reached. It returns the final score, the game metric and one step metric per
// placement when the game is traced.
func (g *Game) Play(initial game.State, agent Agent, adversary Adversary) (int, metrics.GameMetric, []metrics.StepMetric) {
	g.State = initial.Clone()
	g.Score = 0
	g.State.Next = adversary.NextPiece(g.State)
	return g.run(agent, adversary)
}

// PlayRandom plays uniformly random placements against the coin from the
// current state, keeping the current score.
func (g *Game) PlayRandom() (int, metrics.GameMetric, []metrics.StepMetric) {
	return g.run(NewRandomAgent(g.rng), g.coin())
}

func (g *Game) run(agent Agent, adversary Adversary) (int, metrics.GameMetric, []metrics.StepMetric) {
	gameMetric := metrics.GameMetric{
		Agent:     nameOf(agent),
		Adversary: nameOf(adversary),
		StartTime: time.Now(),
	}
	var steps []metrics.StepMetric

	log.Debug().Msgf("starting %s against %s from\n%s", gameMetric.Agent, gameMetric.Adversary, g.State)

	actions := 0
	for ; actions < meta.MAX_ACTIONS; actions++ {
		curr := g.State
		action, ok := agent.ChooseAction(curr)
		if !ok { // Dead board
			break
		}
		next := adversary.NextPiece(curr)

		placed := curr.ApplyActionTromino(action, next)
		gain := placed.Evaluate(g.Rewards)
		lines := placed.Field.CompleteLines()
		g.Score += gain
		g.State = placed.CompleteLines()

		if g.Trace {
			board, _ := curr.Field.Mask()
			steps = append(steps, metrics.StepMetric{
				Step:     actions + 1,
				Board:    board,
				Hash:     uint64(curr.Hash()),
				Piece:    curr.Next.String(),
				Next:     next.String(),
				Row:      action.Position.Row,
				Col:      action.Position.Col,
				Rotation: action.Rotation,
				Reward:   gain,
				Lines:    lines,
			})
		}
		if lines > 0 {
			log.Debug().Msgf("action %d completed %d lines, score %d", actions+1, lines, g.Score)
		}
	}

	gameMetric.Score = g.Score
	gameMetric.Actions = actions
	gameMetric.Capped = actions == meta.MAX_ACTIONS
	gameMetric.Duration = time.Since(gameMetric.StartTime)

	log.Debug().Msgf("completed game after %d actions with score %d", actions, g.Score)
	return g.Score, gameMetric, steps
}

func (g *Game) coin() *CoinAdversary {
	a := NewCoinAdversary(g.rng)
	a.ProbaI = g.ProbaI
	return a
}

func nameOf(v any) string {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", v)
}
