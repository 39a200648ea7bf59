package game

// FeatureWeights weighs the terms of FeatureReward.
type FeatureWeights struct {
	Line         float64 // Per completed line
	Height       float64 // Max column height after lines are cleared
	Score        float64 // Reward table score
	GapReduction float64 // Holes removed by the move (negative if created)
}

// TableReward rewards a move with the reward table entry for the lines it
// completes.
func TableReward(table RewardTable) RewardFunc {
	return func(prev, placed, after State) float64 {
		return float64(placed.Evaluate(table))
	}
}

// FeatureReward combines completed lines, resulting height, table score and
// hole reduction linearly.
func FeatureReward(table RewardTable, w FeatureWeights) RewardFunc {
	return func(prev, placed, after State) float64 {
		reward := w.Line * float64(placed.Field.CompleteLines())
		reward += w.Height * float64(after.Field.MaxHeight())
		reward += w.Score * float64(placed.Evaluate(table))
		reward += w.GapReduction * float64(prev.Field.Holes()-after.Field.Holes())
		return reward
	}
}

// GapReward is the table reward minus a penalty per hole left on the board.
func GapReward(table RewardTable, weight float64) RewardFunc {
	return func(prev, placed, after State) float64 {
		return float64(placed.Evaluate(table)) - weight*float64(after.Field.Holes())
	}
}
