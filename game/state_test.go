package game

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestStateAvailableActions(t *testing.T) {
	t.Run("I piece on an empty 4x4 field rests on the floor", func(t *testing.T) {
		s := NewState(NewField(4, 4), IPiece)

		got := s.AvailableActions()

		require.Equal(t, []Action{
			NewAction(1, 0, 1),
			NewAction(1, 1, 1),
			NewAction(1, 2, 1),
			NewAction(1, 3, 1),
			NewAction(3, 0, 0),
			NewAction(3, 1, 0),
		}, got)
	})

	t.Run("L piece on an empty 4x4 field has three anchors per rotation", func(t *testing.T) {
		s := NewState(NewField(4, 4), LPiece)

		got := s.AvailableActions()

		require.Len(t, got, 12)
		for _, a := range got {
			require.Equal(t, 2, a.Position.Row, "every L placement is anchored on row 2")
		}
	})

	t.Run("cells below an overhang cannot be reached", func(t *testing.T) {
		s := NewState(FieldFromRows(
			"....",
			".*..",
			"....",
			"....",
		), IPiece)

		got := s.AvailableActions()

		require.NotContains(t, got, NewAction(3, 0, 0))
		require.NotContains(t, got, NewAction(3, 1, 0))
		require.Contains(t, got, NewAction(1, 0, 1))
		require.Contains(t, got, NewAction(0, 0, 0), "(0,1) is a landing point on top of the overhang")
	})

	t.Run("floating placements are rejected", func(t *testing.T) {
		s := NewState(NewField(4, 4), IPiece)

		got := s.AvailableActions()

		require.NotContains(t, got, NewAction(2, 0, 0))
		require.NotContains(t, got, NewAction(0, 0, 1))
	})

	t.Run("a full column top leaves no landing point in that column", func(t *testing.T) {
		s := NewState(FieldFromRows(
			"*...",
			"*...",
			"*...",
			"*...",
		), IPiece)

		require.Equal(t, []Point{{3, 1}, {3, 2}, {3, 3}}, s.landingPoints())
	})

	t.Run("every action fits, rests on a landing point and drops straight", func(t *testing.T) {
		rng := rand.New(rand.NewSource(7))
		for i := 0; i < 500; i++ {
			field := FieldFromMask(4, 4, rng.Uint64()&0xFFFF)
			for _, piece := range Pieces {
				s := NewState(field, piece)
				landing := s.landingPoints()
				for _, a := range s.AvailableActions() {
					require.True(t, field.Fits(piece, a.Position.Row, a.Position.Col, a.Rotation))
					resting := false
					for _, off := range piece.Offsets(a.Rotation) {
						cell := Point{Row: a.Position.Row + off.Row, Col: a.Position.Col + off.Col}
						require.True(t, s.columnClear(cell), "cell %s must be reachable by a drop", cell)
						for _, lp := range landing {
							resting = resting || lp == cell
						}
					}
					require.True(t, resting, "action %s must rest on a landing point", a)
				}
			}
		}
	})
}

func TestStateTransitions(t *testing.T) {
	t.Run("applying an action leaves the original state untouched", func(t *testing.T) {
		s := NewState(NewField(4, 4), IPiece)

		next := s.ApplyActionTromino(NewAction(3, 0, 0), LPiece)

		require.True(t, s.Field.Equal(NewField(4, 4)))
		require.Equal(t, LPiece, next.Next)
		require.Equal(t, "....\n....\n....\n***.\n", next.Field.String())
	})

	t.Run("random successor uses the coin", func(t *testing.T) {
		s := NewState(NewField(4, 4), IPiece)
		rng := rand.New(rand.NewSource(1))
		seen := map[Piece]bool{}

		for i := 0; i < 100; i++ {
			next := s.ApplyAction(NewAction(3, 1, 0), rng)
			require.Equal(t, "....\n....\n....\n.***\n", next.Field.String())
			seen[next.Next] = true
		}

		require.True(t, seen[IPiece])
		require.True(t, seen[LPiece])
	})

	t.Run("an action has one successor per piece", func(t *testing.T) {
		s := NewState(NewField(4, 4), LPiece)

		got := s.AllStatesFromAction(NewAction(2, 0, 1))

		require.Len(t, got, 2)
		require.Equal(t, IPiece, got[0].Next)
		require.Equal(t, LPiece, got[1].Next)
		require.True(t, got[0].Field.Equal(got[1].Field))

		got[0].Field.AddTromino(IPiece, 0, 0, 0)
		require.False(t, got[0].Field.Equal(got[1].Field), "successor fields should not alias")
	})
}

func TestStateCompleteLines(t *testing.T) {
	t.Run("a single full bottom row leaves an empty field", func(t *testing.T) {
		s := NewState(FieldFromRows(
			"....",
			"....",
			"....",
			"****",
		), LPiece)

		got := s.CompleteLines()

		require.True(t, got.Field.Equal(NewField(4, 4)))
		require.Equal(t, LPiece, got.Next)
	})

	t.Run("rows above a cleared row shift down by one", func(t *testing.T) {
		s := NewState(FieldFromRows(
			"....",
			".*..",
			"****",
			"*...",
		), IPiece)

		got := s.CompleteLines()

		require.Equal(t, "....\n....\n.*..\n*...\n", got.Field.String())
		require.Equal(t, 4, got.Field.Width())
		require.Equal(t, 4, got.Field.Height())
	})

	t.Run("several complete rows are removed in one pass", func(t *testing.T) {
		s := NewState(FieldFromRows(
			"*...",
			"****",
			"****",
			".*..",
		), IPiece)

		got := s.CompleteLines()

		require.Equal(t, "....\n....\n*...\n.*..\n", got.Field.String())
	})

	t.Run("no complete row keeps the field", func(t *testing.T) {
		s := NewState(FieldFromRows(
			"....",
			"*.*.",
			"***.",
			".***",
		), IPiece)

		got := s.CompleteLines()

		require.True(t, got.Equal(s))
	})
}

func TestStateEvaluate(t *testing.T) {
	table := RewardTable{1, 3, 7}

	t.Run("no complete line is worth nothing", func(t *testing.T) {
		s := NewState(FieldFromRows("....", "***."), IPiece)
		require.Equal(t, 0, s.Evaluate(table))
	})

	t.Run("lines index the reward table", func(t *testing.T) {
		require.Equal(t, 1, NewState(FieldFromRows("....", "****"), IPiece).Evaluate(table))
		require.Equal(t, 3, NewState(FieldFromRows("****", "****"), IPiece).Evaluate(table))
		require.Equal(t, 7, NewState(FieldFromRows("..", "**", "**", "**"), IPiece).Evaluate(table))
	})

	t.Run("four or more lines use the last slot", func(t *testing.T) {
		s := NewState(FieldFromRows("**", "**", "**", "**"), IPiece)
		require.Equal(t, 7, s.Evaluate(table))
	})
}

func TestStateIdentity(t *testing.T) {
	rows := []string{
		"....",
		"..*.",
		".**.",
		"***.",
	}

	t.Run("identical grid and piece are equal and hash identically", func(t *testing.T) {
		a := NewState(FieldFromRows(rows...), LPiece)
		b := NewState(FieldFromRows(rows...), LPiece)

		require.True(t, a.Equal(b))
		require.Equal(t, a.Key(), b.Key())
		require.Equal(t, a.Hash(), b.Hash())
	})

	t.Run("different piece makes states unequal", func(t *testing.T) {
		a := NewState(FieldFromRows(rows...), LPiece)
		b := a.WithPiece(IPiece)

		require.False(t, a.Equal(b))
		require.NotEqual(t, a.Key(), b.Key())
		require.NotEqual(t, a.Hash(), b.Hash())
	})

	t.Run("different grid makes states unequal", func(t *testing.T) {
		a := NewState(FieldFromRows(rows...), LPiece)
		b := a.ApplyActionTromino(NewAction(0, 0, 1), LPiece)

		require.False(t, a.Equal(b))
		require.NotEqual(t, a.Key(), b.Key())
		require.NotEqual(t, a.Hash(), b.Hash())
	})

	t.Run("large boards fall back to packed keys", func(t *testing.T) {
		a := NewState(NewField(10, 8), IPiece)
		b := NewState(NewField(10, 8), IPiece)
		a.Field.AddTromino(IPiece, 7, 0, 0)
		b.Field.AddTromino(IPiece, 7, 0, 0)

		require.NotEmpty(t, a.Key().Packed)
		require.Equal(t, a.Key(), b.Key())
		require.NotEqual(t, a.Key(), NewState(NewField(10, 8), IPiece).Key())
	})

	t.Run("keys work as map keys", func(t *testing.T) {
		values := map[StateKey]float64{}
		values[NewState(FieldFromRows(rows...), LPiece).Key()] = 1.5

		require.Equal(t, 1.5, values[NewState(FieldFromRows(rows...), LPiece).Key()])
		_, ok := values[NewState(FieldFromRows(rows...), IPiece).Key()]
		require.False(t, ok)
	})
}
