package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	t.Run("counts sweeps and backups concurrently", func(t *testing.T) {
		c := NewCollector()
		c.Start("minmax", 10)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c.AddSweep(0.5)
				c.AddBackups(3)
			}()
		}
		wg.Wait()
		c.AddSweep(1e-9)
		c.SetConverged(true)

		metric := c.Complete()

		require.Equal(t, "minmax", metric.Strategy)
		require.Equal(t, 10, metric.States)
		require.Equal(t, 9, metric.Iterations)
		require.Equal(t, 24, metric.Backups)
		require.Equal(t, 1e-9, metric.FinalDelta)
		require.True(t, metric.Converged)
		require.GreaterOrEqual(t, metric.Duration, time.Duration(0))
	})

	t.Run("dummy collector records nothing", func(t *testing.T) {
		c := NewDummyCollector()
		c.Start("minmax", 10)
		c.AddSweep(1)
		c.AddBackups(1)
		c.SetConverged(true)

		require.Equal(t, SolveMetric{}, c.Complete())
	})
}

func readCSV(t *testing.T, path string) [][]string {
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriter(t *testing.T) {
	root := t.TempDir()
	w, err := NewWriter(root, "sweep")
	require.NoError(t, err)
	require.DirExists(t, w.Dir())
	require.Equal(t, filepath.Join(root, "sweep"), filepath.Dir(w.Dir()))

	t.Run("solver configs", func(t *testing.T) {
		err := w.WriteSolverConfigs([]SolverConfig{
			{ID: 1, Strategy: "expectation", Lambda: 0.9, Line: 1, Height: -0.5, Score: 1, GapReduction: 0.25},
		})
		require.NoError(t, err)

		rows := readCSV(t, filepath.Join(w.Dir(), "solver_configs.csv"))
		require.Equal(t, []string{"id", "strategy", "lambda", "line", "height", "score", "gap_reduction"}, rows[0])
		require.Equal(t, []string{"1", "expectation", "0.9", "1", "-0.5", "1", "0.25"}, rows[1])
	})

	t.Run("sweep records", func(t *testing.T) {
		err := w.WriteSweepRecords([]SweepRecord{
			{Config: 1, Adversary: "minmax", Games: 2, MeanScore: 3.5, MinScore: 3, MaxScore: 4, MeanActions: 7,
				SolveMetric: SolveMetric{States: 100, Iterations: 20, Backups: 2000, FinalDelta: 1e-9, Converged: true, Duration: time.Second}},
			{Config: 2, Adversary: "coin"},
		})
		require.NoError(t, err)

		rows := readCSV(t, filepath.Join(w.Dir(), "sweep_records.csv"))
		require.Len(t, rows, 3)
		require.Len(t, rows[0], 14)
		require.Equal(t, []string{"1", "minmax", "2", "3.5", "3", "4", "7", "0", "100", "20", "2000", "1e-09", "true", "1s"}, rows[1])
		require.Equal(t, "coin", rows[2][1])
	})
}

func TestTrajectoryWriter(t *testing.T) {
	steps := []StepMetric{
		{Step: 1, Board: 0, Piece: "IPiece", Next: "LPiece", Row: 3, Col: 0, Rotation: 0},
		{Step: 2, Board: 0x7000, Piece: "LPiece", Next: "IPiece", Row: 2, Col: 2, Rotation: 2, Reward: 1, Lines: 1},
	}
	rows := TrajectoryRows(4, "minavg", 9, steps)

	t.Run("rows keep the step fields", func(t *testing.T) {
		require.Len(t, rows, 2)
		require.Equal(t, int32(4), rows[1].Config)
		require.Equal(t, "minavg", rows[1].Adversary)
		require.Equal(t, int32(9), rows[1].Game)
		require.Equal(t, int64(0x7000), rows[1].Board)
		require.Equal(t, int32(1), rows[1].Lines)
	})

	t.Run("rows stream into the config file", func(t *testing.T) {
		path := TrajectoryFile(filepath.Join(t.TempDir(), "out"), 4)
		require.Equal(t, "trajectories_004.parquet", filepath.Base(path))

		w, err := NewTrajectoryWriter(path)
		require.NoError(t, err)
		require.NoError(t, w.Write(rows[:1]))
		require.NoError(t, w.Write(nil))
		require.NoError(t, w.Write(rows[1:]))
		require.Equal(t, 2, w.Rows())
		require.NoFileExists(t, path, "file should only appear once closed")

		got, err := w.Close()
		require.NoError(t, err)
		require.Equal(t, path, got)
		require.NoFileExists(t, path+".tmp")

		read, err := parquet.ReadFile[TrajectoryRow](path)
		require.NoError(t, err)
		require.Equal(t, rows, read)
	})

	t.Run("closed writer rejects rows", func(t *testing.T) {
		w, err := NewTrajectoryWriter(TrajectoryFile(t.TempDir(), 1))
		require.NoError(t, err)
		_, err = w.Close()
		require.NoError(t, err)

		require.Error(t, w.Write(rows))
	})
}
