package experiments

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"tromino/experiments/metrics"
	"tromino/game"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/require"
)

var table = game.RewardTable{1, 3, 6}

func testOptions() Options {
	return Options{
		Initial:       game.NewState(game.NewField(4, 4), game.IPiece),
		Table:         table,
		Games:         2,
		Goroutines:    3,
		Epsilon:       1e-4,
		MaxIterations: 200,
		Seed:          11,
	}
}

func TestDefaultConfigs(t *testing.T) {
	configs := DefaultConfigs()

	require.Len(t, configs, 8)
	for i, config := range configs {
		require.Equal(t, i+1, config.ID)
		require.Equal(t, "expectation", config.Strategy)
	}
}

func TestSolveAdversaries(t *testing.T) {
	options := testOptions()

	adversaries := SolveAdversaries(options.Initial, table, 0.5, 1e-4, 200)

	require.Len(t, adversaries, 4)
	require.Equal(t, "coin", adversaries[0].Name)
	require.Empty(t, adversaries[0].Policy)
	for _, adversary := range adversaries[1:] {
		_, ok := adversary.Policy.Lookup(options.Initial)
		require.True(t, ok, "%s adversary should cover the initial state", adversary.Name)
	}
}

func TestSweep(t *testing.T) {
	options := testOptions()
	adversaries := SolveAdversaries(options.Initial, table, 0.5, 1e-4, 200)
	configs := []metrics.SolverConfig{
		{ID: 1, Strategy: "expectation", Lambda: 0.5, Score: 1},
		{ID: 2, Strategy: "expectation", Lambda: 0.5, Score: 1, GapReduction: 0.5},
		{ID: 3, Strategy: "minmax", Lambda: 0.5, Score: 1},
	}

	t.Run("one record per config and adversary in config order", func(t *testing.T) {
		var console bytes.Buffer
		opts := options
		opts.Console = &console

		result, err := Sweep(configs, adversaries, opts)
		require.NoError(t, err)

		require.Len(t, result.Records, len(configs)*len(adversaries))
		for i, record := range result.Records {
			require.Equal(t, configs[i/len(adversaries)].ID, record.Config)
			require.Equal(t, adversaries[i%len(adversaries)].Name, record.Adversary)
			require.Equal(t, 2, record.Games)
			require.LessOrEqual(t, record.MinScore, record.MaxScore)
			require.GreaterOrEqual(t, record.MeanScore, float64(record.MinScore))
			require.True(t, record.Converged)
		}

		lines := strings.Split(strings.TrimSpace(console.String()), "\n")
		require.Len(t, lines, 1+len(result.Records))
	})

	t.Run("sweep without a trajectory dir records no steps", func(t *testing.T) {
		result, err := Sweep(configs, adversaries, options)
		require.NoError(t, err)

		require.Empty(t, result.Trajectories)
		require.Zero(t, result.Steps)
	})

	t.Run("traced games stream into one file per config", func(t *testing.T) {
		dir := t.TempDir()
		opts := options
		opts.Games = 3
		opts.TracedGames = 1
		opts.TrajectoryDir = dir

		result, err := Sweep(configs, adversaries, opts)
		require.NoError(t, err)

		require.Len(t, result.Trajectories, len(configs))
		steps := 0
		for i, path := range result.Trajectories {
			require.Equal(t, metrics.TrajectoryFile(dir, configs[i].ID), path)

			rows, err := parquet.ReadFile[metrics.TrajectoryRow](path)
			require.NoError(t, err)
			for _, row := range rows {
				require.Equal(t, int32(configs[i].ID), row.Config)
				require.Equal(t, int32(1), row.Game, "only the first game of each adversary is traced")
			}
			steps += len(rows)
		}
		require.Positive(t, result.Steps)
		require.Equal(t, steps, result.Steps)
	})

	t.Run("same seed gives the same records", func(t *testing.T) {
		first, err := Sweep(configs, adversaries, options)
		require.NoError(t, err)
		second, err := Sweep(configs, adversaries, options)
		require.NoError(t, err)

		for i := range first.Records {
			require.Equal(t, first.Records[i].MeanScore, second.Records[i].MeanScore)
			require.Equal(t, first.Records[i].MeanActions, second.Records[i].MeanActions)
		}
	})

	t.Run("unwritable trajectory dir fails the sweep", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, nil, 0o644))
		opts := options
		opts.TrajectoryDir = filepath.Join(file, "out")

		_, err := Sweep(configs[:1], adversaries, opts)
		require.Error(t, err)
	})

	t.Run("unknown strategy panics", func(t *testing.T) {
		bad := []metrics.SolverConfig{{ID: 1, Strategy: "maxmin", Lambda: 0.5}}
		opts := options
		opts.Goroutines = 1

		require.Panics(t, func() { evaluate(bad[0], adversaries, opts) })
	})
}

func TestThroughput(t *testing.T) {
	options := testOptions()
	options.Games = 1
	adversaries := []Adversary{{Name: "coin"}}
	configs := DefaultConfigs()[:2]

	records := RunThroughputExperiment(configs, adversaries, options, []int{1, 2})

	require.Len(t, records, 2)
	require.Equal(t, 1, records[0].Goroutines)
	require.Equal(t, 2, records[1].Goroutines)
	for _, record := range records {
		require.Equal(t, 2, record.Jobs)
		require.Positive(t, record.JobsPerSecond())
	}
	require.Zero(t, ThroughputRecord{Jobs: 1}.JobsPerSecond())
	require.Equal(t, 2.0, ThroughputRecord{Jobs: 4, Duration: 2 * time.Second}.JobsPerSecond())
}
