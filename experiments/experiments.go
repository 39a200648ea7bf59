package experiments

import (
	"fmt"
	"io"
	"math"
	"sync"
	"tromino/engine"
	"tromino/experiments/metrics"
	"tromino/game"
	"tromino/meta"
	"tromino/solver"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// GapWeight is the hole penalty of the gap-avg adversary.
const GapWeight = 0.5

// Adversary is an adversary policy shared read only by every sweep job. An
// empty policy deals with the coin.
type Adversary struct {
	Name   string
	Policy solver.AdversaryPolicy
}

// SolveAdversaries computes the coin, min-max, min-avg and gap-avg adversaries
// once, before any sweep job starts.
func SolveAdversaries(initial game.State, table game.RewardTable, lambda, epsilon float64, maxIterations int) []Adversary {
	log.Info().Msg("solving adversaries...")
	adversaries := []Adversary{
		{Name: "coin", Policy: solver.AdversaryPolicy{}},
		{Name: "minmax", Policy: solver.TrominoValueIterationMinMax(initial, table, lambda, epsilon, maxIterations)},
		{Name: "minavg", Policy: solver.TrominoValueIterationMinAvg(initial, table, lambda, epsilon, maxIterations)},
		{Name: "gapavg", Policy: solver.TrominoValueIterationGapAvg(initial, table, GapWeight, lambda, epsilon, maxIterations)},
	}
	log.Info().Msgf("solved %d adversaries", len(adversaries)-1)
	return adversaries
}

// DefaultConfigs pairs two discount factors with four feature reward weight
// sets, all solved with the coin expectation.
func DefaultConfigs() []metrics.SolverConfig {
	weights := []game.FeatureWeights{
		{Score: 1},
		{Score: 1, GapReduction: 0.5},
		{Score: 1, Height: -0.1},
		{Line: 0.5, Score: 1, Height: -0.1, GapReduction: 0.5},
	}
	configs := []metrics.SolverConfig{}
	for _, lambda := range []float64{0.5, meta.LAMBDA} {
		for _, w := range weights {
			configs = append(configs, metrics.SolverConfig{
				ID:           len(configs) + 1,
				Strategy:     solver.Expectation.String(),
				Lambda:       lambda,
				Line:         w.Line,
				Height:       w.Height,
				Score:        w.Score,
				GapReduction: w.GapReduction,
			})
		}
	}
	return configs
}

type Options struct {
	Initial       game.State
	Table         game.RewardTable
	Games         int // Per config and adversary
	Goroutines    int
	Epsilon       float64
	MaxIterations int
	Seed          uint64
	TrajectoryDir string    // Receives one parquet file per config, empty to skip
	TracedGames   int       // Traced games per config and adversary, defaults to meta.TRACED_GAMES
	Console       io.Writer // Receives one table row per record, nil to discard
}

type Result struct {
	Records      []metrics.SweepRecord
	Trajectories []string // Parquet files, in config order
	Steps        int      // Trajectory rows over all files
}

type outcome struct {
	records    []metrics.SweepRecord
	trajectory string
	steps      int
	err        error
}

// Sweep solves one action policy per config and replays it against every
// adversary. Jobs run on a pool of options.Goroutines workers; each job owns
// its solver, game and trajectory file.
func Sweep(configs []metrics.SolverConfig, adversaries []Adversary, options Options) (Result, error) {
	goroutines := options.Goroutines
	if goroutines <= 0 {
		goroutines = meta.GO_ROUTINES
	}
	console := options.Console
	if console == nil {
		console = io.Discard
	}

	log.Info().Msgf("starting sweep of %d configs against %d adversaries on %d goroutines...",
		len(configs), len(adversaries), goroutines)

	task := make(chan int, len(configs))
	for i := range configs {
		task <- i
	}
	close(task)

	outcomes := make([]outcome, len(configs))
	var mu sync.Mutex // Guards console
	printHeader(console)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for j := range task {
				outcomes[j] = evaluate(configs[j], adversaries, options)

				mu.Lock()
				printRecords(console, outcomes[j].records)
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	result := Result{}
	for i, o := range outcomes {
		if o.err != nil {
			return Result{}, fmt.Errorf("config %d: %w", configs[i].ID, o.err)
		}
		result.Records = append(result.Records, o.records...)
		if o.trajectory != "" {
			result.Trajectories = append(result.Trajectories, o.trajectory)
			result.Steps += o.steps
		}
	}
	log.Info().Msgf("completed sweep with %d records and %d trajectory steps", len(result.Records), result.Steps)
	return result, nil
}

func evaluate(config metrics.SolverConfig, adversaries []Adversary, options Options) outcome {
	strategy, err := solver.ParseStrategy(config.Strategy)
	if err != nil {
		panic(fmt.Sprintf("invalid solver config %d: %v", config.ID, err))
	}
	weights := game.FeatureWeights{
		Line:         config.Line,
		Height:       config.Height,
		Score:        config.Score,
		GapReduction: config.GapReduction,
	}

	mdp := solver.NewMDP(options.Initial, options.Table,
		solver.WithStrategy(strategy),
		solver.WithLambda(config.Lambda),
		solver.WithEpsilon(options.Epsilon),
		solver.WithMaxIterations(options.MaxIterations),
		solver.WithReward(game.FeatureReward(options.Table, weights)),
		solver.WithMetrics(metrics.NewCollector()),
	)
	solved := mdp.Solve()

	rng := rand.New(rand.NewSource(options.Seed + uint64(config.ID)))
	g := engine.NewGame(options.Table, options.Initial.Field, rng)
	g.ProbaI = mdp.Probability()

	o := outcome{}
	var trajectories *metrics.TrajectoryWriter
	traced := options.TracedGames
	if traced <= 0 {
		traced = meta.TRACED_GAMES
	}
	if options.TrajectoryDir != "" {
		trajectories, o.err = metrics.NewTrajectoryWriter(metrics.TrajectoryFile(options.TrajectoryDir, config.ID))
		if o.err != nil {
			return o
		}
	}

	for _, adversary := range adversaries {
		record := metrics.SweepRecord{
			Config:      config.ID,
			Adversary:   adversary.Name,
			Games:       options.Games,
			MinScore:    math.MaxInt,
			SolveMetric: solved.Metric,
		}
		totalScore, totalActions := 0, 0
		for i := 0; i < options.Games; i++ {
			g.Trace = trajectories != nil && i < traced
			score, gameMetric, steps := g.PlayPolicy(mdp.Initial(), solved.Actions, adversary.Policy)

			totalScore += score
			totalActions += gameMetric.Actions
			record.MinScore = min(record.MinScore, score)
			record.MaxScore = max(record.MaxScore, score)
			if gameMetric.Capped {
				record.Capped++
			}
			if g.Trace && o.err == nil {
				o.err = trajectories.Write(metrics.TrajectoryRows(config.ID, adversary.Name, i+1, steps))
			}
		}
		if options.Games > 0 {
			record.MeanScore = float64(totalScore) / float64(options.Games)
			record.MeanActions = float64(totalActions) / float64(options.Games)
		} else {
			record.MinScore = 0
		}
		o.records = append(o.records, record)
	}

	if trajectories != nil {
		o.steps = trajectories.Rows()
		path, err := trajectories.Close()
		if o.err == nil {
			o.trajectory, o.err = path, err
		}
	}
	return o
}

func printHeader(w io.Writer) {
	fmt.Fprintf(w, "%-6s %-10s %-6s %10s %8s %8s %10s %6s\n",
		"config", "adversary", "games", "mean", "min", "max", "actions", "iters")
}

func printRecords(w io.Writer, records []metrics.SweepRecord) {
	for _, r := range records {
		fmt.Fprintf(w, "%-6d %-10s %-6d %10.2f %8d %8d %10.1f %6d\n",
			r.Config, r.Adversary, r.Games, r.MeanScore, r.MinScore, r.MaxScore, r.MeanActions, r.Iterations)
	}
}
