package main

import (
	"flag"
	"fmt"
	"os"
	"tromino/config"
	"tromino/engine"
	"tromino/experiments"
	"tromino/experiments/metrics"
	"tromino/game"
	"tromino/meta"
	"tromino/player"
	"tromino/solver"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

func main() {
	configPath := flag.String("config", "", "Reward config file, defaults to the first argument or config.txt")
	width := flag.Int("width", meta.FIELD_WIDTH, "Field width")
	height := flag.Int("height", meta.FIELD_HEIGHT, "Field height")
	lambda := flag.Float64("lambda", meta.LAMBDA, "Discount factor in [0, 1)")
	epsilon := flag.Float64("epsilon", meta.EPSILON, "Value iteration convergence threshold")
	iterations := flag.Int("iterations", meta.MAX_ITERATIONS, "Value iteration sweep cap")
	strategyName := flag.String("strategy", solver.Expectation.String(), "Strategy of the replayed policy: expectation, minmax or minavg")
	full := flag.Bool("full", false, "Solve over every enumerable state instead of the reachable ones")
	games := flag.Int("games", meta.GAMES, "Evaluation games per adversary")
	train := flag.Int("train", 0, "Heuristic bandit training games per adversary")
	random := flag.Bool("random", false, "Play one random game and print the final board")
	sweep := flag.Bool("sweep", false, "Run the parallel solver config sweep")
	throughput := flag.Bool("throughput", false, "Time the sweep for several goroutine counts")
	goroutines := flag.Int("goroutines", meta.GO_ROUTINES, "Number of goroutines for the sweep")
	out := flag.String("out", "", "Directory for CSV and Parquet sweep results")
	traced := flag.Int("traced", meta.TRACED_GAMES, "Games per config and adversary written as Parquet trajectories")
	seed := flag.Uint64("seed", 0, "Random seed, 0 for a time based seed")
	debug := flag.Bool("debug", false, "Log every value iteration sweep and game step")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	path := *configPath
	if path == "" {
		path = config.DefaultFile
		if flag.NArg() > 0 {
			path = flag.Arg(0)
		}
	}
	table, err := config.LoadRewardTable(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log.Info().Msgf("loaded config: [%d, %d, %d]", table[0], table[1], table[2])

	if err := config.CheckField(*width, *height); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	strategy, err := solver.ParseStrategy(*strategyName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *seed == 0 {
		*seed = uint64(os.Getpid()) ^ rand.Uint64()
	}
	rng := rand.New(rand.NewSource(*seed))
	log.Info().Msgf("using seed %d", *seed)

	g := engine.NewGame(table, game.NewField(*width, *height), rng)
	s0 := g.State.Clone()
	fmt.Printf("Initial state:\n%s\n", s0)

	if *random {
		score, gameMetric, _ := g.PlayRandom()
		fmt.Printf("Random game over after %d actions! Global score: %d\n%s\n", gameMetric.Actions, score, g.State.Field)
		g.State = s0.Clone()
	}

	options := []solver.Option{
		solver.WithStrategy(strategy),
		solver.WithLambda(*lambda),
		solver.WithEpsilon(*epsilon),
		solver.WithMaxIterations(*iterations),
		solver.WithMetrics(metrics.NewCollector()),
	}
	if *full {
		options = append(options, solver.WithFullStateSpace())
	}
	mdp := solver.NewMDP(s0, table, options...)
	result := mdp.Solve()
	g.ProbaI = mdp.Probability()
	if !result.Converged {
		log.Warn().Msgf("value iteration stopped at the %d iteration cap with delta %g", result.Iterations, result.Delta)
	}

	adversaries := experiments.SolveAdversaries(s0, table, *lambda, *epsilon, *iterations)

	fmt.Printf("\n%-10s %8s %10s %10s %8s\n", "adversary", "games", "mean", "actions", "capped")
	for _, adversary := range adversaries {
		total, actions, capped := 0, 0, 0
		for i := 0; i < *games; i++ {
			score, gameMetric, _ := g.PlayPolicy(mdp.Initial(), result.Actions, adversary.Policy)
			total += score
			actions += gameMetric.Actions
			if gameMetric.Capped {
				capped++
			}
		}
		n := float64(max(*games, 1))
		fmt.Printf("%-10s %8d %10.2f %10.1f %8d\n", adversary.Name, *games, float64(total)/n, float64(actions)/n, capped)
	}

	if *train > 0 {
		fmt.Printf("\n%-10s %-30s\n", "adversary", "best weights")
		for _, adversary := range adversaries {
			trainer := player.NewTrainer(g, engine.NewPolicyAdversary(adversary.Name, adversary.Policy, rng))
			trainer.Train(*train)
			fmt.Printf("%-10s %-30s\n", adversary.Name, trainer)
		}
	}

	sweepOptions := experiments.Options{
		Initial:       s0,
		Table:         table,
		Games:         *games,
		Goroutines:    *goroutines,
		Epsilon:       *epsilon,
		MaxIterations: *iterations,
		Seed:          *seed,
		TracedGames:   *traced,
		Console:       os.Stdout,
	}
	configs := experiments.DefaultConfigs()

	if *sweep {
		var writer *metrics.Writer
		if *out != "" {
			writer, err = metrics.NewWriter(*out, "sweep")
			if err != nil {
				log.Fatal().Err(err).Msg("failed to create experiment writer")
			}
			sweepOptions.TrajectoryDir = writer.Dir()
		}

		fmt.Println()
		sweepResult, err := experiments.Sweep(configs, adversaries, sweepOptions)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to store trajectories")
		}
		if writer != nil {
			writeResults(writer, configs, sweepResult)
		}
		sweepOptions.TrajectoryDir = ""
	}

	if *throughput {
		records := experiments.RunThroughputExperiment(configs, adversaries, sweepOptions, []int{1, 2, 4, 8, 16})
		fmt.Printf("\n%-10s %10s %12s\n", "goroutines", "jobs/s", "duration")
		for _, record := range records {
			fmt.Printf("%-10d %10.2f %12s\n", record.Goroutines, record.JobsPerSecond(), record.Duration)
		}
	}
}

func writeResults(writer *metrics.Writer, configs []metrics.SolverConfig, result experiments.Result) {
	err := writer.WriteSolverConfigs(configs)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to store solver configs")
	}
	log.Info().Msg("stored solver configs")

	err = writer.WriteSweepRecords(result.Records)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to store sweep records")
	}
	log.Info().Msg("stored sweep records")
	log.Info().Msgf("stored %d trajectory steps in %d files under %s", result.Steps, len(result.Trajectories), writer.Dir())
}
