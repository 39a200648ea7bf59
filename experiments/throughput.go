package experiments

import (
	"time"
	"tromino/experiments/metrics"

	"github.com/rs/zerolog/log"
)

type ThroughputRecord struct {
	Goroutines int
	Jobs       int
	Duration   time.Duration
}

// JobsPerSecond is the sweep throughput of the record.
func (r ThroughputRecord) JobsPerSecond() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Jobs) / r.Duration.Seconds()
}

// RunThroughputExperiment times the same sweep once per worker count.
func RunThroughputExperiment(configs []metrics.SolverConfig, adversaries []Adversary, options Options, goroutines []int) []ThroughputRecord {
	records := []ThroughputRecord{}

	log.Info().Msg("starting throughput experiment...")

	for _, n := range goroutines {
		log.Info().Msgf("starting sweep with %d goroutines...", n)

		opts := options
		opts.Goroutines = n
		opts.TrajectoryDir = ""
		opts.Console = nil

		start := time.Now()
		_, _ = Sweep(configs, adversaries, opts) // Nothing is written without a trajectory dir
		record := ThroughputRecord{Goroutines: n, Jobs: len(configs), Duration: time.Since(start)}
		records = append(records, record)

		log.Info().Msgf("completed sweep with %d goroutines in %s (%.2f jobs/s)", n, record.Duration, record.JobsPerSecond())
	}

	log.Info().Msg("completed throughput experiment")
	return records
}
