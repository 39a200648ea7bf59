package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// SolverConfig describes one solve of a sweep: the action policy is solved
// with the feature reward weights below.
type SolverConfig struct {
	ID           int
	Strategy     string
	Lambda       float64
	Line         float64
	Height       float64
	Score        float64
	GapReduction float64
}

type SweepRecord struct {
	Config      int // SolverConfig.ID
	Adversary   string
	Games       int
	MeanScore   float64
	MinScore    int
	MaxScore    int
	MeanActions float64
	Capped      int // Games stopped by the action cap
	SolveMetric
}

type Writer struct {
	baseDir string
}

func NewWriter(root, name string) (*Writer, error) {
	// Create a subfolder named by current timestamp
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(root, name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteSolverConfigs(configs []SolverConfig) error {
	header := []string{"id", "strategy", "lambda", "line", "height", "score", "gap_reduction"}
	rows := make([][]string, 0, len(configs))
	for _, config := range configs {
		rows = append(rows, []string{
			strconv.Itoa(config.ID),
			config.Strategy,
			formatFloat(config.Lambda),
			formatFloat(config.Line),
			formatFloat(config.Height),
			formatFloat(config.Score),
			formatFloat(config.GapReduction),
		})
	}
	return w.writeCSV("solver_configs.csv", header, rows)
}

func (w *Writer) WriteSweepRecords(records []SweepRecord) error {
	header := []string{
		"config", "adversary", "games", "mean_score", "min_score", "max_score", "mean_actions", "capped",
		"states", "iterations", "backups", "final_delta", "converged", "solve_duration",
	}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Config),
			record.Adversary,
			strconv.Itoa(record.Games),
			formatFloat(record.MeanScore),
			strconv.Itoa(record.MinScore),
			strconv.Itoa(record.MaxScore),
			formatFloat(record.MeanActions),
			strconv.Itoa(record.Capped),
			strconv.Itoa(record.States),
			strconv.Itoa(record.Iterations),
			strconv.Itoa(record.Backups),
			strconv.FormatFloat(record.FinalDelta, 'g', -1, 64),
			strconv.FormatBool(record.Converged),
			record.Duration.String(),
		})
	}
	return w.writeCSV("sweep_records.csv", header, rows)
}

func (w *Writer) writeCSV(name string, header []string, rows [][]string) error {
	// Create a file
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	// Write header
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}

	// Write each row
	for _, row := range rows {
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write %s row: %w", name, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", name, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
