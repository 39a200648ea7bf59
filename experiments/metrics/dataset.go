package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

// TrajectoryRow is one placement of a replayed game, flattened for training
// data.
type TrajectoryRow struct {
	Config    int32  `parquet:"config"`
	Adversary string `parquet:"adversary,dict"`
	Game      int32  `parquet:"game"`
	Step      int32  `parquet:"step"`
	Board     int64  `parquet:"board"` // Occupancy mask before the placement
	StateHash int64  `parquet:"state_hash"`
	Piece     string `parquet:"piece,dict"`
	Next      string `parquet:"next,dict"`
	Row       int32  `parquet:"row"`
	Col       int32  `parquet:"col"`
	Rotation  int32  `parquet:"rotation"`
	Reward    int32  `parquet:"reward"`
	Lines     int32  `parquet:"lines"`
}

func TrajectoryRows(config int, adversary string, game int, steps []StepMetric) []TrajectoryRow {
	rows := make([]TrajectoryRow, len(steps))
	for i, step := range steps {
		rows[i] = TrajectoryRow{
			Config:    int32(config),
			Adversary: adversary,
			Game:      int32(game),
			Step:      int32(step.Step),
			Board:     int64(step.Board),
			StateHash: int64(step.Hash),
			Piece:     step.Piece,
			Next:      step.Next,
			Row:       int32(step.Row),
			Col:       int32(step.Col),
			Rotation:  int32(step.Rotation),
			Reward:    int32(step.Reward),
			Lines:     int32(step.Lines),
		}
	}
	return rows
}

// TrajectoryFile is the parquet file holding the trajectories of config.
func TrajectoryFile(dir string, config int) string {
	return filepath.Join(dir, fmt.Sprintf("trajectories_%03d.parquet", config))
}

// TrajectoryWriter streams rows into a parquet file. Rows go to a tmp file
// that is renamed to the final path on Close, so readers never see a
// partial file.
type TrajectoryWriter struct {
	path    string
	tmpPath string

	file   *os.File
	writer *parquet.GenericWriter[TrajectoryRow]

	rows int
}

func NewTrajectoryWriter(path string) (*TrajectoryWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open tmp parquet: %w", err)
	}

	w := parquet.NewGenericWriter[TrajectoryRow](
		f,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
	)
	w.SetKeyValueMetadata("schema", "tromino_trajectory_v1")

	return &TrajectoryWriter{
		path:    path,
		tmpPath: tmpPath,
		file:    f,
		writer:  w,
	}, nil
}

func (w *TrajectoryWriter) Rows() int { return w.rows }

func (w *TrajectoryWriter) Write(rows []TrajectoryRow) error {
	if w.writer == nil {
		return fmt.Errorf("trajectory writer is closed")
	}
	if len(rows) == 0 {
		return nil
	}
	n, err := w.writer.Write(rows)
	w.rows += n
	if err != nil {
		return fmt.Errorf("write parquet: %w", err)
	}
	return nil
}

// Close flushes the file and moves it to its final path, which it returns.
// The tmp file is removed when anything fails.
func (w *TrajectoryWriter) Close() (string, error) {
	if w.writer == nil {
		return w.path, nil
	}

	closeErr := w.writer.Close()
	fileErr := w.file.Close()
	w.writer, w.file = nil, nil
	if closeErr != nil {
		_ = os.Remove(w.tmpPath)
		return "", fmt.Errorf("close parquet writer: %w", closeErr)
	}
	if fileErr != nil {
		_ = os.Remove(w.tmpPath)
		return "", fmt.Errorf("close parquet file: %w", fileErr)
	}

	if err := os.Rename(w.tmpPath, w.path); err != nil {
		_ = os.Remove(w.tmpPath)
		return "", fmt.Errorf("rename parquet: %w", err)
	}
	return w.path, nil
}
