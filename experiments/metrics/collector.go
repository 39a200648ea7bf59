package metrics

import (
	"math"
	"sync/atomic"
	"time"
)

type SolveMetric struct {
	Strategy   string
	States     int
	Iterations int
	Backups    int
	FinalDelta float64
	Converged  bool
	Duration   time.Duration
}

type StepMetric struct {
	Step     int
	Board    uint64 // Occupancy mask before the placement
	Hash     uint64 // State hash before the placement
	Piece    string // Piece placed
	Next     string // Piece chosen to follow
	Row      int
	Col      int
	Rotation int
	Reward   int
	Lines    int
}

type GameMetric struct {
	Agent     string
	Adversary string
	Score     int
	Actions   int
	Capped    bool // Stopped by the action cap rather than by a dead board
	StartTime time.Time
	Duration  time.Duration
}

type Collector interface {
	Start(strategy string, states int)
	AddSweep(delta float64)
	AddBackups(n int)
	SetConverged(value bool)
	Complete() SolveMetric
}

type collector struct {
	strategy   string
	states     int
	startTime  time.Time
	iterations atomic.Int32
	backups    atomic.Int64
	lastDelta  atomic.Uint64 // math.Float64bits
	converged  atomic.Bool
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(strategy string, states int) {
	m.startTime = time.Now()
	m.strategy = strategy
	m.states = states
}

func (m *collector) AddSweep(delta float64) {
	m.iterations.Add(1)
	m.lastDelta.Store(math.Float64bits(delta))
}

func (m *collector) AddBackups(n int) {
	m.backups.Add(int64(n))
}

func (m *collector) SetConverged(value bool) {
	m.converged.Store(value)
}

func (m *collector) Complete() SolveMetric {
	return SolveMetric{
		Strategy:   m.strategy,
		States:     m.states,
		Iterations: int(m.iterations.Load()),
		Backups:    int(m.backups.Load()),
		FinalDelta: math.Float64frombits(m.lastDelta.Load()),
		Converged:  m.converged.Load(),
		Duration:   time.Since(m.startTime),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(strategy string, states int) {}
func (m *dummyCollector) AddSweep(delta float64)            {}
func (m *dummyCollector) AddBackups(n int)                  {}
func (m *dummyCollector) SetConverged(value bool)           {}
func (m *dummyCollector) Complete() SolveMetric             { return SolveMetric{} }
