package metrics

import (
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	Goroutines  int
	Duration    time.Duration
	Episodes    int
	Rollouts    int
	States      int // Distinct states expanded, summed over workers
	Exploration float64
}

type MoveMetric struct {
	Step   int
	Player int
	Action string
	SearchMetric
}

type GameMetric struct {
	StartingPlayer int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
	Turns          int
	Finished       bool // False when the turn cap stopped the game
	WormCounts     map[int]int
}

type Collector interface {
	Start(goroutines int, exploration float64)
	AddRollout()
	AddEpisode()
	AddStates(n int)
	Complete() SearchMetric
}

type collector struct {
	goroutines  int
	exploration float64
	startTime   time.Time
	episodes    atomic.Int32
	rollouts    atomic.Int32
	states      atomic.Int32
}

func NewCollector() Collector {
	return &collector{}
}

// Start resets the counters for a new search.
func (m *collector) Start(goroutines int, exploration float64) {
	m.startTime = time.Now()
	m.goroutines = goroutines
	m.exploration = exploration
	m.episodes.Store(0)
	m.rollouts.Store(0)
	m.states.Store(0)
}

func (m *collector) AddRollout() {
	m.rollouts.Add(1)
}

func (m *collector) AddEpisode() {
	m.episodes.Add(1)
}

func (m *collector) AddStates(n int) {
	m.states.Add(int32(n))
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Goroutines:  m.goroutines,
		Duration:    time.Since(m.startTime),
		Episodes:    int(m.episodes.Load()),
		Rollouts:    int(m.rollouts.Load()),
		States:      int(m.states.Load()),
		Exploration: m.exploration,
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(goroutines int, exploration float64) {}
func (m *dummyCollector) AddRollout()                               {}
func (m *dummyCollector) AddEpisode()                               {}
func (m *dummyCollector) AddStates(n int)                           {}
func (m *dummyCollector) Complete() SearchMetric                    { return SearchMetric{} }
