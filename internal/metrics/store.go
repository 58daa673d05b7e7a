// Package metrics keeps lightweight in-process counters for conversation
// turns plus a runtime health snapshot. Nothing is persisted; the numbers
// reset with the process.
package metrics

import (
	"sync"
	"time"
)

// Turn outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
)

// TurnMetric records metadata for a single conversation turn.
type TurnMetric struct {
	PlanType  string
	Outcome   string
	Latency   time.Duration
	Timestamp time.Time
}

// Summary is an aggregated view over all recorded turns.
type Summary struct {
	Turns        int
	Fallbacks    int
	AvgLatencyMS int64
	ByPlanType   map[string]int
	Since        time.Time
}

// Store accumulates turn metrics. Safe for concurrent use.
type Store struct {
	mu           sync.Mutex
	turns        int
	fallbacks    int
	totalLatency time.Duration
	byPlanType   map[string]int
	since        time.Time
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		byPlanType: make(map[string]int),
		since:      time.Now().UTC(),
	}
}

// Record adds one turn to the running totals.
func (s *Store) Record(m TurnMetric) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns++
	if m.Outcome == OutcomeFallback {
		s.fallbacks++
	}
	s.totalLatency += m.Latency
	s.byPlanType[m.PlanType]++
}

// Summary returns the aggregated totals so far.
func (s *Store) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	byPlanType := make(map[string]int, len(s.byPlanType))
	for planType, n := range s.byPlanType {
		byPlanType[planType] = n
	}

	var avg int64
	if s.turns > 0 {
		avg = (s.totalLatency / time.Duration(s.turns)).Milliseconds()
	}

	return Summary{
		Turns:        s.turns,
		Fallbacks:    s.fallbacks,
		AvgLatencyMS: avg,
		ByPlanType:   byPlanType,
		Since:        s.since,
	}
}

// Reset clears all totals and restarts the observation window.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = 0
	s.fallbacks = 0
	s.totalLatency = 0
	s.byPlanType = make(map[string]int)
	s.since = time.Now().UTC()
}
