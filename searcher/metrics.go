package searcher

import (
	"sync"
	"sync/atomic"
	"time"
)

// RolloutMetrics summarises every evaluation a Rollout ran since it was built.
type RolloutMetrics struct {
	StartTime    time.Time
	Duration     time.Duration
	Evaluations  int64
	Episodes     int64
	FullPlayouts int64   // episodes that ended with a winner
	Cutoffs      int64   // episodes stopped at the turn cutoff
	Turns        int64   // turns played across all episodes
	MeanReward   float64 // from the movers' perspective
}

// TurnsPerEpisode is the average play-out length.
func (m RolloutMetrics) TurnsPerEpisode() float64 {
	if m.Episodes == 0 {
		return 0
	}
	return float64(m.Turns) / float64(m.Episodes)
}

// stats is shared by the rollout workers. A nil *stats records nothing.
type stats struct {
	start       time.Time
	evaluations atomic.Int64
	episodes    atomic.Int64
	finished    atomic.Int64
	cutoffs     atomic.Int64
	turns       atomic.Int64

	mu      sync.Mutex
	rewards float64
	scored  int64
}

func newStats() *stats {
	return &stats{start: time.Now()}
}

func (s *stats) evaluation() {
	if s == nil {
		return
	}
	s.evaluations.Add(1)
}

func (s *stats) episode(e episode) {
	if s == nil {
		return
	}
	s.episodes.Add(1)
	s.turns.Add(int64(e.turns))
	if e.finished {
		s.finished.Add(1)
	} else {
		s.cutoffs.Add(1)
	}
	s.mu.Lock()
	s.rewards += e.reward
	s.scored++
	s.mu.Unlock()
}

func (s *stats) snapshot() RolloutMetrics {
	if s == nil {
		return RolloutMetrics{}
	}
	m := RolloutMetrics{
		StartTime:    s.start,
		Duration:     time.Since(s.start),
		Evaluations:  s.evaluations.Load(),
		Episodes:     s.episodes.Load(),
		FullPlayouts: s.finished.Load(),
		Cutoffs:      s.cutoffs.Load(),
		Turns:        s.turns.Load(),
	}
	s.mu.Lock()
	if s.scored > 0 {
		m.MeanReward = s.rewards / float64(s.scored)
	}
	s.mu.Unlock()
	return m
}
