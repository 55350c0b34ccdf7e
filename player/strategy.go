package player

import (
	"math"
	"sync"

	"yut/game"
	"yut/searcher"

	"golang.org/x/exp/rand"
)

// Strategy picks one of the suggested candidates. candidates is never empty
// and board holds every position of the game when they were suggested.
type Strategy interface {
	Choose(candidates []searcher.Candidate, board []game.Position) searcher.Candidate
	Name() string
}

// Greedy always takes the best scored candidate, first one on ties.
type Greedy struct{}

func (Greedy) Name() string { return "greedy" }

func (Greedy) Choose(candidates []searcher.Candidate, _ []game.Position) searcher.Candidate {
	return best(candidates)
}

func best(candidates []searcher.Candidate) searcher.Candidate {
	top := candidates[0]
	for _, c := range candidates[1:] {
		if c.Score > top.Score {
			top = c
		}
	}
	return top
}

// Sampler draws a candidate with probability proportional to
// exp(score/temperature). A zero temperature draws uniformly.
type Sampler struct {
	mu          sync.Mutex
	rng         *rand.Rand
	temperature float64
}

func NewSampler(seed uint64, temperature float64) *Sampler {
	return &Sampler{rng: rand.New(rand.NewSource(seed)), temperature: temperature}
}

func (s *Sampler) Name() string {
	if s.temperature <= 0 {
		return "random"
	}
	return "softmax"
}

func (s *Sampler) Choose(candidates []searcher.Candidate, _ []game.Position) searcher.Candidate {
	s.mu.Lock()
	sampled := s.rng.Float64()
	s.mu.Unlock()
	return sample(policy(candidates, s.temperature), candidates, sampled)
}

// Lookahead re-scores every candidate by playing random games out from the
// board it leaves, then takes the best.
type Lookahead struct {
	rollout *searcher.Rollout
}

func NewLookahead(rollout *searcher.Rollout) *Lookahead {
	return &Lookahead{rollout: rollout}
}

func (*Lookahead) Name() string { return "rollout" }

func (l *Lookahead) Choose(candidates []searcher.Candidate, board []game.Position) searcher.Candidate {
	if len(candidates) == 1 {
		return candidates[0]
	}
	scored := make([]searcher.Candidate, len(candidates))
	for i, c := range candidates {
		c.Score = l.rollout.Evaluate(c.Position, c.Path, board)
		scored[i] = c
	}
	return best(scored)
}

// policy turns scores into probabilities.
func policy(candidates []searcher.Candidate, temperature float64) []float64 {
	probs := make([]float64, len(candidates))
	if temperature <= 0 {
		for i := range probs {
			probs[i] = 1 / float64(len(probs))
		}
		return probs
	}

	// Shift by the max score to keep exp in range
	top := math.Inf(-1)
	for _, c := range candidates {
		top = math.Max(top, c.Score)
	}
	sum := 0.0
	for i, c := range candidates {
		probs[i] = math.Exp((c.Score - top) / temperature)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

func sample(probs []float64, candidates []searcher.Candidate, sampled float64) searcher.Candidate {
	cumulative := 0.0
	for i, p := range probs {
		cumulative += p
		if sampled < cumulative {
			return candidates[i]
		}
	}
	return candidates[len(candidates)-1] // Fallback in case of rounding errors
}
