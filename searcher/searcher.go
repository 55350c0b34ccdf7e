package searcher

import (
	"context"
	"runtime"

	"yut/game"

	"golang.org/x/sync/errgroup"
)

type Option func(s *Searcher)

// Candidate is a path available to the group at Position.
type Candidate struct {
	Position game.Position
	Path     game.MovePath
	Score    float64
}

// Searcher enumerates the paths of several groups in parallel and ranks them.
type Searcher struct {
	goroutines int
	evaluate   game.Evaluate
}

func WithGoroutines(goroutines int) Option {
	return func(s *Searcher) {
		if goroutines > 0 {
			s.goroutines = goroutines
		}
	}
}

func WithEvaluationFn(evaluate game.Evaluate) Option {
	return func(s *Searcher) {
		if evaluate != nil {
			s.evaluate = evaluate
		}
	}
}

func New(options ...Option) *Searcher {
	s := &Searcher{ // Default values
		goroutines: runtime.NumCPU(),
		evaluate:   game.EvaluateProgress,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Candidates lists the paths of every group in positions, scored against
// board. Groups are enumerated concurrently; the result keeps the order of
// positions.
func (s *Searcher) Candidates(ctx context.Context, positions []game.Position, dice []game.Outcome, board []game.Position) ([]Candidate, error) {
	perPosition := make([][]Candidate, len(positions))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.goroutines)
	for i, position := range positions {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for _, path := range Suggest(position, dice) {
				perPosition[i] = append(perPosition[i], Candidate{
					Position: position,
					Path:     path,
					Score:    s.evaluate(position, path, board),
				})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var candidates []Candidate
	for _, cs := range perPosition {
		candidates = append(candidates, cs...)
	}
	return candidates, nil
}

// Best returns the highest scoring candidate. ok is false when no group can move.
func (s *Searcher) Best(ctx context.Context, positions []game.Position, dice []game.Outcome, board []game.Position) (best Candidate, ok bool, err error) {
	candidates, err := s.Candidates(ctx, positions, dice, board)
	if err != nil {
		return Candidate{}, false, err
	}
	for i, c := range candidates {
		if i == 0 || c.Score > best.Score {
			best = c
			ok = true
		}
	}
	return best, ok, nil
}
