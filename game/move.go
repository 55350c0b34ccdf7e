package game

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrEmptyPath   = errors.New("path has no steps")
	ErrPathBroken  = errors.New("path is not contiguous")
	ErrInvalidStep = errors.New("step does not follow the board")
	ErrUnknownNode = errors.New("unknown node")
)

// MoveStep is one dice outcome and the cells it walks, its start cell included.
type MoveStep struct {
	Outcome Outcome `json:"outcome"`
	Nodes   []Node  `json:"nodes"`
}

func (s MoveStep) Start() Node {
	return s.Nodes[0]
}

func (s MoveStep) End() Node {
	return s.Nodes[len(s.Nodes)-1]
}

// MovePath is a sequence of steps moved by a single command.
type MovePath struct {
	Steps []MoveStep `json:"steps"`
}

// Start returns the first cell of the path, or "" for an empty path.
func (p MovePath) Start() Node {
	if len(p.Steps) == 0 || len(p.Steps[0].Nodes) == 0 {
		return ""
	}
	return p.Steps[0].Start()
}

// Destination returns the last cell of the path, or "" for an empty path.
func (p MovePath) Destination() Node {
	if len(p.Steps) == 0 {
		return ""
	}
	last := p.Steps[len(p.Steps)-1]
	if len(last.Nodes) == 0 {
		return ""
	}
	return last.End()
}

// Outcomes lists the dice consumed by the path, in order.
func (p MovePath) Outcomes() []Outcome {
	outcomes := make([]Outcome, len(p.Steps))
	for i, s := range p.Steps {
		outcomes[i] = s.Outcome
	}
	return outcomes
}

// Key identifies a path by its outcomes and cells.
func (p MovePath) Key() string {
	var b strings.Builder
	for i, s := range p.Steps {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(s.Outcome.String())
		for _, n := range s.Nodes {
			b.WriteByte(':')
			b.WriteString(string(n))
		}
	}
	return b.String()
}

func (p MovePath) String() string {
	return p.Key()
}

// Validate checks the path is non-empty, contiguous and that every forward
// step walks edges of role's board.
func (p MovePath) Validate(role Role) error {
	if len(p.Steps) == 0 {
		return ErrEmptyPath
	}
	for i, s := range p.Steps {
		if len(s.Nodes) == 0 {
			return fmt.Errorf("step %d: %w", i, ErrEmptyPath)
		}
		for _, n := range s.Nodes {
			if !n.IsValid() {
				return fmt.Errorf("step %d: %w: %q", i, ErrUnknownNode, n)
			}
		}
		if i > 0 && p.Steps[i-1].End() != s.Start() {
			return fmt.Errorf("step %d starts at %s, previous ended at %s: %w", i, s.Start(), p.Steps[i-1].End(), ErrPathBroken)
		}
		if s.Outcome.Steps() == 0 {
			return fmt.Errorf("step %d: %w", i, ErrUnknownOutcome)
		}
		if s.Outcome.IsBackward() {
			if len(s.Nodes) > 2 {
				return fmt.Errorf("step %d: backward step walks %d cells: %w", i, len(s.Nodes)-1, ErrInvalidStep)
			}
			continue
		}
		walked := len(s.Nodes) - 1
		if walked > s.Outcome.Steps() || (walked < s.Outcome.Steps() && s.End() != Out) {
			return fmt.Errorf("step %d: %s walks %d cells: %w", i, s.Outcome, walked, ErrInvalidStep)
		}
		for j := 1; j < len(s.Nodes); j++ {
			if !role.IsEdge(s.Nodes[j-1], s.Nodes[j]) {
				return fmt.Errorf("step %d: %s -> %s: %w", i, s.Nodes[j-1], s.Nodes[j], ErrInvalidStep)
			}
		}
	}
	return nil
}

// Follow walks path unit by unit the way a group standing on its first node
// with arrivedFrom may move: forward units take a cell offered by Role.Next,
// a backward step lands on a cell offered by Role.Back or stays put when
// there is none. Call Validate first.
func (p MovePath) Follow(role Role, arrivedFrom []Node) error {
	var prev Node
	for i, s := range p.Steps {
		current := s.Start()
		switch {
		case current == Out:
			if len(s.Nodes) != 1 {
				return fmt.Errorf("step %d: nothing follows out: %w", i, ErrInvalidStep)
			}
		case s.Outcome.IsBackward():
			back := role.Back(current, arrivedFrom)
			if len(back) == 0 && len(s.Nodes) != 1 {
				return fmt.Errorf("step %d: %s cannot leave %s: %w", i, s.Outcome, current, ErrInvalidStep)
			}
			if len(back) > 0 && (len(s.Nodes) != 2 || !slices.Contains(back, s.Nodes[1])) {
				return fmt.Errorf("step %d: %s from %s must land on one of %v: %w", i, s.Outcome, current, back, ErrInvalidStep)
			}
		default:
			for j := 1; j < len(s.Nodes); j++ {
				before := prev
				if j > 1 {
					before = s.Nodes[j-2]
				}
				first := j == 1
				if !slices.Contains(role.Next(before, s.Nodes[j-1], first, first && i == 0), s.Nodes[j]) {
					return fmt.Errorf("step %d: %s -> %s: %w", i, s.Nodes[j-1], s.Nodes[j], ErrInvalidStep)
				}
			}
		}
		if len(s.Nodes) > 1 {
			prev = s.Nodes[len(s.Nodes)-2]
			arrivedFrom = []Node{prev}
		}
	}
	return nil
}

// Battle records a fight at a node.
type Battle struct {
	Node      Node     `json:"node"`
	Attackers []Knight `json:"attackers"`
	Killed    []Knight `json:"killed"`
	Survivors []Knight `json:"survivors"`
}

// Movement records one step of a moving group and the allies it picked up.
type Movement struct {
	Knights    []Knight `json:"knights"`
	Step       MoveStep `json:"step"`
	MergedWith []Knight `json:"merged_with,omitempty"`
}
