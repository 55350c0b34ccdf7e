package game

import (
	"slices"
	"strings"
)

// Knight is a token owned by a player. Defender is fixed at creation.
type Knight struct {
	ID       string `json:"id"`
	PlayerID string `json:"player_id"`
	Defender bool   `json:"defender"`
}

// Position is a group of knights of a single player sharing one node.
type Position struct {
	Node        Node     `json:"node"`
	Knights     []Knight `json:"knights"`                // sorted by id
	ArrivedFrom []Node   `json:"arrived_from,omitempty"` // remembered for backward moves
}

// NewPosition groups knights at node, normalising their order.
func NewPosition(node Node, knights []Knight, arrivedFrom []Node) Position {
	p := Position{
		Node:        node,
		Knights:     slices.Clone(knights),
		ArrivedFrom: slices.Clone(arrivedFrom),
	}
	p.Knights = sortKnights(p.Knights)
	slices.Sort(p.ArrivedFrom)
	p.ArrivedFrom = slices.Compact(p.ArrivedFrom)
	return p
}

// PlayerID returns the owner of the group, or "" for an empty position.
func (p Position) PlayerID() string {
	if len(p.Knights) == 0 {
		return ""
	}
	return p.Knights[0].PlayerID
}

// Role is Defender only when every knight in the group is a defender.
func (p Position) Role() Role {
	if len(p.Knights) == 0 {
		return Attacker
	}
	for _, k := range p.Knights {
		if !k.Defender {
			return Attacker
		}
	}
	return Defender
}

func (p Position) Contains(knightID string) bool {
	return slices.ContainsFunc(p.Knights, func(k Knight) bool { return k.ID == knightID })
}

func (p Position) KnightIDs() []string {
	ids := make([]string, len(p.Knights))
	for i, k := range p.Knights {
		ids[i] = k.ID
	}
	return ids
}

// Copy returns a deep copy of the position.
func (p Position) Copy() Position {
	return Position{
		Node:        p.Node,
		Knights:     slices.Clone(p.Knights),
		ArrivedFrom: slices.Clone(p.ArrivedFrom),
	}
}

// Without drops the given knights. ok is false when nothing remains.
func (p Position) Without(ids map[string]bool) (Position, bool) {
	remain := make([]Knight, 0, len(p.Knights))
	for _, k := range p.Knights {
		if !ids[k.ID] {
			remain = append(remain, k)
		}
	}
	if len(remain) == 0 {
		return Position{}, false
	}
	return Position{Node: p.Node, Knights: remain, ArrivedFrom: slices.Clone(p.ArrivedFrom)}, true
}

// Merge unions two groups at the same node.
func (p Position) Merge(other Position) Position {
	return NewPosition(p.Node, append(slices.Clone(p.Knights), other.Knights...), append(slices.Clone(p.ArrivedFrom), other.ArrivedFrom...))
}

func sortKnights(knights []Knight) []Knight {
	slices.SortFunc(knights, func(a, b Knight) int { return strings.Compare(a.ID, b.ID) })
	return slices.CompactFunc(knights, func(a, b Knight) bool { return a.ID == b.ID })
}

// SortPositions orders positions by node then by first knight id.
func SortPositions(positions []Position) {
	slices.SortFunc(positions, func(a, b Position) int {
		if c := strings.Compare(string(a.Node), string(b.Node)); c != 0 {
			return c
		}
		return strings.Compare(a.Knights[0].ID, b.Knights[0].ID)
	})
}

// KnightSet returns the ids of knights as a lookup set.
func KnightSet(knights []Knight) map[string]bool {
	set := make(map[string]bool, len(knights))
	for _, k := range knights {
		set[k.ID] = true
	}
	return set
}
