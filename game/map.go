package game

import "slices"

// Node is a single cell of the board.
type Node string

const (
	Start Node = "start"
	Out   Node = "out"

	// Corners
	CBR Node = "CBR"
	CTR Node = "CTR"
	CTL Node = "CTL"
	CBL Node = "CBL"

	// Right edge, bottom to top
	R1 Node = "R1"
	R2 Node = "R2"
	R3 Node = "R3"
	R4 Node = "R4"

	// Top edge, right to left
	T1 Node = "T1"
	T2 Node = "T2"
	T3 Node = "T3"
	T4 Node = "T4"

	// Left edge, top to bottom
	L1 Node = "L1"
	L2 Node = "L2"
	L3 Node = "L3"
	L4 Node = "L4"

	// Bottom edge, left to right
	B1 Node = "B1"
	B2 Node = "B2"
	B3 Node = "B3"
	B4 Node = "B4"

	// Diagonals through the center
	INT Node = "INT"
	DL1 Node = "DL1"
	DL2 Node = "DL2"
	DL3 Node = "DL3"
	DL4 Node = "DL4"
	DR1 Node = "DR1"
	DR2 Node = "DR2"
	DR3 Node = "DR3"
	DR4 Node = "DR4"
)

// Nodes lists every cell of the board, start and out included.
var Nodes = []Node{
	Start,
	R1, R2, R3, R4, CTR,
	T1, T2, T3, T4, CTL,
	L1, L2, L3, L4, CBL,
	B1, B2, B3, B4, CBR,
	DL1, DL2, INT, DL3, DL4,
	DR1, DR2, DR3, DR4,
	Out,
}

// IsValid reports whether n is a cell of the board.
func (n Node) IsValid() bool {
	return slices.Contains(Nodes, n)
}

// Role selects which topology a group of knights moves on.
type Role int

const (
	Attacker Role = iota
	Defender
)

func (r Role) String() string {
	if r == Defender {
		return "defender"
	}
	return "attacker"
}

// topology holds the edges of one role's board.
type topology struct {
	next     map[Node]Node          // straight continuation
	turns    map[Node]map[Node]Node // continuation picked by the node arrived from
	shortcut map[Node]Node          // taken on the first unit of a path only
	forks    map[Node][]Node        // every branch is legal on the first unit of a step
	preds    map[Node][]Node
}

var attackerBoard = newTopology(
	map[Node]Node{
		Start: R1, R1: R2, R2: R3, R3: R4, R4: CTR,
		CTR: T1, T1: T2, T2: T3, T3: T4, T4: CTL,
		CTL: L1, L1: L2, L2: L3, L3: L4, L4: CBL,
		CBL: B1, B1: B2, B2: B3, B3: B4, B4: CBR,
		CBR: Out,
		DL1: DL2, DL2: INT, INT: DR3, DL3: DL4, DL4: CBL,
		DR1: DR2, DR2: INT, DR3: DR4, DR4: CBR,
	},
	map[Node]map[Node]Node{
		INT: {DL2: DL3},
	},
	map[Node]Node{CTR: DL1, CTL: DR1, INT: DR3},
	nil,
)

var defenderBoard = newTopology(
	map[Node]Node{
		Start: B4, B4: B3, B3: B2, B2: B1, B1: CBL,
		CBL: L4, L4: L3, L3: L2, L2: L1, L1: CTL,
		CTL: T4, T4: T3, T3: T2, T2: T1, T1: CTR,
		CTR: R4, R4: R3, R3: R2, R2: R1, R1: CBR,
		CBR: Out,
		DR4: DR3, DR3: INT, DL4: DL3, DL3: INT,
		INT: DL2, DL2: DL1, DL1: CTR, DR2: DR1, DR1: CTL,
	},
	map[Node]map[Node]Node{
		INT: {DR3: DR2},
	},
	nil,
	map[Node][]Node{
		Start: {B4, DR4},
		CBL:   {L4, DL4},
		INT:   {DL2, DR2},
	},
)

func newTopology(next map[Node]Node, turns map[Node]map[Node]Node, shortcut map[Node]Node, forks map[Node][]Node) *topology {
	t := &topology{next: next, turns: turns, shortcut: shortcut, forks: forks, preds: map[Node][]Node{}}
	link := func(from, to Node) {
		if !slices.Contains(t.preds[to], from) {
			t.preds[to] = append(t.preds[to], from)
		}
	}
	for from, to := range next {
		link(from, to)
	}
	for from, byPrev := range turns {
		for _, to := range byPrev {
			link(from, to)
		}
	}
	for from, to := range shortcut {
		link(from, to)
	}
	for from, tos := range forks {
		for _, to := range tos {
			link(from, to)
		}
	}
	return t
}

func (r Role) board() *topology {
	if r == Defender {
		return defenderBoard
	}
	return attackerBoard
}

// Next returns the cells reachable from current in one unit of forward
// movement. prev is the cell visited right before current ("" when unknown).
// An empty result means current is terminal.
func (r Role) Next(prev, current Node, firstOfStep, firstOfPath bool) []Node {
	b := r.board()
	if firstOfPath {
		if to, ok := b.shortcut[current]; ok {
			return []Node{to}
		}
	}
	if firstOfStep {
		if tos, ok := b.forks[current]; ok {
			return slices.Clone(tos)
		}
	}
	if to, ok := b.turns[current][prev]; ok {
		return []Node{to}
	}
	if to, ok := b.next[current]; ok {
		return []Node{to}
	}
	return nil
}

// Back resolves a backward unit from current. Each remembered arrival cell
// is one candidate; start is remembered as CBR. With nothing remembered the
// unique predecessor of current is used, and nil means the move stays put.
func (r Role) Back(current Node, arrivedFrom []Node) []Node {
	if len(arrivedFrom) == 0 {
		preds := r.board().preds[current]
		if len(preds) != 1 {
			return nil
		}
		arrivedFrom = preds
	}
	var back []Node
	for _, n := range arrivedFrom {
		if n == Start {
			n = CBR
		}
		if !slices.Contains(back, n) {
			back = append(back, n)
		}
	}
	return back
}

// IsEdge reports whether to directly follows from in r's topology.
func (r Role) IsEdge(from, to Node) bool {
	return slices.Contains(r.board().preds[to], from)
}
