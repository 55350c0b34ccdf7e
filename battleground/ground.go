package battleground

import (
	"errors"
	"fmt"
	"slices"

	"yut/game"

	"github.com/rs/zerolog/log"
)

var (
	ErrNoKnights     = errors.New("no knights to move")
	ErrUnknownKnight = errors.New("unknown knight")
	ErrSplitKnights  = errors.New("knights are not in the same position")
	ErrPathStart     = errors.New("path does not start at the knights' position")
	ErrInvalidLedger = errors.New("positions do not partition the roster")
)

// Result describes one applied move.
type Result struct {
	Movements []game.Movement
	Battles   []game.Battle
	Final     game.Position
}

// Killed lists every knight sent back to start by the move.
func (r Result) Killed() []game.Knight {
	var killed []game.Knight
	for _, b := range r.Battles {
		killed = append(killed, b.Killed...)
	}
	return killed
}

// Ground is the authoritative ledger of where every knight stands. It is not
// safe for concurrent use.
type Ground struct {
	info      game.Info
	rules     game.Rules
	positions []game.Position
}

// New places every knight of info alone on start.
func New(info game.Info, rules game.Rules) *Ground {
	g := &Ground{info: info, rules: rules}
	for _, k := range info.AllKnights() {
		g.positions = append(g.positions, game.NewPosition(game.Start, []game.Knight{k}, nil))
	}
	return g
}

// Restore resumes a ledger from a snapshot. Every knight of info must appear
// in exactly one non-empty, single-player position.
func Restore(info game.Info, rules game.Rules, positions []game.Position) (*Ground, error) {
	roster := make(map[string]game.Knight)
	for _, k := range info.AllKnights() {
		roster[k.ID] = k
	}
	seen := make(map[string]bool, len(roster))
	for _, p := range positions {
		if len(p.Knights) == 0 {
			return nil, fmt.Errorf("%w: empty position at %s", ErrInvalidLedger, p.Node)
		}
		if !p.Node.IsValid() {
			return nil, fmt.Errorf("%w: %w %q", ErrInvalidLedger, game.ErrUnknownNode, p.Node)
		}
		for _, k := range p.Knights {
			if roster[k.ID] != k {
				return nil, fmt.Errorf("%w: knight %s is not on the roster", ErrInvalidLedger, k.ID)
			}
			if k.PlayerID != p.PlayerID() {
				return nil, fmt.Errorf("%w: mixed players at %s", ErrInvalidLedger, p.Node)
			}
			if seen[k.ID] {
				return nil, fmt.Errorf("%w: knight %s placed twice", ErrInvalidLedger, k.ID)
			}
			seen[k.ID] = true
		}
	}
	if len(seen) != len(roster) {
		return nil, fmt.Errorf("%w: %d of %d knights placed", ErrInvalidLedger, len(seen), len(roster))
	}
	g := &Ground{info: info, rules: rules}
	for _, p := range positions {
		g.positions = append(g.positions, game.NewPosition(p.Node, p.Knights, p.ArrivedFrom))
	}
	return g, nil
}

// Positions returns a sorted copy of the ledger.
func (g *Ground) Positions() []game.Position {
	return snapshot(g.positions)
}

// PositionOf returns the position holding knightID.
func (g *Ground) PositionOf(knightID string) (game.Position, bool) {
	i := indexOf(g.positions, knightID)
	if i < 0 {
		return game.Position{}, false
	}
	return g.positions[i].Copy(), true
}

// PositionsOf returns the positions owned by playerID.
func (g *Ground) PositionsOf(playerID string) []game.Position {
	var owned []game.Position
	for _, p := range g.positions {
		if p.PlayerID() == playerID {
			owned = append(owned, p)
		}
	}
	return snapshot(owned)
}

// Winner returns the player whose attacking knights have all left the board.
func (g *Ground) Winner() (string, bool) {
	return g.rules.Winner(g.info.AllKnights(), g.positions)
}

// Move walks knightIDs along path, merging with allies and fighting hostile
// groups on every step's destination. A rejected move leaves the ledger
// untouched.
func (g *Ground) Move(knightIDs []string, path game.MovePath) (Result, error) {
	if len(knightIDs) == 0 {
		return Result{}, ErrNoKnights
	}
	src := indexOf(g.positions, knightIDs[0])
	if src < 0 {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownKnight, knightIDs[0])
	}
	from := g.positions[src]
	moving := make(map[string]bool, len(knightIDs))
	for _, id := range knightIDs {
		if indexOf(g.positions, id) < 0 {
			return Result{}, fmt.Errorf("%w: %s", ErrUnknownKnight, id)
		}
		if !from.Contains(id) {
			return Result{}, fmt.Errorf("%w: %s is not at %s", ErrSplitKnights, id, from.Node)
		}
		moving[id] = true
	}
	var knights []game.Knight
	for _, k := range from.Knights {
		if moving[k.ID] {
			knights = append(knights, k)
		}
	}
	group := game.NewPosition(from.Node, knights, from.ArrivedFrom)
	if err := path.Validate(group.Role()); err != nil {
		return Result{}, fmt.Errorf("invalid path: %w", err)
	}
	if path.Start() != from.Node {
		return Result{}, fmt.Errorf("%w: path starts at %s, knights are at %s", ErrPathStart, path.Start(), from.Node)
	}
	if err := path.Follow(group.Role(), group.ArrivedFrom); err != nil {
		return Result{}, fmt.Errorf("invalid path: %w", err)
	}

	// Work on a copy so that the ledger changes in one go
	work := make([]game.Position, 0, len(g.positions)+1)
	for _, p := range g.positions {
		if rest, ok := p.Without(moving); ok {
			work = append(work, rest.Copy())
		}
	}

	var result Result
	var killed []game.Knight
	for _, step := range path.Steps {
		dest := step.End()
		arrived := group.ArrivedFrom
		if len(step.Nodes) > 1 {
			arrived = []game.Node{step.Nodes[len(step.Nodes)-2]}
		}
		movement := game.Movement{Knights: slices.Clone(group.Knights), Step: step}
		moved := game.NewPosition(dest, group.Knights, arrived)

		if dest == game.Start {
			// Start is neutral ground: no fights and no stacking
			result.Movements = append(result.Movements, movement)
			group = moved
			continue
		}

		var allies, hostiles []game.Position
		remaining := work[:0]
		for _, p := range work {
			switch {
			case p.Node != dest:
				remaining = append(remaining, p)
			case p.PlayerID() == group.PlayerID():
				allies = append(allies, p)
			case dest == game.Out:
				remaining = append(remaining, p)
			default:
				hostiles = append(hostiles, p)
			}
		}
		work = remaining

		if len(hostiles) > 0 {
			var enemies []game.Knight
			for _, p := range hostiles {
				enemies = append(enemies, p.Knights...)
			}
			battle := fight(dest, group.Knights, enemies)
			result.Battles = append(result.Battles, battle)
			killed = append(killed, battle.Killed...)
			// Survivors stay put, each group keeping its own arrival
			dead := game.KnightSet(battle.Killed)
			for _, p := range hostiles {
				if rest, ok := p.Without(dead); ok {
					work = append(work, rest)
				}
			}
			log.Debug().Msgf("battle at %s: %d killed, %d survived", dest, len(battle.Killed), len(battle.Survivors))
		}

		for _, ally := range allies {
			movement.MergedWith = append(movement.MergedWith, ally.Knights...)
			moved = moved.Merge(ally)
		}
		result.Movements = append(result.Movements, movement)
		group = moved
	}

	work = append(work, group)
	for _, k := range killed {
		work = append(work, game.NewPosition(game.Start, []game.Knight{k}, nil))
	}
	work = resetDefendersOut(work)

	g.positions = work
	result.Final = g.finalPosition(group)
	return result, nil
}

// fight resolves a group landing on hostile knights. Hostile defenders shield
// their own cell: when any is present every hostile defender survives and
// only the hostile attackers die. Otherwise every hostile knight dies.
func fight(node game.Node, attackers, hostiles []game.Knight) game.Battle {
	shielded := slices.ContainsFunc(hostiles, func(k game.Knight) bool { return k.Defender })
	battle := game.Battle{Node: node, Attackers: slices.Clone(attackers)}
	for _, k := range hostiles {
		if shielded && k.Defender {
			battle.Survivors = append(battle.Survivors, k)
		} else {
			battle.Killed = append(battle.Killed, k)
		}
	}
	return battle
}

// resetDefendersOut sends defenders that left the board back to start.
func resetDefendersOut(positions []game.Position) []game.Position {
	var reset []game.Knight
	out := positions[:0]
	for _, p := range positions {
		if p.Node != game.Out {
			out = append(out, p)
			continue
		}
		var defenders []game.Knight
		for _, k := range p.Knights {
			if k.Defender {
				defenders = append(defenders, k)
			}
		}
		if rest, ok := p.Without(game.KnightSet(defenders)); ok {
			out = append(out, rest)
		}
		reset = append(reset, defenders...)
	}
	for _, k := range reset {
		out = append(out, game.NewPosition(game.Start, []game.Knight{k}, nil))
	}
	return out
}

// finalPosition looks up where the moved group ended, preferring an
// attacker of the group since defenders may have been reset.
func (g *Ground) finalPosition(group game.Position) game.Position {
	id := group.Knights[0].ID
	for _, k := range group.Knights {
		if !k.Defender {
			id = k.ID
			break
		}
	}
	p, _ := g.PositionOf(id)
	return p
}

func indexOf(positions []game.Position, knightID string) int {
	return slices.IndexFunc(positions, func(p game.Position) bool { return p.Contains(knightID) })
}

func snapshot(positions []game.Position) []game.Position {
	out := make([]game.Position, len(positions))
	for i, p := range positions {
		out[i] = p.Copy()
	}
	game.SortPositions(out)
	return out
}
