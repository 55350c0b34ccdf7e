package searcher

import (
	"slices"

	"yut/game"
	"yut/utils"
)

// walk is a partially built path.
type walk struct {
	steps       []game.MoveStep
	node        game.Node
	prev        game.Node // cell visited right before node, "" when unknown
	arrivedFrom []game.Node
	finished    bool // reached out
}

// Suggest lists every legal path for the group at position using all of dice.
// Every distinct ordering of dice is walked; identical results are reported
// once, in the order first found. Suggest only reads the static board and is
// safe for concurrent use.
func Suggest(position game.Position, dice []game.Outcome) []game.MovePath {
	if len(dice) == 0 {
		return nil
	}

	if position.Node == game.Out {
		var paths []game.MovePath
		for _, o := range distinct(dice) {
			paths = append(paths, game.MovePath{Steps: []game.MoveStep{{Outcome: o, Nodes: []game.Node{game.Out}}}})
		}
		return paths
	}

	role := position.Role()
	var paths []game.MovePath
	for _, order := range utils.Permutations(dice) {
		walks := []walk{{node: position.Node, arrivedFrom: position.ArrivedFrom}}
		for _, o := range order {
			var next []walk
			for _, w := range walks {
				switch {
				case w.finished:
					next = append(next, w)
				case o.IsBackward():
					next = append(next, backward(role, w, o)...)
				default:
					next = append(next, forward(role, w, o)...)
				}
			}
			walks = next
		}
		for _, w := range walks {
			paths = append(paths, game.MovePath{Steps: w.steps})
		}
	}
	return utils.Dedup(paths, game.MovePath.Key)
}

func forward(role game.Role, w walk, o game.Outcome) []walk {
	firstOfPath := len(w.steps) == 0
	seqs := [][]game.Node{{w.node}}
	for unit := 0; unit < o.Steps(); unit++ {
		var grown [][]game.Node
		for _, seq := range seqs {
			prev := w.prev
			if len(seq) > 1 {
				prev = seq[len(seq)-2]
			}
			nexts := role.Next(prev, seq[len(seq)-1], unit == 0, firstOfPath && unit == 0)
			if len(nexts) == 0 {
				grown = append(grown, seq)
				continue
			}
			for _, n := range nexts {
				grown = append(grown, append(slices.Clone(seq), n))
			}
		}
		seqs = grown
	}

	walks := make([]walk, 0, len(seqs))
	for _, seq := range seqs {
		walks = append(walks, w.extend(game.MoveStep{Outcome: o, Nodes: seq}))
	}
	return walks
}

func backward(role game.Role, w walk, o game.Outcome) []walk {
	targets := role.Back(w.node, w.arrivedFrom)
	if len(targets) == 0 {
		return []walk{w.extend(game.MoveStep{Outcome: o, Nodes: []game.Node{w.node}})}
	}
	walks := make([]walk, 0, len(targets))
	for _, target := range targets {
		walks = append(walks, w.extend(game.MoveStep{Outcome: o, Nodes: []game.Node{w.node, target}}))
	}
	return walks
}

// extend appends step and carries forward what the next step needs to know.
func (w walk) extend(step game.MoveStep) walk {
	next := walk{
		steps:       append(slices.Clone(w.steps), step),
		node:        step.End(),
		prev:        w.prev,
		arrivedFrom: w.arrivedFrom,
	}
	if len(step.Nodes) > 1 {
		next.prev = step.Nodes[len(step.Nodes)-2]
		next.arrivedFrom = []game.Node{next.prev}
	}
	next.finished = next.node == game.Out
	return next
}

func distinct(dice []game.Outcome) []game.Outcome {
	sorted := slices.Clone(dice)
	slices.Sort(sorted)
	return slices.Compact(sorted)
}
