package game

// Evaluate scores moving from position along path, given every position on
// the board, between -1 and 1 from the mover's perspective.
type Evaluate func(from Position, path MovePath, board []Position) float64

var distances = map[Role]map[Node]int{
	Attacker: distancesToOut(Attacker),
	Defender: distancesToOut(Defender),
}

// distancesToOut walks the board backwards from out, breadth first.
func distancesToOut(r Role) map[Node]int {
	preds := r.board().preds
	dist := map[Node]int{Out: 0}
	queue := []Node{Out}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, p := range preds[n] {
			if _, seen := dist[p]; !seen {
				dist[p] = dist[n] + 1
				queue = append(queue, p)
			}
		}
	}
	return dist
}

// Distance is the fewest cells a group of role r must walk from n to out.
func Distance(r Role, n Node) int {
	if d, ok := distances[r][n]; ok {
		return d
	}
	return distances[r][Start]
}

// EvaluateProgress rewards paths that bring the group closer to out.
func EvaluateProgress(from Position, path MovePath, _ []Position) float64 {
	role := from.Role()
	total := float64(Distance(role, Start))
	gained := float64(Distance(role, from.Node) - Distance(role, path.Destination()))
	if role == Defender && path.Destination() == Out {
		// Defenders are sent back to start on leaving
		gained = -(total - float64(Distance(role, from.Node)))
	}
	return clamp(gained / total)
}

// EvaluateAggression adds a bonus for landing on hostile knights and for
// joining allies to EvaluateProgress.
func EvaluateAggression(from Position, path MovePath, board []Position) float64 {
	score := EvaluateProgress(from, path, board)
	dest := path.Destination()
	if dest == Start || dest == Out {
		return score
	}
	for _, p := range board {
		if p.Node != dest || p.PlayerID() == "" {
			continue
		}
		if p.PlayerID() != from.PlayerID() {
			score += 0.5 * float64(len(p.Knights))
		} else if !p.Contains(from.Knights[0].ID) {
			score += 0.1 * float64(len(p.Knights))
		}
	}
	return clamp(score)
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
