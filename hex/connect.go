package hex

// edgeAxis selects the coordinate a player's edges are measured on:
// rows for Player 1, columns for Player 2.
func edgeAxis(player Owner, c Coord) int {
	return [2]int{c.Row, c.Col}[player-1]
}

// TouchesWalls walks the chain of player's stones containing start and
// reports whether it reaches the player's first edge (axis value 0) and
// second edge (axis value N-1). A start cell not owned by player touches
// nothing.
func TouchesWalls(b *Board, player Owner, start Coord) (edgeA, edgeB bool) {
	if player != Player1 && player != Player2 {
		return false, false
	}
	if o, err := b.Owner(start); err != nil || o != player {
		return false, false
	}

	last := b.size - 1
	visited := make([]bool, len(b.cells))
	visited[start.Row*b.size+start.Col] = true
	stack := []Coord{start}

	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch edgeAxis(player, c) {
		case 0:
			edgeA = true
		case last:
			edgeB = true
		}
		if edgeA && edgeB {
			return true, true
		}

		for _, n := range b.neighbors(c) {
			idx := n.Row*b.size + n.Col
			if visited[idx] || b.cells[idx] != player {
				continue
			}
			visited[idx] = true
			stack = append(stack, n)
		}
	}
	return edgeA, edgeB
}

// Wins reports whether the chain through start connects both of player's edges.
func Wins(b *Board, player Owner, start Coord) bool {
	a, z := TouchesWalls(b, player, start)
	return a && z
}
