// Package htp drives an external Hex engine over HTP, the GTP dialect
// spoken by MoHex and Wolve.
package htp

import (
	"fmt"
	"strconv"
	"strings"

	"termhex/hex"
)

// HTP coordinate system:
// - Columns: a-z, left to right
// - Rows: 1-26, top to bottom
// - Example: a1 is the top-left cell, k11 the bottom-right of an 11x11 board
//
// Player 1 (black) joins the top and bottom rows, Player 2 (white) the
// left and right columns.

// cellToHTP converts a board coordinate to HTP notation: (0, 0) -> a1, (2, 1) -> b3.
func cellToHTP(c hex.Coord) string {
	return fmt.Sprintf("%c%d", 'a'+rune(c.Col), c.Row+1)
}

// htpToCell converts HTP notation to a board coordinate.
func htpToCell(vertex string, size int) (hex.Coord, error) {
	vertex = strings.ToLower(strings.TrimSpace(vertex))
	if len(vertex) < 2 {
		return hex.Coord{}, fmt.Errorf("invalid vertex: %q", vertex)
	}

	col := int(vertex[0]) - 'a'
	if col < 0 || col >= size {
		return hex.Coord{}, fmt.Errorf("invalid column in vertex: %q", vertex)
	}

	row, err := strconv.Atoi(vertex[1:])
	if err != nil {
		return hex.Coord{}, fmt.Errorf("invalid row in vertex: %q", vertex)
	}
	if row < 1 || row > size {
		return hex.Coord{}, fmt.Errorf("vertex out of bounds: %q", vertex)
	}
	return hex.Coord{Row: row - 1, Col: col}, nil
}

// colorToHTP converts a player to an HTP color.
func colorToHTP(p hex.Owner) string {
	if p == hex.Player1 {
		return "black"
	}
	return "white"
}
