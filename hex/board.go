// Package hex implements the rules of Hex: the board, cell adjacency,
// the connection check, and a turn-based session with undo and the swap rule.
package hex

import (
	"errors"
	"fmt"
)

// MaxBoardSize is the largest board a game record can address (columns a-z).
const MaxBoardSize = 26

var (
	ErrOutOfRange = errors.New("coordinate out of range")
	ErrBoardSize  = errors.New("invalid board size")
)

// Owner is the state of a single cell.
type Owner int

const (
	Empty Owner = iota
	Player1
	Player2
)

// Opponent returns the other player. Empty has no opponent.
func (o Owner) Opponent() Owner {
	switch o {
	case Player1:
		return Player2
	case Player2:
		return Player1
	}
	return Empty
}

func (o Owner) String() string {
	switch o {
	case Player1:
		return "Player 1"
	case Player2:
		return "Player 2"
	}
	return "Empty"
}

// Coord addresses a cell. Player 1 connects row 0 to row N-1,
// Player 2 connects column 0 to column N-1.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Transpose swaps row and column.
func (c Coord) Transpose() Coord {
	return Coord{Row: c.Col, Col: c.Row}
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Board is an N x N grid of cells.
type Board struct {
	size  int
	cells []Owner
}

// NewBoard creates an empty board.
func NewBoard(size int) (*Board, error) {
	if size < 2 || size > MaxBoardSize {
		return nil, fmt.Errorf("%w: %d", ErrBoardSize, size)
	}
	return &Board{size: size, cells: make([]Owner, size*size)}, nil
}

// Size returns N.
func (b *Board) Size() int {
	return b.size
}

// InRange reports whether c lies on the board.
func (b *Board) InRange(c Coord) bool {
	return c.Row >= 0 && c.Row < b.size && c.Col >= 0 && c.Col < b.size
}

// Owner returns the owner of the cell at c.
func (b *Board) Owner(c Coord) (Owner, error) {
	if !b.InRange(c) {
		return Empty, fmt.Errorf("%w: %v on %dx%d board", ErrOutOfRange, c, b.size, b.size)
	}
	return b.cells[c.Row*b.size+c.Col], nil
}

// IsEmpty reports whether nobody owns the cell at c.
func (b *Board) IsEmpty(c Coord) (bool, error) {
	o, err := b.Owner(c)
	if err != nil {
		return false, err
	}
	return o == Empty, nil
}

// Set overwrites the owner of the cell at c. It does not check that the
// cell was empty.
func (b *Board) Set(c Coord, o Owner) error {
	if !b.InRange(c) {
		return fmt.Errorf("%w: %v on %dx%d board", ErrOutOfRange, c, b.size, b.size)
	}
	b.cells[c.Row*b.size+c.Col] = o
	return nil
}

// Neighbors returns the cells adjacent to c. Interior cells have 6
// neighbors, edge cells 4 and corner cells 2 or 3.
func (b *Board) Neighbors(c Coord) ([]Coord, error) {
	if !b.InRange(c) {
		return nil, fmt.Errorf("%w: %v on %dx%d board", ErrOutOfRange, c, b.size, b.size)
	}
	return b.neighbors(c), nil
}

// neighbors assumes c is in range.
func (b *Board) neighbors(c Coord) []Coord {
	out := make([]Coord, 0, 6)
	for i := c.Row - 1; i <= c.Row+1; i++ {
		for j := c.Col - 1; j <= c.Col+1; j++ {
			n := Coord{Row: i, Col: j}
			if n == c || !b.InRange(n) {
				continue
			}
			// The two Moore diagonals whose index sum differs by 2 are not
			// adjacent on a rhombic hex grid.
			if abs((c.Row+c.Col)-(i+j)) > 1 {
				continue
			}
			out = append(out, n)
		}
	}
	return out
}

// EmptyCells lists all unowned cells in row-major order.
func (b *Board) EmptyCells() []Coord {
	var out []Coord
	for i, o := range b.cells {
		if o == Empty {
			out = append(out, Coord{Row: i / b.size, Col: i % b.size})
		}
	}
	return out
}

// Cells returns a row-major copy of the grid, indexed [row][col].
func (b *Board) Cells() [][]Owner {
	grid := make([][]Owner, b.size)
	for r := range grid {
		grid[r] = make([]Owner, b.size)
		copy(grid[r], b.cells[r*b.size:(r+1)*b.size])
	}
	return grid
}

// Clone returns an independent copy of the board.
func (b *Board) Clone() *Board {
	cells := make([]Owner, len(b.cells))
	copy(cells, b.cells)
	return &Board{size: b.size, cells: cells}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
