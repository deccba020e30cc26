package hex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boardWith(t *testing.T, size int, player Owner, cells ...Coord) *Board {
	t.Helper()
	b, err := NewBoard(size)
	require.NoError(t, err)
	for _, c := range cells {
		require.NoError(t, b.Set(c, player))
	}
	return b
}

func TestWins(t *testing.T) {
	t.Run("full first row is not a win for player 1", func(t *testing.T) {
		row := []Coord{{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4}}
		b := boardWith(t, 5, Player1, row...)

		a, z := TouchesWalls(b, Player1, Coord{0, 4})
		assert.True(t, a)
		assert.False(t, z)
		assert.False(t, Wins(b, Player1, Coord{0, 2}))
	})

	t.Run("zig-zag from row 0 to row 4 wins for player 1", func(t *testing.T) {
		path := []Coord{{0, 2}, {1, 1}, {2, 1}, {3, 0}, {4, 0}}
		b := boardWith(t, 5, Player1, path...)

		for _, c := range path {
			assert.True(t, Wins(b, Player1, c), "seeded from %v", c)
		}
	})

	t.Run("full first row wins for player 2", func(t *testing.T) {
		row := []Coord{{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4}}
		b := boardWith(t, 5, Player2, row...)
		assert.True(t, Wins(b, Player2, Coord{0, 0}))
	})

	t.Run("long diagonal is not connected", func(t *testing.T) {
		b := boardWith(t, 3, Player1, Coord{0, 0}, Coord{1, 1}, Coord{2, 2})
		assert.False(t, Wins(b, Player1, Coord{1, 1}))
	})

	t.Run("short diagonal is connected", func(t *testing.T) {
		b := boardWith(t, 3, Player1, Coord{0, 2}, Coord{1, 1}, Coord{2, 0})
		assert.True(t, Wins(b, Player1, Coord{2, 0}))
	})

	t.Run("opponent stones do not bridge a chain", func(t *testing.T) {
		b := boardWith(t, 3, Player1, Coord{0, 0}, Coord{2, 0})
		require.NoError(t, b.Set(Coord{1, 0}, Player2))
		assert.False(t, Wins(b, Player1, Coord{0, 0}))
	})

	t.Run("start cell not owned by player touches nothing", func(t *testing.T) {
		b := boardWith(t, 3, Player1, Coord{0, 0}, Coord{1, 0}, Coord{2, 0})
		a, z := TouchesWalls(b, Player2, Coord{0, 0})
		assert.False(t, a)
		assert.False(t, z)
		a, z = TouchesWalls(b, Player1, Coord{1, 1})
		assert.False(t, a)
		assert.False(t, z)
	})

	t.Run("only the chain through the start cell counts", func(t *testing.T) {
		b := boardWith(t, 3, Player1, Coord{0, 0}, Coord{1, 0}, Coord{2, 0}, Coord{0, 2})
		assert.False(t, Wins(b, Player1, Coord{0, 2}))
		assert.True(t, Wins(b, Player1, Coord{1, 0}))
	})
}

func TestEdgeAxis(t *testing.T) {
	c := Coord{Row: 3, Col: 7}
	assert.Equal(t, 3, edgeAxis(Player1, c))
	assert.Equal(t, 7, edgeAxis(Player2, c))
}
