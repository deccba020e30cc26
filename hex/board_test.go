package hex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoard(t *testing.T) {
	t.Run("rejects sizes outside 2..26", func(t *testing.T) {
		for _, size := range []int{-1, 0, 1, MaxBoardSize + 1} {
			_, err := NewBoard(size)
			assert.ErrorIs(t, err, ErrBoardSize, "size %d", size)
		}
	})

	t.Run("starts empty", func(t *testing.T) {
		b, err := NewBoard(4)
		require.NoError(t, err)
		assert.Equal(t, 4, b.Size())
		assert.Len(t, b.EmptyCells(), 16)
	})
}

func TestBoardOutOfRange(t *testing.T) {
	b, err := NewBoard(3)
	require.NoError(t, err)

	for _, c := range []Coord{{-1, 0}, {0, -1}, {3, 0}, {0, 3}} {
		_, err = b.IsEmpty(c)
		assert.ErrorIs(t, err, ErrOutOfRange)
		assert.ErrorIs(t, b.Set(c, Player1), ErrOutOfRange)
		_, err = b.Neighbors(c)
		assert.ErrorIs(t, err, ErrOutOfRange)
	}
}

func TestBoardSetOverwrites(t *testing.T) {
	b, err := NewBoard(3)
	require.NoError(t, err)
	c := Coord{Row: 1, Col: 2}

	require.NoError(t, b.Set(c, Player1))
	require.NoError(t, b.Set(c, Player2))
	o, err := b.Owner(c)
	require.NoError(t, err)
	assert.Equal(t, Player2, o)

	require.NoError(t, b.Set(c, Empty))
	empty, err := b.IsEmpty(c)
	require.NoError(t, err)
	assert.True(t, empty)
}

func TestNeighborCounts(t *testing.T) {
	b, err := NewBoard(5)
	require.NoError(t, err)

	tests := []struct {
		name string
		c    Coord
		want int
	}{
		{"acute corner top-left", Coord{0, 0}, 2},
		{"acute corner bottom-right", Coord{4, 4}, 2},
		{"obtuse corner top-right", Coord{0, 4}, 3},
		{"obtuse corner bottom-left", Coord{4, 0}, 3},
		{"top edge", Coord{0, 2}, 4},
		{"left edge", Coord{2, 0}, 4},
		{"right edge", Coord{3, 4}, 4},
		{"bottom edge", Coord{4, 1}, 4},
		{"interior", Coord{2, 2}, 6},
		{"interior near corner", Coord{1, 1}, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := b.Neighbors(tt.c)
			require.NoError(t, err)
			assert.Len(t, n, tt.want)
		})
	}
}

func TestNeighborsExcludeShortDiagonal(t *testing.T) {
	b, err := NewBoard(5)
	require.NoError(t, err)

	n, err := b.Neighbors(Coord{2, 2})
	require.NoError(t, err)
	assert.ElementsMatch(t, []Coord{{1, 2}, {1, 3}, {2, 1}, {2, 3}, {3, 1}, {3, 2}}, n)
	assert.NotContains(t, n, Coord{1, 1})
	assert.NotContains(t, n, Coord{3, 3})
}

func TestNeighborsSymmetric(t *testing.T) {
	for _, size := range []int{2, 3, 5, 11} {
		b, err := NewBoard(size)
		require.NoError(t, err)
		for r := 0; r < size; r++ {
			for c := 0; c < size; c++ {
				a := Coord{r, c}
				ns, err := b.Neighbors(a)
				require.NoError(t, err)
				for _, n := range ns {
					back, err := b.Neighbors(n)
					require.NoError(t, err)
					assert.Contains(t, back, a, "size %d: %v -> %v", size, a, n)
				}
			}
		}
	}
}

func TestBoardCloneIsIndependent(t *testing.T) {
	b, err := NewBoard(3)
	require.NoError(t, err)
	require.NoError(t, b.Set(Coord{0, 0}, Player1))

	clone := b.Clone()
	require.NoError(t, clone.Set(Coord{1, 1}, Player2))

	o, _ := b.Owner(Coord{1, 1})
	assert.Equal(t, Empty, o)
	assert.Equal(t, Player1, clone.Cells()[0][0])
}

func TestCoordTranspose(t *testing.T) {
	assert.Equal(t, Coord{Row: 2, Col: 1}, Coord{Row: 1, Col: 2}.Transpose())
}
