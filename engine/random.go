package engine

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"termhex/hex"
)

var ErrNoEmptyCells = errors.New("no empty cells left")

// RandomBot plays a uniformly random empty cell and takes the swap on a coin flip.
type RandomBot struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomBot creates a bot seeded with seed, or with the clock if seed is 0.
func NewRandomBot(seed int64) *RandomBot {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomBot{rng: rand.New(rand.NewSource(seed))}
}

func (r *RandomBot) ChooseMove(b *hex.Board, _ hex.Owner) (hex.Coord, error) {
	empty := b.EmptyCells()
	if len(empty) == 0 {
		return hex.Coord{}, ErrNoEmptyCells
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return empty[r.rng.Intn(len(empty))], nil
}

func (r *RandomBot) DecideSwap(b *hex.Board) (hex.SwapDecision, error) {
	r.mu.Lock()
	swap := r.rng.Intn(2) == 0
	r.mu.Unlock()
	if swap {
		return hex.SwapDecision{Swap: true}, nil
	}
	c, err := r.ChooseMove(b, hex.Player2)
	return hex.SwapDecision{Move: c}, err
}
