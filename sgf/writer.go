// Package sgf implements SGF FF[4] writing and reading for Hex game records (GM[11]).
package sgf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"termhex/hex"
)

// Player names written to PB/PW.
const (
	NameHuman = "Human"
	NameBot   = "Bot"
)

// swapValue is the move value HexGui and MoHex use for the swap rule.
const swapValue = "swap-pieces"

var ErrClosed = errors.New("game record closed")

// GameRecord tracks a game in progress and writes it as SGF.
type GameRecord struct {
	FilePath    string
	ID          string
	BoardSize   int
	PlayerBlack string
	PlayerWhite string
	Date        string
	Result      string
	moves       []string // ";B[c3]", ";W[swap-pieces]", ...
	file        *os.File
}

// NewGameRecord creates a new SGF file in dir and writes the initial header.
func NewGameRecord(dir string, boardSize int, mode hex.Mode) (*GameRecord, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	now := time.Now()
	id := uuid.NewString()
	filename := fmt.Sprintf("%s_%dx%d_%s.sgf", now.Format("2006-01-02_150405"), boardSize, boardSize, id[:8])
	path := filepath.Join(dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create sgf file: %w", err)
	}

	pb, pw := NameHuman, NameHuman
	switch mode {
	case hex.HumanVsBot:
		pw = NameBot
	case hex.BotVsHuman:
		pb = NameBot
	}

	rec := &GameRecord{
		FilePath:    path,
		ID:          id,
		BoardSize:   boardSize,
		PlayerBlack: pb,
		PlayerWhite: pw,
		Date:        now.Format("2006-01-02"),
		Result:      "?",
		file:        f,
	}

	if err := rec.flush(); err != nil {
		f.Close()
		return nil, err
	}

	return rec, nil
}

// CellName converts a board coordinate to the Hex cell name used in SGF and HTP.
// (0,0) -> "a1", row 2 col 1 -> "b3".
func CellName(c hex.Coord) string {
	return fmt.Sprintf("%c%d", 'a'+rune(c.Col), c.Row+1)
}

// moveNodes renders a game record. Colors alternate from black, with the
// swap entry taking white's turn.
func moveNodes(moves []hex.Move) []string {
	nodes := make([]string, 0, len(moves))
	for i, m := range moves {
		color := "B"
		if i%2 == 1 {
			color = "W"
		}
		value := swapValue
		if !m.Swap {
			value = CellName(m.Coord)
		}
		nodes = append(nodes, fmt.Sprintf(";%s[%s]", color, value))
	}
	return nodes
}

// Sync replaces the recorded moves with moves and rewrites the file.
// It is called after every move, undo and swap.
func (r *GameRecord) Sync(moves []hex.Move) error {
	r.moves = moveNodes(moves)
	return r.flush()
}

// SetResult sets the SGF RE property from the winner. Empty clears it.
func (r *GameRecord) SetResult(winner hex.Owner) error {
	r.Result = resultFor(winner)
	return r.flush()
}

func resultFor(winner hex.Owner) string {
	switch winner {
	case hex.Player1:
		return "B+"
	case hex.Player2:
		return "W+"
	}
	return "?"
}

// Close performs a final flush and closes the file handle.
func (r *GameRecord) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.flush()
	if cerr := r.file.Close(); err == nil {
		err = cerr
	}
	r.file = nil
	return err
}

// flush rewrites the complete SGF file from scratch.
func (r *GameRecord) flush() error {
	if r.file == nil {
		return ErrClosed
	}

	var b strings.Builder

	// Root node
	b.WriteString("(;FF[4]GM[11]CA[UTF-8]")
	b.WriteString("AP[termhex:1.0]")
	b.WriteString(fmt.Sprintf("SZ[%d]", r.BoardSize))
	b.WriteString(fmt.Sprintf("PB[%s]", r.PlayerBlack))
	b.WriteString(fmt.Sprintf("PW[%s]", r.PlayerWhite))
	b.WriteString(fmt.Sprintf("DT[%s]", r.Date))
	b.WriteString(fmt.Sprintf("RE[%s]", r.Result))
	b.WriteString(fmt.Sprintf("GN[%s]", r.ID))
	b.WriteString("\n")

	for _, m := range r.moves {
		b.WriteString(m)
	}

	b.WriteString(")\n")

	// Rewrite file from start
	if _, err := r.file.Seek(0, 0); err != nil {
		return err
	}
	if err := r.file.Truncate(0); err != nil {
		return err
	}
	if _, err := r.file.WriteString(b.String()); err != nil {
		return err
	}
	return r.file.Sync()
}
