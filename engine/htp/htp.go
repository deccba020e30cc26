package htp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"termhex/hex"
)

// Replies to genmove that are not cells.
const (
	replySwap   = "swap-pieces"
	replyResign = "resign"
)

// closeTimeout bounds how long Close waits for the engine to exit.
var closeTimeout = 3 * time.Second

var (
	ErrEngine   = errors.New("htp engine error")
	ErrResigned = errors.New("engine resigned")
)

// Engine implements hex.Bot with an external HTP engine. Every request
// resends the whole position, so the engine never has to track undo or swap.
type Engine struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	size   int
	log    *slog.Logger

	mu sync.Mutex
}

// Start launches the engine binary and sets the board size.
func Start(path string, args []string, size int, logger *slog.Logger) (*Engine, error) {
	cmd := exec.Command(path, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	// Engines chatter on stderr; leaving it nil discards it.
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", path, err)
	}

	e, err := New(stdout, stdin, size, logger)
	if err != nil {
		_ = stdin.Close()
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, err
	}
	e.cmd = cmd
	return e, nil
}

// New speaks HTP over an already connected reader and writer.
func New(r io.Reader, w io.WriteCloser, size int, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	e := &Engine{
		stdin:  w,
		stdout: bufio.NewReader(r),
		size:   size,
		log:    logger.With("component", "htp"),
	}
	if _, err := e.sendCommand(fmt.Sprintf("boardsize %d", size)); err != nil {
		return nil, fmt.Errorf("failed to set board size: %w", err)
	}
	return e, nil
}

// sendCommand sends an HTP command and returns the response.
func (e *Engine) sendCommand(cmd string) (string, error) {
	e.log.Debug("send", "cmd", cmd)

	if _, err := fmt.Fprintf(e.stdin, "%s\n", cmd); err != nil {
		return "", fmt.Errorf("failed to send command: %w", err)
	}

	var response strings.Builder
	for {
		line, err := e.stdout.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read response to %q: %w", cmd, err)
		}

		line = strings.TrimRight(line, "\r\n")
		// Empty line signals end of response
		if line == "" {
			if response.Len() == 0 {
				continue
			}
			break
		}
		if response.Len() > 0 {
			response.WriteString("\n")
		}
		response.WriteString(line)
	}

	result := response.String()
	e.log.Debug("recv", "cmd", cmd, "response", result)

	if strings.HasPrefix(result, "?") {
		return "", fmt.Errorf("%w: %s: %s", ErrEngine, cmd, strings.TrimSpace(strings.TrimPrefix(result, "?")))
	}
	return strings.TrimSpace(strings.TrimPrefix(result, "=")), nil
}

// setPosition replays every stone of b onto a cleared engine board.
func (e *Engine) setPosition(b *hex.Board) error {
	if b.Size() != e.size {
		return fmt.Errorf("%w: board is %dx%d, engine is %dx%d", ErrEngine, b.Size(), b.Size(), e.size, e.size)
	}
	if _, err := e.sendCommand("clear_board"); err != nil {
		return err
	}
	for r, row := range b.Cells() {
		for c, o := range row {
			if o == hex.Empty {
				continue
			}
			cell := hex.Coord{Row: r, Col: c}
			if _, err := e.sendCommand(fmt.Sprintf("play %s %s", colorToHTP(o), cellToHTP(cell))); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) genmove(b *hex.Board, player hex.Owner) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.setPosition(b); err != nil {
		return "", err
	}
	reply, err := e.sendCommand("genmove " + colorToHTP(player))
	if err != nil {
		return "", err
	}
	return strings.ToLower(reply), nil
}

// ChooseMove asks the engine for a move for player.
func (e *Engine) ChooseMove(b *hex.Board, player hex.Owner) (hex.Coord, error) {
	reply, err := e.genmove(b, player)
	if err != nil {
		return hex.Coord{}, err
	}
	switch reply {
	case replyResign:
		return hex.Coord{}, ErrResigned
	case replySwap:
		return hex.Coord{}, fmt.Errorf("%w: swap offered after the opening", ErrEngine)
	}
	return htpToCell(reply, e.size)
}

// DecideSwap asks the engine to answer the opening move as Player 2.
func (e *Engine) DecideSwap(b *hex.Board) (hex.SwapDecision, error) {
	reply, err := e.genmove(b, hex.Player2)
	if err != nil {
		return hex.SwapDecision{}, err
	}
	switch reply {
	case replySwap:
		return hex.SwapDecision{Swap: true}, nil
	case replyResign:
		return hex.SwapDecision{}, ErrResigned
	}
	c, err := htpToCell(reply, e.size)
	if err != nil {
		return hex.SwapDecision{}, err
	}
	return hex.SwapDecision{Move: c}, nil
}

// Close shuts down the engine. An engine still running after closeTimeout
// is killed.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cmd != nil && e.cmd.Process != nil {
		proc := e.cmd.Process
		kill := time.AfterFunc(closeTimeout, func() {
			e.log.Warn("engine did not exit, killing it")
			_ = proc.Kill()
		})
		defer kill.Stop()
	}

	if e.stdin != nil {
		if _, err := e.sendCommand("quit"); err != nil {
			e.log.Debug("quit failed", "error", err)
		}
		_ = e.stdin.Close()
		e.stdin = nil
	}
	if e.cmd != nil && e.cmd.Process != nil {
		if err := e.cmd.Wait(); err != nil {
			e.log.Warn("engine exited", "error", err)
		}
		e.cmd = nil
	}
}
