// Package ui specifies custom controls for tview to assist in playing Hex in the terminal.
package ui

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"termhex/config"
	"termhex/engine"
	"termhex/hex"
	"termhex/sgf"
)

// Screen layout of the board: a margin for row labels on the left and
// column labels on top. Row r is shifted right by r columns and every
// cell is two characters wide, which draws the rhombus.
const (
	boardMarginLeft = 3
	boardMarginTop  = 1
)

// boardView is what the draw functions read. It is filled in by the
// session's observer callbacks and guarded by HexBoardUI.viewMu.
type boardView struct {
	size     int
	cells    [][]hex.Owner
	last     hex.Coord
	hasLast  bool
	player   hex.Owner
	running  bool
	winner   hex.Owner
	mode     hex.Mode
	canUndo  bool
	canSwap  bool
	botTurn  bool
	moves    []hex.Move
	thinking bool
	err      error
}

type HexBoardUI struct {
	Box       *tview.Box
	hint      *tview.TextView
	cfg       *config.Config
	app       *tview.Application
	log       *slog.Logger
	styles    []tcell.Color
	infoPanel *GameInfoPanel

	// mu guards the session and record; it is held for the whole of an
	// operation, bot reply included, on a worker goroutine.
	mu       sync.Mutex
	session  *hex.Session
	record   *sgf.GameRecord
	closeBot func()
	busy     atomic.Bool

	viewMu sync.Mutex
	view   boardView

	selRow, selCol int
	originX        int
	originY        int

	// redraw asks the application to repaint. Replaced in tests.
	redraw func(func())
}

func NewHexBoard(app *tview.Application, c *config.Config, hint *tview.TextView, logger *slog.Logger) *HexBoardUI {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	hexBoard := &HexBoardUI{
		Box:      tview.NewBox(),
		hint:     hint,
		app:      app,
		log:      logger.With("component", "ui"),
		selRow:   -1,
		selCol:   -1,
		closeBot: func() {},
	}
	hexBoard.redraw = func(f func()) {
		// Spawn goroutine to avoid deadlock when called from main thread
		go app.QueueUpdateDraw(f)
	}
	hexBoard.SetConfig(c)
	hexBoard.Box.SetDrawFunc(hexBoard.draw)
	hexBoard.Box.SetMouseCapture(func(action tview.MouseAction, event *tcell.EventMouse) (tview.MouseAction, *tcell.EventMouse) {
		if action != tview.MouseLeftClick {
			return action, event
		}
		mx, my := event.Position()
		if c, ok := hexBoard.CellAt(mx, my); ok {
			hexBoard.selRow, hexBoard.selCol = c.Row, c.Col
			hexBoard.PlayMove(c)
			return action, nil
		}
		return action, event
	})
	return hexBoard
}

// StartGame starts a new game with the given configuration. Records go to historyDir.
func (g *HexBoardUI) StartGame(gameCfg engine.GameConfig, historyDir string) error {
	if !g.busy.CompareAndSwap(false, true) {
		return errors.New("a move is still in progress")
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.startLocked(gameCfg, historyDir); err != nil {
		g.busy.Store(false)
		return err
	}
	if gameCfg.Mode == hex.BotVsHuman {
		// The worker inherits the busy flag.
		g.work(func(s *hex.Session) error { return s.Start() })
		return nil
	}
	g.busy.Store(false)
	return nil
}

func (g *HexBoardUI) startLocked(gameCfg engine.GameConfig, historyDir string) error {
	g.closeLocked()

	bot, closeBot, err := engine.NewBot(gameCfg, g.log)
	if err != nil {
		return err
	}
	opts := append(engine.Options(bot, g.log), hex.WithObserver(g))
	s, err := hex.NewSession(gameCfg.BoardSize, gameCfg.Mode, opts...)
	if err != nil {
		closeBot()
		return err
	}
	g.session = s
	g.closeBot = closeBot

	g.record, err = sgf.NewGameRecord(historyDir, gameCfg.BoardSize, gameCfg.Mode)
	if err != nil {
		// Play on without a record.
		g.log.Warn("game record unavailable", "error", err)
		g.record = nil
	}

	g.ResetSelection()
	g.viewMu.Lock()
	g.view = boardView{size: gameCfg.BoardSize, cells: s.Board().Cells(), mode: gameCfg.Mode}
	g.viewMu.Unlock()
	g.publishLocked(nil)
	g.log.Info("game started", "size", gameCfg.BoardSize, "mode", gameCfg.Mode.String(), "bot", gameCfg.Bot)
	return nil
}

// run executes op against the session on a worker goroutine. Input that
// arrives while an operation is running is dropped.
func (g *HexBoardUI) run(op func(s *hex.Session) error) {
	if !g.busy.CompareAndSwap(false, true) {
		return
	}
	g.work(op)
}

// work runs op on a worker goroutine. The caller holds the busy flag and
// the worker clears it.
func (g *HexBoardUI) work(op func(s *hex.Session) error) {
	g.setThinking(true)
	go func() {
		defer g.busy.Store(false)
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.session == nil {
			g.setThinking(false)
			return
		}
		err := op(g.session)
		if err != nil {
			g.log.Warn("move rejected", "error", err)
		}
		g.publishLocked(err)
	}()
}

// PlayMove places the current player's stone at c and lets the bot answer.
func (g *HexBoardUI) PlayMove(c hex.Coord) {
	g.viewMu.Lock()
	v := &g.view
	ok := v.running && !v.botTurn && v.size > 0
	g.viewMu.Unlock()
	if !ok {
		return
	}
	g.run(func(s *hex.Session) error {
		return s.ApplyMove(c, s.Mode().HasBot())
	})
}

// Undo takes back the last move, or the last move pair against a bot.
func (g *HexBoardUI) Undo() {
	g.run(func(s *hex.Session) error { return s.Undo() })
}

// Swap takes over the opening move.
func (g *HexBoardUI) Swap() {
	g.run(func(s *hex.Session) error { return s.Swap() })
}

// PlaySelected plays at the cursor.
func (g *HexBoardUI) PlaySelected() {
	if c, ok := g.SelectedCell(); ok {
		g.PlayMove(c)
	}
}

func (g *HexBoardUI) SelectedCell() (hex.Coord, bool) {
	if g.selRow == -1 && g.selCol == -1 {
		return hex.Coord{}, false
	}
	return hex.Coord{Row: g.selRow, Col: g.selCol}, true
}

func (g *HexBoardUI) MoveSelection(dRow, dCol int) {
	g.viewMu.Lock()
	size, last, hasLast, running := g.view.size, g.view.last, g.view.hasLast, g.view.running
	g.viewMu.Unlock()

	if !running {
		g.ResetSelection()
		return
	}
	if _, ok := g.SelectedCell(); !ok {
		if hasLast {
			g.selRow, g.selCol = last.Row, last.Col
		} else {
			// No previous move made, use board center
			g.selRow, g.selCol = size/2, size/2
		}
		return
	}
	if g.selRow+dRow < 0 || g.selRow+dRow >= size {
		return
	}
	if g.selCol+dCol < 0 || g.selCol+dCol >= size {
		return
	}
	g.selRow += dRow
	g.selCol += dCol
}

func (g *HexBoardUI) ResetSelection() {
	g.selRow = -1
	g.selCol = -1
}

// TryClose closes the current game unless an operation is running, and
// reports whether it did.
func (g *HexBoardUI) TryClose() bool {
	if g.busy.Load() || !g.mu.TryLock() {
		return false
	}
	defer g.mu.Unlock()
	g.closeLocked()
	return true
}

// Close stops the bot and closes the record of the current game.
func (g *HexBoardUI) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closeLocked()
}

func (g *HexBoardUI) closeLocked() {
	if g.record != nil {
		if err := g.record.Close(); err != nil {
			g.log.Warn("closing game record", "error", err)
		}
		g.record = nil
	}
	g.closeBot()
	g.closeBot = func() {}
	g.session = nil
}

func (g *HexBoardUI) SetConfig(c *config.Config) {
	g.styles = []tcell.Color{
		tcell.PaletteColor(c.Theme.Colors.BoardColor),        // 0
		tcell.PaletteColor(c.Theme.Colors.Player1Color),      // 1
		tcell.PaletteColor(c.Theme.Colors.Player2Color),      // 2
		tcell.PaletteColor(c.Theme.Colors.BoardColorAlt),     // 3
		tcell.PaletteColor(c.Theme.Colors.CursorColorFG),     // 4
		tcell.PaletteColor(c.Theme.Colors.LastPlayedColorBG), // 5
		tcell.PaletteColor(c.Theme.Colors.CursorColorBG),     // 6
	}
	g.cfg = c
}

// CellChanged implements hex.Observer.
func (g *HexBoardUI) CellChanged(c hex.Coord, o hex.Owner) {
	g.viewMu.Lock()
	if c.Row < len(g.view.cells) && c.Col < len(g.view.cells[c.Row]) {
		g.view.cells[c.Row][c.Col] = o
	}
	g.viewMu.Unlock()
	g.redraw(func() {})
}

// GameFinished implements hex.Observer.
func (g *HexBoardUI) GameFinished(winner hex.Owner) {
	g.log.Info("game finished", "winner", winner.String())
}

// ControlsChanged implements hex.Observer. It runs inside a session
// operation, so the session may be read here.
func (g *HexBoardUI) ControlsChanged() {
	g.syncRecordLocked()
}

func (g *HexBoardUI) syncRecordLocked() {
	if g.record == nil || g.session == nil {
		return
	}
	if err := g.record.Sync(g.session.Record()); err != nil {
		g.log.Warn("writing game record", "error", err)
	}
	if err := g.record.SetResult(g.session.Winner()); err != nil {
		g.log.Warn("writing game result", "error", err)
	}
}

// publishLocked copies the session state into the view and schedules a
// redraw. Redraws may run out of order, so they read the latest view.
func (g *HexBoardUI) publishLocked(err error) {
	s := g.session
	if s == nil {
		return
	}
	last, hasLast := s.LastMove()

	g.viewMu.Lock()
	g.view.cells = s.Board().Cells()
	g.view.last, g.view.hasLast = last, hasLast
	g.view.player = s.CurrentPlayer()
	g.view.running = s.Running()
	g.view.winner = s.Winner()
	g.view.canUndo = s.UndoEnabled()
	g.view.canSwap = s.SwapEnabled()
	g.view.botTurn = s.IsBotTurn()
	g.view.moves = s.Record()
	g.view.thinking = false
	g.view.err = err
	g.viewMu.Unlock()

	g.redraw(func() {
		v := g.snapshot()
		if !v.running {
			g.ResetSelection()
		}
		g.refreshHint(v)
	})
}

func (g *HexBoardUI) setThinking(on bool) {
	g.viewMu.Lock()
	g.view.thinking = on
	g.viewMu.Unlock()
	g.redraw(func() { g.refreshHint(g.snapshot()) })
}

// snapshot returns a copy of the view whose cells may be read without viewMu.
func (g *HexBoardUI) snapshot() boardView {
	g.viewMu.Lock()
	defer g.viewMu.Unlock()
	v := g.view
	v.cells = make([][]hex.Owner, len(g.view.cells))
	for i, row := range g.view.cells {
		v.cells[i] = append([]hex.Owner(nil), row...)
	}
	return v
}

func (g *HexBoardUI) refreshHint(v boardView) {
	if g.infoPanel != nil {
		g.infoPanel.SetView(v)
	}
	g.hint.SetText(hintText(v))
}

func hintText(v boardView) string {
	if v.size == 0 {
		return ""
	}
	var statusLine, turnLine, controlsLine string

	if !v.running {
		statusLine = "───────── Game Complete ─────────\n"
		turnLine = fmt.Sprintf("  %s wins", v.winner)
		controlsLine = "   u undo · q return to menu"
		return statusLine + turnLine + controlsLine
	}

	if v.err != nil {
		statusLine = fmt.Sprintf("  ! %s\n", v.err)
	}
	if v.thinking || v.botTurn {
		turnLine = "  ◌ Thinking..."
	} else {
		turnLine = fmt.Sprintf("  ⬢ %s to move", v.player)
	}
	controlsLine = "   hjkl/↑↓←→ move  ⏎ play"
	if v.canUndo {
		controlsLine += "  u undo"
	}
	if v.canSwap {
		controlsLine += "  s swap"
	}
	controlsLine += "  q quit"
	return statusLine + turnLine + controlsLine
}

// boardExtent returns the drawn width and height of a size x size board.
func boardExtent(size int) (int, int) {
	return boardMarginLeft + (size - 1) + size*2 + 3, boardMarginTop + size + 1
}

// cellOrigin returns the screen position of the first character of a cell.
func cellOrigin(x, y int, c hex.Coord) (int, int) {
	return x + boardMarginLeft + c.Row + c.Col*2, y + boardMarginTop + c.Row
}

// CellAt maps a screen position to the cell drawn there.
func (g *HexBoardUI) CellAt(sx, sy int) (hex.Coord, bool) {
	return cellAt(g.originX, g.originY, g.snapshot().size, sx, sy)
}

func cellAt(x, y, size, sx, sy int) (hex.Coord, bool) {
	row := sy - y - boardMarginTop
	if row < 0 || row >= size {
		return hex.Coord{}, false
	}
	dx := sx - x - boardMarginLeft - row
	if dx < 0 || dx >= size*2 {
		return hex.Coord{}, false
	}
	return hex.Coord{Row: row, Col: dx / 2}, true
}

func (g *HexBoardUI) draw(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
	v := g.snapshot()
	if v.size == 0 {
		return x, y, 1, 1
	}
	g.originX, g.originY = x, y
	theme := g.cfg.Theme

	for r := 0; r < v.size; r++ {
		for c := 0; c < v.size; c++ {
			cell := hex.Coord{Row: r, Col: c}
			owner := v.cells[r][c]

			bg := g.styles[0]
			if (r+c)%2 == 1 {
				bg = g.styles[3]
			}
			fg := g.styles[4]
			drawRune := firstRune(theme.Symbols.EmptyCell)
			switch owner {
			case hex.Player1:
				drawRune, fg = firstRune(theme.Symbols.Player1Stone), g.styles[1]
			case hex.Player2:
				drawRune, fg = firstRune(theme.Symbols.Player2Stone), g.styles[2]
			}

			if r == g.selRow && c == g.selCol {
				if theme.DrawCursorBackground {
					bg = g.styles[6]
				} else if owner == hex.Empty {
					drawRune = firstRune(theme.Symbols.Cursor)
				}
			} else if v.hasLast && cell == v.last && theme.DrawLastPlayedBackground {
				bg = g.styles[5]
			}

			sx, sy := cellOrigin(x, y, cell)
			style := tcell.StyleDefault.Background(bg).Foreground(fg)
			screen.SetContent(sx, sy, drawRune, nil, style)
			screen.SetContent(sx+1, sy, ' ', nil, style)
		}
	}
	g.drawCoordinates(screen, x, y, v)

	w, h := boardExtent(v.size)
	return x, y, w, h
}

// drawCoordinates labels columns with letters along Player 1's edges and
// rows with numbers along Player 2's edges.
func (g *HexBoardUI) drawCoordinates(s tcell.Screen, x, y int, v boardView) {
	p1 := tcell.StyleDefault
	p2 := tcell.StyleDefault
	if g.cfg.Theme.DrawEdges {
		p1 = p1.Foreground(g.styles[1]).Bold(true)
		p2 = p2.Foreground(g.styles[2]).Bold(true)
	}
	highlight := func(base tcell.Style, on bool) tcell.Style {
		if on {
			return base.Background(g.styles[6])
		}
		return base
	}

	for c := 0; c < v.size; c++ {
		style := highlight(p1, c == g.selCol)
		// Top edge above row 0, bottom edge below row N-1.
		tx, _ := cellOrigin(x, y, hex.Coord{Row: 0, Col: c})
		s.SetContent(tx, y, rune('a'+c), nil, style)
		bx, by := cellOrigin(x, y, hex.Coord{Row: v.size - 1, Col: c})
		s.SetContent(bx+1, by+1, rune('a'+c), nil, style)
	}

	for r := 0; r < v.size; r++ {
		style := highlight(p2, r == g.selRow)
		label := fmt.Sprintf("%2d", r+1)
		lx, ly := cellOrigin(x, y, hex.Coord{Row: r, Col: 0})
		drawText(s, lx-3, ly, label, style)
		rx, _ := cellOrigin(x, y, hex.Coord{Row: r, Col: v.size - 1})
		drawText(s, rx+2, ly, fmt.Sprintf("%-2d", r+1), style)
	}
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return ' '
}
