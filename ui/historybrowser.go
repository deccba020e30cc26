package ui

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"termhex/hex"
	"termhex/sgf"
)

var historyColumns = []string{"Date", "Board", "Mode", "Moves", "Winner"}

// Stone glyphs of the preview, by owner.
var previewGlyphs = map[hex.Owner]struct {
	r     rune
	style tcell.Style
}{
	hex.Empty:   {'·', tcell.StyleDefault.Foreground(tcell.PaletteColor(240))},
	hex.Player1: {'●', tcell.StyleDefault.Foreground(tcell.PaletteColor(160)).Bold(true)},
	hex.Player2: {'●', tcell.StyleDefault.Foreground(tcell.PaletteColor(33)).Bold(true)},
}

// HistoryBrowserUI lists the saved records of a directory next to the
// final position of the selected one.
type HistoryBrowserUI struct {
	root    *tview.Grid
	table   *tview.Table
	preview *tview.Box
	hint    *tview.TextView

	dir    string
	log    *slog.Logger
	games  []sgf.GameInfo
	finals map[string][][]hex.Owner // by file path, nil when unreadable
	armed  string                   // file waiting for a second d
	onDone func()
}

func NewHistoryBrowser(dir string, logger *slog.Logger, onDone func()) *HistoryBrowserUI {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	hb := &HistoryBrowserUI{
		dir:    dir,
		log:    logger.With("component", "history"),
		onDone: onDone,
	}

	hb.table = tview.NewTable().
		SetSelectable(true, false).
		SetFixed(1, 0).
		SetSelectedStyle(tcell.StyleDefault.Foreground(MenuColors.ButtonText).Background(MenuColors.ButtonFocus))
	hb.table.SetBorder(true).SetTitle(" Saved Games ")
	hb.table.SetSelectionChangedFunc(func(int, int) {
		hb.armed = ""
		hb.showHint()
	})
	hb.table.SetInputCapture(hb.handleInput)

	hb.preview = tview.NewBox().SetDrawFunc(hb.drawPreview)
	hb.preview.SetBorder(true).SetTitle(" Final Position ")

	hb.hint = tview.NewTextView().SetDynamicColors(true)

	hb.root = tview.NewGrid().
		SetRows(0, 1).
		SetColumns(48, 0).
		AddItem(hb.table, 0, 0, 1, 1, 0, 0, true).
		AddItem(hb.preview, 0, 1, 1, 1, 0, 0, false).
		AddItem(hb.hint, 1, 0, 1, 2, 0, 0, false)

	hb.Refresh()
	return hb
}

func (hb *HistoryBrowserUI) Root() tview.Primitive {
	return hb.root
}

// Refresh rereads the directory and selects the newest game.
func (hb *HistoryBrowserUI) Refresh() {
	games, err := sgf.ListGames(hb.dir)
	if err != nil {
		hb.log.Warn("listing games", "dir", hb.dir, "error", err)
	}
	hb.games = games
	hb.finals = make(map[string][][]hex.Owner)
	hb.armed = ""

	hb.table.Clear()
	for col, title := range historyColumns {
		hb.table.SetCell(0, col, tview.NewTableCell(title).
			SetTextColor(MenuColors.Hint).
			SetSelectable(false))
	}
	if len(games) == 0 {
		hb.table.SetCell(1, 0, tview.NewTableCell("no saved games").
			SetTextColor(MenuColors.Hint).
			SetSelectable(false))
	}
	for i, g := range games {
		for col, text := range historyRow(g) {
			hb.table.SetCell(i+1, col, tview.NewTableCell(text).
				SetTextColor(MenuColors.Label).
				SetExpansion(1))
		}
	}
	hb.table.ScrollToBeginning()
	hb.table.Select(1, 0)
	hb.showHint()
}

func historyRow(g sgf.GameInfo) []string {
	winner := "-"
	if w := g.Winner(); w != hex.Empty {
		winner = w.String()
	}
	return []string{
		g.Date,
		fmt.Sprintf("%dx%d", g.BoardSize, g.BoardSize),
		g.Mode().String(),
		fmt.Sprint(g.MoveCount),
		winner,
	}
}

// current returns the game under the cursor.
func (hb *HistoryBrowserUI) current() (sgf.GameInfo, bool) {
	row, _ := hb.table.GetSelection()
	if row < 1 || row > len(hb.games) {
		return sgf.GameInfo{}, false
	}
	return hb.games[row-1], true
}

func (hb *HistoryBrowserUI) showHint() {
	if hb.armed != "" {
		hb.hint.SetText(fmt.Sprintf("  [red]d[-] again deletes %s, any row change keeps it", filepath.Base(hb.armed)))
		return
	}
	hb.hint.SetText("  [dimgray]↑↓[-] browse  [dimgray]d[-] delete  [dimgray]r[-] reload  [dimgray]q[-] back")
}

func (hb *HistoryBrowserUI) handleInput(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() == tcell.KeyEscape {
		hb.back()
		return nil
	}
	if event.Key() != tcell.KeyRune {
		return event
	}
	switch event.Rune() {
	case 'q':
		hb.back()
	case 'd':
		hb.deleteSelected()
	case 'r':
		hb.Refresh()
	default:
		return event
	}
	return nil
}

func (hb *HistoryBrowserUI) back() {
	hb.armed = ""
	hb.showHint()
	if hb.onDone != nil {
		hb.onDone()
	}
}

// deleteSelected removes the selected record on the second press.
func (hb *HistoryBrowserUI) deleteSelected() {
	game, ok := hb.current()
	if !ok {
		return
	}
	if hb.armed != game.FilePath {
		hb.armed = game.FilePath
		hb.showHint()
		return
	}

	if err := os.Remove(game.FilePath); err != nil {
		hb.log.Warn("deleting game", "file", game.FilePath, "error", err)
	} else {
		hb.log.Info("game deleted", "file", game.FilePath)
	}
	row, _ := hb.table.GetSelection()
	hb.Refresh()
	if row = min(row, len(hb.games)); row >= 1 {
		hb.table.Select(row, 0)
	}
}

// finalPosition replays a record once and caches the resulting cells.
func (hb *HistoryBrowserUI) finalPosition(game sgf.GameInfo) [][]hex.Owner {
	if cells, ok := hb.finals[game.FilePath]; ok {
		return cells
	}
	var cells [][]hex.Owner
	if _, s, err := sgf.Load(game.FilePath); err != nil {
		hb.log.Warn("replaying game", "file", game.FilePath, "error", err)
	} else {
		cells = s.Board().Cells()
	}
	hb.finals[game.FilePath] = cells
	return cells
}

func (hb *HistoryBrowserUI) drawPreview(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
	game, ok := hb.current()
	if !ok {
		return x, y, width, height
	}
	cells := hb.finalPosition(game)
	size := len(cells)
	if size == 0 || width < size*3+4 || height < size+7 {
		return x, y, width, height
	}

	left, top := x+2, y+1
	for r, row := range cells {
		for c, owner := range row {
			g := previewGlyphs[owner]
			screen.SetContent(left+r+c*2, top+r, g.r, nil, g.style)
		}
	}

	result := "Unfinished"
	if w := game.Winner(); w != hex.Empty {
		result = fmt.Sprintf("%s wins", w)
	}
	dim := tcell.StyleDefault.Foreground(MenuColors.Hint)
	lines := []struct {
		text  string
		style tcell.Style
	}{
		{fmt.Sprintf("%dx%d, %d moves", game.BoardSize, game.BoardSize, game.MoveCount), tcell.StyleDefault.Foreground(MenuColors.Label)},
		{"1: " + game.PlayerBlack, dim},
		{"2: " + game.PlayerWhite, dim},
		{"Result: " + result, tcell.StyleDefault.Foreground(MenuColors.ButtonFocus)},
	}
	for i, l := range lines {
		drawText(screen, left, top+size+1+i, l.text, l.style)
	}
	return x, y, width, height
}

func drawText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	for i, ch := range []rune(text) {
		screen.SetContent(x+i, y, ch, nil, style)
	}
}
