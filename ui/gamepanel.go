package ui

import (
	"fmt"

	"github.com/rivo/tview"

	"termhex/hex"
	"termhex/sgf"
)

// maxVisibleMoves is how many moves of the history the panel lists.
const maxVisibleMoves = 12

// GameInfoPanel displays game information and move history alongside the board.
type GameInfoPanel struct {
	box  *tview.TextView
	view boardView
}

// NewGameInfoPanel creates a new game info panel.
func NewGameInfoPanel() *GameInfoPanel {
	panel := &GameInfoPanel{
		box: tview.NewTextView(),
	}

	panel.box.SetDynamicColors(true)
	panel.box.SetBorder(false)
	panel.box.SetTextAlign(tview.AlignLeft)

	return panel
}

// Box returns the underlying tview component.
func (p *GameInfoPanel) Box() *tview.TextView {
	return p.box
}

// SetView updates the panel with the current game state.
func (p *GameInfoPanel) SetView(v boardView) {
	p.view = v
	p.box.SetText(panelText(v))
}

func panelText(v boardView) string {
	if v.size == 0 {
		return ""
	}

	var text string

	text += "[white::b]Game Info[-:-:-]\n"
	text += "[dimgray]──────────────────────[-:-:-]\n"
	text += fmt.Sprintf("[white]Mode:[-:-:-] %s\n", modeLabel(v.mode))
	text += fmt.Sprintf("[white]Board:[-:-:-] %dx%d\n", v.size, v.size)
	text += fmt.Sprintf("[white]Move:[-:-:-] %d\n", len(v.moves))

	switch {
	case !v.running:
		text += fmt.Sprintf("[white]Result:[-:-:-] %s wins\n", v.winner)
	default:
		text += fmt.Sprintf("[white]Turn:[-:-:-] %s\n", v.player)
	}

	var flags string
	if v.canUndo {
		flags += "undo "
	}
	if v.canSwap {
		flags += "swap"
	}
	if flags != "" {
		text += fmt.Sprintf("[dimgray]%s[-]\n", flags)
	}

	if len(v.moves) == 0 {
		return text
	}

	text += "\n[white::b]Moves[-:-:-]\n"
	text += "[dimgray]──────────────────────[-:-:-]\n"

	start := 0
	if len(v.moves) > maxVisibleMoves {
		start = len(v.moves) - maxVisibleMoves
	}

	for i := start; i < len(v.moves); i++ {
		m := v.moves[i]

		// Players alternate by index; the swap takes Player 2's turn.
		colorStr := "[red]1[-]"
		if i%2 == 1 {
			colorStr = "[blue]2[-]"
		}

		coord := "swap"
		if !m.Swap {
			coord = sgf.CellName(m.Coord)
		}

		marker := " "
		if i == len(v.moves)-1 {
			marker = "[white]>[-]"
		}

		text += fmt.Sprintf("%s[dimgray]%3d.[-] %s %s\n", marker, i+1, colorStr, coord)
	}

	if start > 0 {
		text += fmt.Sprintf("[dimgray]  ··· %d earlier[-]\n", start)
	}
	return text
}

func modeLabel(m hex.Mode) string {
	switch m {
	case hex.HumanVsHuman:
		return "Human vs Human"
	case hex.HumanVsBot:
		return "Human vs Bot"
	case hex.BotVsHuman:
		return "Bot vs Human"
	}
	return m.String()
}

// CreateGameLayout creates the main game layout with board and side panel.
func CreateGameLayout(board *HexBoardUI, hint *tview.TextView) *tview.Flex {
	infoPanel := NewGameInfoPanel()
	board.infoPanel = infoPanel
	infoPanel.SetView(board.snapshot())

	// Create horizontal flex: board | info panel
	boardRow := tview.NewFlex().SetDirection(tview.FlexColumn)
	boardRow.AddItem(board.Box, 0, 1, true)         // Board (flexible, takes remaining space)
	boardRow.AddItem(infoPanel.Box(), 26, 0, false) // Info panel (fixed width)

	// Main vertical flex: board area on top, compact status bar at bottom
	mainFlex := tview.NewFlex().SetDirection(tview.FlexRow)
	mainFlex.AddItem(boardRow, 0, 1, true)
	mainFlex.AddItem(hint, 2, 0, false)

	return mainFlex
}

// CreateCenteredForm creates a centered form container for the setup screen.
func CreateCenteredForm(form *tview.Flex, maxWidth int) *tview.Flex {
	centered := tview.NewFlex().SetDirection(tview.FlexColumn)
	centered.AddItem(nil, 0, 1, false)
	centered.AddItem(form, maxWidth, 0, true)
	centered.AddItem(nil, 0, 1, false)

	return centered
}
