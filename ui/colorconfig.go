package ui

import (
	"fmt"
	"log/slog"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"termhex/config"
	"termhex/hex"
)

type paletteEntry struct {
	code int
	name string
}

// colorTarget is one themeable color the screen edits.
type colorTarget struct {
	title   string
	palette []paletteEntry
	field   func(c *config.ConfigColors) *int
}

var boardPalette = []paletteEntry{
	{230, "Light Cream"},
	{229, "Pale Yellow"},
	{222, "Gold"},
	{214, "Orange Gold"},
	{180, "Tan"},
	{179, "Light Brown"},
	{172, "Brown"},
	{137, "Light Wood"},
	{136, "Dark Brown"},
	{252, "Light Gray"},
	{248, "Medium Gray"},
	{244, "Dark Gray"},
	{188, "Light Beige"},
	{223, "Peach"},
}

var stonePalette = []paletteEntry{
	{160, "Red"},
	{196, "Bright Red"},
	{124, "Dark Red"},
	{202, "Orange"},
	{33, "Blue"},
	{27, "Bright Blue"},
	{19, "Dark Blue"},
	{30, "Teal"},
	{28, "Green"},
	{54, "Purple"},
	{232, "Black"},
	{255, "White"},
}

var colorTargets = []colorTarget{
	{"Board", boardPalette, func(c *config.ConfigColors) *int { return &c.BoardColor }},
	{"Player 1", stonePalette, func(c *config.ConfigColors) *int { return &c.Player1Color }},
	{"Player 2", stonePalette, func(c *config.ConfigColors) *int { return &c.Player2Color }},
}

// ColorConfigUI provides a color configuration screen with live preview.
type ColorConfigUI struct {
	flex      *tview.Flex
	colorList *tview.List
	preview   *tview.Box
	cfg       *config.Config
	log       *slog.Logger
	onDone    func()

	// Colors being edited; written to cfg on confirm.
	colors config.ConfigColors
	target int
}

// NewColorConfig creates a new color configuration screen.
func NewColorConfig(cfg *config.Config, logger *slog.Logger, onDone func()) *ColorConfigUI {
	cc := &ColorConfigUI{
		cfg:    cfg,
		log:    logger.With("component", "colors"),
		onDone: onDone,
		colors: cfg.Theme.Colors,
	}

	cc.colorList = tview.NewList()
	cc.colorList.SetBorder(true)
	cc.colorList.ShowSecondaryText(false)
	cc.populateColorList()

	// Moving through the list previews the color
	cc.colorList.SetChangedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		t := colorTargets[cc.target]
		if index >= 0 && index < len(t.palette) {
			*t.field(&cc.colors) = t.palette[index].code
		}
	})

	// Enter applies and saves
	cc.colorList.SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		cc.Apply()
		onDone()
	})

	cc.preview = tview.NewBox()
	cc.preview.SetBorder(true)
	cc.preview.SetTitle(" Board Preview ")
	cc.preview.SetDrawFunc(cc.drawPreview)

	cc.flex = tview.NewFlex().
		AddItem(cc.colorList, 34, 0, true).
		AddItem(cc.preview, 0, 1, false)

	return cc
}

// Apply copies the edited colors into the config and saves it.
func (cc *ColorConfigUI) Apply() {
	cc.colors.BoardColorAlt = cc.colors.BoardColor
	cc.cfg.Theme.Colors = cc.colors
	if err := cc.cfg.Save(); err != nil {
		cc.log.Warn("saving config", "error", err)
	}
}

func (cc *ColorConfigUI) populateColorList() {
	cc.colorList.Clear()

	t := colorTargets[cc.target]
	next := colorTargets[(cc.target+1)%len(colorTargets)]
	cc.colorList.SetTitle(fmt.Sprintf(" %s Color (Tab: %s) ", t.title, next.title))

	current := *t.field(&cc.colors)
	for i, c := range t.palette {
		cc.colorList.AddItem(fmt.Sprintf("[#%06x]████[-] %s (%d)",
			tcell.PaletteColor(c.code).Hex(), c.name, c.code),
			"", rune('a'+i), nil)
	}
	for i, c := range t.palette {
		if c.code == current {
			cc.colorList.SetCurrentItem(i)
			break
		}
	}
}

// previewStones is a short game on a 5x5 board shown in the preview.
var previewStones = map[hex.Coord]hex.Owner{
	{Row: 2, Col: 2}: hex.Player1,
	{Row: 1, Col: 3}: hex.Player2,
	{Row: 3, Col: 1}: hex.Player1,
	{Row: 2, Col: 1}: hex.Player2,
	{Row: 1, Col: 2}: hex.Player1,
}

func (cc *ColorConfigUI) drawPreview(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
	const size = 5
	if width < 20 || height < size+4 {
		return x, y, width, height
	}

	board := tcell.PaletteColor(cc.colors.BoardColor)
	p1 := tcell.PaletteColor(cc.colors.Player1Color)
	p2 := tcell.PaletteColor(cc.colors.Player2Color)
	symbols := cc.cfg.Theme.Symbols

	startX := x + 2
	startY := y + 1
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			ch, fg := firstRune(symbols.EmptyCell), tcell.ColorDefault
			switch previewStones[hex.Coord{Row: r, Col: c}] {
			case hex.Player1:
				ch, fg = firstRune(symbols.Player1Stone), p1
			case hex.Player2:
				ch, fg = firstRune(symbols.Player2Stone), p2
			}
			style := tcell.StyleDefault.Background(board).Foreground(fg)
			screen.SetContent(startX+r+c*2, startY+r, ch, nil, style)
			screen.SetContent(startX+r+c*2+1, startY+r, ' ', nil, style)
		}
	}

	info := fmt.Sprintf("Board: %d  P1: %d  P2: %d", cc.colors.BoardColor, cc.colors.Player1Color, cc.colors.Player2Color)
	if len(info) > width-3 {
		info = info[:width-3]
	}
	drawText(screen, startX, startY+size+1, info, tcell.StyleDefault)

	return x, y, width, height
}

// Flex returns the flex container for this UI.
func (cc *ColorConfigUI) Flex() *tview.Flex {
	return cc.flex
}

// SetInputCapture sets the input capture for the color list.
func (cc *ColorConfigUI) SetInputCapture(capture func(event *tcell.EventKey) *tcell.EventKey) {
	cc.colorList.SetInputCapture(capture)
}

// ToggleMode moves on to the next color being edited.
func (cc *ColorConfigUI) ToggleMode() {
	cc.target = (cc.target + 1) % len(colorTargets)
	cc.populateColorList()
}
