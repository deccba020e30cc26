package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"termhex/config"
	"termhex/engine"
	"termhex/hex"
)

var (
	setupBoardSizes = []int{5, 7, 9, 11, 13, 19}
	setupModes      = []hex.Mode{hex.HumanVsBot, hex.BotVsHuman, hex.HumanVsHuman}
	setupBots       = []string{engine.BotRandom, engine.BotHTP}
)

// GameSetupUI provides a form for configuring a new game.
type GameSetupUI struct {
	form *tview.Form
	flex *tview.Flex
	game engine.GameConfig
}

// NewGameSetup creates a new game setup form. Its initial values come from cfg.
func NewGameSetup(cfg *config.Config, onStart func(engine.GameConfig), onCancel, onHistory, onColors func()) *GameSetupUI {
	setup := &GameSetupUI{game: cfg.EngineConfig()}

	sizeLabels := []string{"5x5", "7x7", "9x9", "11x11", "13x13", "19x19"}
	modeLabels := []string{"You play first (red)", "Bot plays first", "Two players"}
	botLabels := []string{"Random", "HTP engine"}

	form := tview.NewForm()

	form.AddDropDown("Board Size", sizeLabels, indexOf(setupBoardSizes, setup.game.BoardSize, 3), func(option string, index int) {
		setup.game.BoardSize = setupBoardSizes[index]
	})

	form.AddDropDown("Mode", modeLabels, indexOf(setupModes, setup.game.Mode, 0), func(option string, index int) {
		setup.game.Mode = setupModes[index]
	})

	form.AddDropDown("Bot", botLabels, indexOf(setupBots, setup.game.Bot, 0), func(option string, index int) {
		setup.game.Bot = setupBots[index]
	})

	form.AddButton("Start Game", func() {
		onStart(setup.game)
	})

	form.AddButton("History", func() {
		if onHistory != nil {
			onHistory()
		}
	})

	form.AddButton("Board Color", func() {
		if onColors != nil {
			onColors()
		}
	})

	form.AddButton("Quit", func() {
		onCancel()
	})

	form.SetBorder(true)
	form.SetTitle(" New Hex Game ")
	form.SetTitleAlign(tview.AlignCenter)
	form.SetButtonBackgroundColor(tcell.ColorDarkCyan)
	form.SetButtonTextColor(tcell.ColorWhite)

	helpText := tview.NewTextView().
		SetText("Tab/Shift+Tab: navigate fields  |  Arrow keys: change dropdown  |  Enter: confirm").
		SetTextAlign(tview.AlignCenter)
	helpText.SetTextColor(MenuColors.Hint)

	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(form, 0, 1, true).
		AddItem(helpText, 1, 0, false)

	setup.form = form
	setup.flex = flex
	return setup
}

// Config returns the game configuration currently selected in the form.
func (s *GameSetupUI) Config() engine.GameConfig {
	return s.game
}

// Form returns the flex container with form and help text.
func (s *GameSetupUI) Form() *tview.Flex {
	return s.flex
}

// SetInputCapture sets the input capture function for the form.
func (s *GameSetupUI) SetInputCapture(capture func(event *tcell.EventKey) *tcell.EventKey) {
	s.form.SetInputCapture(capture)
}

func indexOf[T comparable](options []T, v T, fallback int) int {
	for i, o := range options {
		if o == v {
			return i
		}
	}
	return fallback
}
