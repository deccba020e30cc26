package ui

import "github.com/gdamore/tcell/v2"

// MenuColors is the palette for the menu screens.
var MenuColors = struct {
	Label       tcell.Color
	Hint        tcell.Color
	ButtonFocus tcell.Color
	ButtonText  tcell.Color
}{
	Label:       tcell.PaletteColor(250), // Light gray
	Hint:        tcell.PaletteColor(245), // Dim gray
	ButtonFocus: tcell.PaletteColor(109), // Blue
	ButtonText:  tcell.PaletteColor(255), // White
}
