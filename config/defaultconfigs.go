package config

// DefaultTheme draws the board as a slanted grid of hexagon glyphs.
var DefaultTheme = Theme{
	DrawCursorBackground:     true,
	DrawLastPlayedBackground: true,
	DrawEdges:                true,
	Colors: ConfigColors{
		BoardColor:        180,
		BoardColorAlt:     137,
		Player1Color:      160,
		Player2Color:      33,
		CursorColorFG:     2,
		CursorColorBG:     4,
		LastPlayedColorBG: 2,
	},
	Symbols: ConfigSymbols{
		Player1Stone: "⬢",
		Player2Stone: "⬢",
		EmptyCell:    "⬡",
		Cursor:       "⬡",
	},
}

// DefaultConfig returns a fresh copy of the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Theme: DefaultTheme,
		Game: GameConfig{
			BoardSize: 11,
			Mode:      "hb",
			Bot:       "random",
		},
		Server: Server{Addr: ":8080"},
		Redis: Redis{
			Host: "localhost",
			Port: "6379",
		},
		Log: Log{Level: "info"},
	}
}
