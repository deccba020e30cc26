// Package engine builds the bot opponents a game can be played against.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"termhex/engine/htp"
	"termhex/hex"
)

// Bot kinds.
const (
	BotRandom = "random"
	BotHTP    = "htp"
)

var ErrInvalidGameConfig = errors.New("invalid game config")

// GameConfig holds configuration for starting a new game.
type GameConfig struct {
	BoardSize  int      // 2-26, 11 is standard
	Mode       hex.Mode // which seat the bot plays, if any
	Bot        string   // "random" or "htp"
	EnginePath string   // HTP engine binary, e.g. mohex
	EngineArgs []string
	Seed       int64 // random bot seed, 0 picks one
}

// DefaultConfig returns a reasonable default configuration.
func DefaultConfig() GameConfig {
	return GameConfig{
		BoardSize: 11,
		Mode:      hex.HumanVsBot,
		Bot:       BotRandom,
	}
}

// Validate checks the config before any process is started.
func (c GameConfig) Validate() error {
	if c.BoardSize < 2 || c.BoardSize > hex.MaxBoardSize {
		return fmt.Errorf("%w: board size %d not in 2..%d", ErrInvalidGameConfig, c.BoardSize, hex.MaxBoardSize)
	}
	if !c.Mode.HasBot() {
		return nil
	}
	switch c.Bot {
	case BotRandom:
	case BotHTP:
		if c.EnginePath == "" {
			return fmt.Errorf("%w: htp bot needs an engine path", ErrInvalidGameConfig)
		}
	default:
		return fmt.Errorf("%w: unknown bot %q", ErrInvalidGameConfig, c.Bot)
	}
	return nil
}

// NewBot creates the bot for cfg. It returns a nil bot for human-only games.
// The returned close func must be called once the game is over.
func NewBot(cfg GameConfig, logger *slog.Logger) (hex.Bot, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, func() {}, err
	}
	if !cfg.Mode.HasBot() {
		return nil, func() {}, nil
	}
	if cfg.Bot == BotHTP {
		e, err := htp.Start(cfg.EnginePath, cfg.EngineArgs, cfg.BoardSize, logger)
		if err != nil {
			return nil, func() {}, err
		}
		return e, e.Close, nil
	}
	return NewRandomBot(cfg.Seed), func() {}, nil
}

// Options returns the session options that attach bot to a game.
func Options(bot hex.Bot, logger *slog.Logger) []hex.Option {
	opts := []hex.Option{hex.WithLogger(logger)}
	if bot != nil {
		opts = append(opts, hex.WithBot(bot))
	}
	return opts
}
