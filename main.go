// termhex is a terminal application to play Hex against a bot or a friend,
// and an HTTP API serving the same games.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adrg/xdg"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"termhex/config"
	"termhex/engine"
	"termhex/hex"
	"termhex/server"
	"termhex/store"
	"termhex/ui"
)

// Version is set at build time via ldflags
var Version = "dev"

// Command-line flags
var (
	flagBoardSize  = flag.Int("boardsize", 0, "Board size (2-26)")
	flagMode       = flag.String("mode", "", "Game mode: hh, hb or bh")
	flagBot        = flag.String("bot", "", "Bot: random or htp")
	flagQuickStart = flag.Bool("play", false, "Start game immediately with defaults")
	flagServe      = flag.Bool("serve", false, "Serve the HTTP API instead of the terminal UI")
	flagConfig     = flag.String("config", "", "Config file (default: XDG config dir)")
	flagVersion    = flag.Bool("version", false, "Print version and exit")
)

const snapshotTTL = 7 * 24 * time.Hour

var app *tview.Application
var rootPage *tview.Pages
var gameBoard *ui.HexBoardUI
var gameFrame *tview.Flex
var gameHint *tview.TextView
var cfg *config.Config

func main() {
	flag.Parse()

	if *flagVersion {
		fmt.Printf("termhex %s\n", Version)
		return
	}

	var err error
	if *flagConfig != "" {
		cfg, err = config.Load(*flagConfig)
	} else {
		cfg, err = config.InitConfig()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *flagServe {
		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel()}))
		if err := serve(logger); err != nil {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
		return
	}

	logger, closeLog := fileLogger()
	defer closeLog()
	if err := runUI(logger); err != nil {
		logger.Error("ui stopped", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// fileLogger logs to the configured file, or the XDG cache dir. The
// terminal belongs to the UI.
func fileLogger() (*slog.Logger, func()) {
	path := cfg.Log.File
	if path == "" {
		p, err := xdg.CacheFile("termhex/termhex.log")
		if err != nil {
			return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}
		}
		path = p
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: cfg.LogLevel()}))
	return logger, func() { f.Close() }
}

func serve(logger *slog.Logger) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	opts := []server.ServiceOption{server.WithLogger(logger)}
	if cfg.Redis.Enabled {
		redisStore, err := store.NewRedis(ctx, cfg.Redis.GetRedisAddr(), snapshotTTL)
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}
		defer func() {
			if err := redisStore.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()
		opts = append(opts, server.WithStore(redisStore))
	}

	svc := server.NewService(func() hex.Bot { return engine.NewRandomBot(0) }, opts...)
	return server.Run(ctx, cfg.Server.Addr, server.NewRouter(svc, logger), logger)
}

func runUI(logger *slog.Logger) error {
	quickStart := *flagQuickStart || *flagBoardSize > 0 || *flagMode != "" || *flagBot != ""

	app = tview.NewApplication()
	app.EnableMouse(true)
	rootPage = tview.NewPages()
	rootPage.SetBorder(true).SetTitle(" ⬢ termhex ")

	// Game view setup
	gameHint = tview.NewTextView()
	gameHint.SetBorder(true)
	gameHint.SetBorderPadding(0, 0, 1, 1)
	gameHint.SetTitle(" Status ")
	gameHint.SetTitleAlign(tview.AlignLeft)
	gameBoard = ui.NewHexBoard(app, cfg, gameHint, logger)
	defer gameBoard.Close()

	gameFrame = ui.CreateGameLayout(gameBoard, gameHint)

	gameBoard.Box.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyRune && event.Rune() == 'q' {
			if _, ok := gameBoard.SelectedCell(); ok {
				gameBoard.ResetSelection()
			} else if gameBoard.TryClose() {
				rootPage.SwitchToPage("setup")
			}
			return nil
		}
		switch event.Key() {
		case tcell.KeyUp:
			gameBoard.MoveSelection(-1, 0)
		case tcell.KeyDown:
			gameBoard.MoveSelection(1, 0)
		case tcell.KeyLeft:
			gameBoard.MoveSelection(0, -1)
		case tcell.KeyRight:
			gameBoard.MoveSelection(0, 1)
		case tcell.KeyEnter:
			gameBoard.PlaySelected()
		case tcell.KeyRune:
			switch event.Rune() {
			case 'h':
				gameBoard.MoveSelection(0, -1)
			case 'j':
				gameBoard.MoveSelection(1, 0)
			case 'k':
				gameBoard.MoveSelection(-1, 0)
			case 'l':
				gameBoard.MoveSelection(0, 1)
			case 'u':
				gameBoard.Undo()
			case 's':
				gameBoard.Swap()
			}
		}
		return event
	})

	history := ui.NewHistoryBrowser(cfg.HistoryDir, logger, func() {
		rootPage.SwitchToPage("setup")
	})

	setupUI := ui.NewGameSetup(cfg,
		func(gameCfg engine.GameConfig) {
			startGame(gameCfg)
		},
		func() {
			app.Stop()
		},
		func() {
			history.Refresh()
			rootPage.SwitchToPage("history")
		},
		func() {
			rootPage.SwitchToPage("colors")
		},
	)

	colorConfig := ui.NewColorConfig(cfg, logger, func() {
		// Refresh the game board with new colors
		gameBoard.SetConfig(cfg)
		rootPage.SwitchToPage("setup")
	})
	colorConfig.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEsc || (event.Key() == tcell.KeyRune && event.Rune() == 'q') {
			rootPage.SwitchToPage("setup")
			return nil
		}
		if event.Key() == tcell.KeyTab {
			colorConfig.ToggleMode()
			return nil
		}
		return event
	})

	rootPage.AddPage("setup", setupUI.Form(), true, !quickStart)
	rootPage.AddPage("gameview", gameFrame, true, quickStart)
	rootPage.AddPage("history", history.Root(), true, false)
	rootPage.AddPage("colors", colorConfig.Flex(), true, false)

	if quickStart {
		startGame(buildGameConfigFromFlags(setupUI.Config()))
	}

	return app.SetRoot(rootPage, true).Run()
}

// startGame starts a game with the given configuration.
func startGame(gameCfg engine.GameConfig) {
	gameCfg.EnginePath = cfg.Game.EnginePath
	gameCfg.EngineArgs = cfg.Game.EngineArgs

	if err := gameBoard.StartGame(gameCfg, cfg.HistoryDir); err != nil {
		modal := tview.NewModal().
			SetText(fmt.Sprintf("Failed to start game:\n%s", err.Error())).
			AddButtons([]string{"OK"}).
			SetDoneFunc(func(buttonIndex int, buttonLabel string) {
				rootPage.RemovePage("error")
				rootPage.SwitchToPage("setup")
			})
		rootPage.AddPage("error", modal, true, true)
		return
	}
	rootPage.SwitchToPage("gameview")
}

// buildGameConfigFromFlags overrides the configured defaults with command-line flags.
func buildGameConfigFromFlags(gameCfg engine.GameConfig) engine.GameConfig {
	if *flagBoardSize >= 2 && *flagBoardSize <= hex.MaxBoardSize {
		gameCfg.BoardSize = *flagBoardSize
	}
	if *flagMode != "" {
		if mode, err := hex.ParseMode(*flagMode); err == nil {
			gameCfg.Mode = mode
		}
	}
	if *flagBot == engine.BotRandom || *flagBot == engine.BotHTP {
		gameCfg.Bot = *flagBot
	}
	return gameCfg
}
