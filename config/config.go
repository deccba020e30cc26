package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/adrg/xdg"
	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"

	"termhex/engine"
	"termhex/hex"
)

var (
	cfgFile    = "termhex/config.yaml"
	historyDir = "termhex/history"
)

type InvalidConfig struct {
	err string
}

func (e *InvalidConfig) Error() string {
	return fmt.Sprintf("Config error: %s", e.err)
}

type ConfigColors struct {
	BoardColor        int `yaml:"board"`
	BoardColorAlt     int `yaml:"board_alt"`
	Player1Color      int `yaml:"player1"`
	Player2Color      int `yaml:"player2"`
	CursorColorFG     int `yaml:"cursor_fg"`
	CursorColorBG     int `yaml:"cursor_bg"`
	LastPlayedColorBG int `yaml:"last_played_bg"`
}

type ConfigSymbols struct {
	Player1Stone string `yaml:"player1"`
	Player2Stone string `yaml:"player2"`
	EmptyCell    string `yaml:"empty"`
	Cursor       string `yaml:"cursor"`
}

type Theme struct {
	DrawCursorBackground     bool          `yaml:"draw_cursor_bg"`
	DrawLastPlayedBackground bool          `yaml:"draw_last_played_bg"`
	DrawEdges                bool          `yaml:"draw_edges"`
	Colors                   ConfigColors  `yaml:"colors"`
	Symbols                  ConfigSymbols `yaml:"symbols"`
}

// GameConfig holds the defaults offered on the setup screen.
type GameConfig struct {
	BoardSize  int      `yaml:"board_size" env:"HEX_BOARD_SIZE"`
	Mode       string   `yaml:"mode" env:"HEX_MODE"`
	Bot        string   `yaml:"bot" env:"HEX_BOT"`
	EnginePath string   `yaml:"engine_path" env:"HEX_ENGINE_PATH"`
	EngineArgs []string `yaml:"engine_args" env:"HEX_ENGINE_ARGS" env-separator:" "`
}

type Server struct {
	Addr string `yaml:"addr" env:"HEX_SERVER_ADDR"`
}

type Redis struct {
	Enabled bool   `yaml:"enabled" env:"HEX_REDIS_ENABLED"`
	Host    string `yaml:"host" env:"HEX_REDIS_HOST"`
	Port    string `yaml:"port" env:"HEX_REDIS_PORT"`
}

type Log struct {
	Level string `yaml:"level" env:"HEX_LOG_LEVEL"`
	File  string `yaml:"file" env:"HEX_LOG_FILE"`
}

type Config struct {
	Theme      Theme      `yaml:"theme"`
	Game       GameConfig `yaml:"game"`
	Server     Server     `yaml:"server"`
	Redis      Redis      `yaml:"redis"`
	Log        Log        `yaml:"log"`
	HistoryDir string     `yaml:"history_dir" env:"HEX_HISTORY_DIR"`
}

// InitConfig loads the XDG config file if there is one, then HEX_*
// environment overrides, on top of DefaultConfig.
func InitConfig() (*Config, error) {
	absPath, err := xdg.SearchConfigFile(cfgFile)
	if err != nil {
		absPath = ""
	}
	return Load(absPath)
}

// Load reads the config at path, or only the environment if path is empty.
func Load(path string) (*Config, error) {
	config := DefaultConfig()
	if path != "" {
		if err := cleanenv.ReadConfig(path, &config); err != nil {
			return nil, fmt.Errorf("unable to load config file: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&config); err != nil {
		return nil, fmt.Errorf("unable to read environment: %w", err)
	}
	if config.HistoryDir == "" {
		config.HistoryDir = defaultHistoryDir()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func defaultHistoryDir() string {
	return filepath.Join(xdg.DataHome, historyDir)
}

func (c *Config) Validate() error {
	for _, s := range []string{c.Theme.Symbols.Player1Stone, c.Theme.Symbols.Player2Stone, c.Theme.Symbols.EmptyCell, c.Theme.Symbols.Cursor} {
		if utf8.RuneCountInString(s) != 1 {
			return &InvalidConfig{fmt.Sprintf("symbol %q must be a single character", s)}
		}
		r, _ := utf8.DecodeRuneInString(s)
		if r < 32 || (r >= 127 && r <= 159) {
			return &InvalidConfig{"Unicode characters 1-31 and 127-159 are not allowed"}
		}
	}
	if c.Game.BoardSize < 2 || c.Game.BoardSize > hex.MaxBoardSize {
		return &InvalidConfig{fmt.Sprintf("board size %d not in 2..%d", c.Game.BoardSize, hex.MaxBoardSize)}
	}
	if _, err := hex.ParseMode(c.Game.Mode); err != nil {
		return &InvalidConfig{err.Error()}
	}
	if c.Game.Bot != engine.BotRandom && c.Game.Bot != engine.BotHTP {
		return &InvalidConfig{fmt.Sprintf("unknown bot %q", c.Game.Bot)}
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return &InvalidConfig{fmt.Sprintf("log level %q", c.Log.Level)}
	}
	return nil
}

// LogLevel returns the configured log level. Validate has checked it parses.
func (c *Config) LogLevel() slog.Level {
	var lvl slog.Level
	_ = lvl.UnmarshalText([]byte(c.Log.Level))
	return lvl
}

// EngineConfig returns the game settings as an engine config.
func (c *Config) EngineConfig() engine.GameConfig {
	mode, _ := hex.ParseMode(c.Game.Mode)
	return engine.GameConfig{
		BoardSize:  c.Game.BoardSize,
		Mode:       mode,
		Bot:        c.Game.Bot,
		EnginePath: c.Game.EnginePath,
		EngineArgs: c.Game.EngineArgs,
	}
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

// Save writes the config to the XDG config file.
func (c *Config) Save() error {
	absPath, err := xdg.ConfigFile(cfgFile)
	if err != nil {
		return err
	}
	return c.SaveTo(absPath)
}

// SaveTo writes the config as YAML to path.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0664)
}
