package hex

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Mode says which seats are played by a bot. It is fixed for a session.
type Mode int

const (
	HumanVsHuman Mode = iota
	HumanVsBot        // the bot plays second
	BotVsHuman        // the bot plays first
)

// ParseMode accepts "hh", "hb" and "bh".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hh":
		return HumanVsHuman, nil
	case "hb":
		return HumanVsBot, nil
	case "bh":
		return BotVsHuman, nil
	}
	return HumanVsHuman, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

func (m Mode) String() string {
	switch m {
	case HumanVsBot:
		return "hb"
	case BotVsHuman:
		return "bh"
	}
	return "hh"
}

// HasBot reports whether one of the seats is a bot.
func (m Mode) HasBot() bool {
	return m == HumanVsBot || m == BotVsHuman
}

// BotPlayer returns the seat played by the bot, or Empty.
func (m Mode) BotPlayer() Owner {
	switch m {
	case HumanVsBot:
		return Player2
	case BotVsHuman:
		return Player1
	}
	return Empty
}

// SwapDecision is a bot's answer to the opening move: take it over, or play Move.
type SwapDecision struct {
	Swap bool
	Move Coord
}

// Bot chooses moves for its seat. It receives a copy of the board.
type Bot interface {
	ChooseMove(b *Board, player Owner) (Coord, error)
	DecideSwap(b *Board) (SwapDecision, error)
}

// Observer is told about every change a front end has to redraw.
type Observer interface {
	// CellChanged fires once per board mutation, including clears on undo.
	CellChanged(c Coord, o Owner)
	GameFinished(winner Owner)
	// ControlsChanged fires after every move, undo and swap.
	ControlsChanged()
}

type nopObserver struct{}

func (nopObserver) CellChanged(Coord, Owner) {}
func (nopObserver) GameFinished(Owner)       {}
func (nopObserver) ControlsChanged()         {}

// Move is one entry of a game record. A swap entry carries no coordinate.
type Move struct {
	Coord Coord `json:"coord"`
	Swap  bool  `json:"swap,omitempty"`
}

// Option configures a Session.
type Option func(*Session)

// WithBot sets the bot that plays the bot seat.
func WithBot(b Bot) Option {
	return func(s *Session) { s.bot = b }
}

// WithObserver registers the front end to notify.
func WithObserver(o Observer) Option {
	return func(s *Session) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// Session runs one game: turns, history, undo and the swap rule.
// It is not safe for concurrent use.
type Session struct {
	board    *Board
	mode     Mode
	player   Owner
	history  []Coord
	swapped  *Coord // opening move taken over by a swap, until that swap is undone
	running  bool
	winner   Owner
	bot      Bot
	observer Observer
	log      *slog.Logger
}

// NewSession creates a game on an empty size x size board with Player 1 to move.
func NewSession(size int, mode Mode, opts ...Option) (*Session, error) {
	board, err := NewBoard(size)
	if err != nil {
		return nil, err
	}
	s := &Session{
		board:    board,
		mode:     mode,
		player:   Player1,
		running:  true,
		observer: nopObserver{},
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if mode.HasBot() && s.bot == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoBot, mode)
	}
	s.log = s.log.With("component", "session", "size", size, "mode", mode.String())
	return s, nil
}

// Start lets the bot open the game when it holds the first seat.
func (s *Session) Start() error {
	if s.mode != BotVsHuman || len(s.history) > 0 {
		return nil
	}
	err := s.botMove()
	s.observer.ControlsChanged()
	return err
}

// ApplyMove places the current player's stone at c. With botShouldRespond
// the bot answers before ApplyMove returns: with a swap decision after the
// opening move, with a normal move otherwise. Asking a session without a bot
// to respond fails with ErrNoBot and leaves the board unchanged.
func (s *Session) ApplyMove(c Coord, botShouldRespond bool) error {
	return s.apply(c, botShouldRespond, false)
}

func (s *Session) apply(c Coord, botShouldRespond, swapping bool) error {
	if !s.running {
		return fmt.Errorf("%w: game is finished", ErrIllegalMove)
	}
	if botShouldRespond && s.bot == nil {
		return fmt.Errorf("%w: no bot to respond in %s", ErrNoBot, s.mode)
	}
	empty, err := s.board.IsEmpty(c)
	if err != nil {
		return err
	}
	if !empty {
		return fmt.Errorf("%w: %v is occupied", ErrIllegalMove, c)
	}

	s.place(c)

	if botShouldRespond && s.running {
		if len(s.history) == 1 && !swapping {
			err = s.botSwapOrMove()
		} else {
			err = s.botMove()
		}
	}
	s.observer.ControlsChanged()
	return err
}

// place assumes c is an empty in-range cell and the game is running.
func (s *Session) place(c Coord) {
	s.history = append(s.history, c)
	_ = s.board.Set(c, s.player)
	s.observer.CellChanged(c, s.player)
	s.log.Debug("stone placed", "player", int(s.player), "cell", c.String(), "ply", len(s.history))

	if Wins(s.board, s.player, c) {
		s.running = false
		s.winner = s.player
		s.log.Info("game finished", "winner", int(s.winner), "plies", len(s.history))
		s.observer.GameFinished(s.winner)
		return
	}
	s.player = s.player.Opponent()
}

func (s *Session) botMove() error {
	c, err := s.bot.ChooseMove(s.board.Clone(), s.player)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBotFailed, err)
	}
	if err = s.apply(c, false, false); err != nil {
		return fmt.Errorf("%w: %w", ErrBotFailed, err)
	}
	return nil
}

func (s *Session) botSwapOrMove() error {
	d, err := s.bot.DecideSwap(s.board.Clone())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBotFailed, err)
	}
	if d.Swap {
		s.log.Debug("bot swaps")
		if err = s.Swap(); err != nil {
			return fmt.Errorf("%w: %w", ErrBotFailed, err)
		}
		return nil
	}
	if err = s.apply(d.Move, false, false); err != nil {
		return fmt.Errorf("%w: %w", ErrBotFailed, err)
	}
	return nil
}

// Swap lets Player 2 take over the opening move: the stone is removed and
// Player 2 plays the transposed cell instead.
func (s *Session) Swap() error {
	return s.swap(s.mode == BotVsHuman)
}

func (s *Session) swap(botShouldRespond bool) error {
	if !s.SwapEnabled() {
		return fmt.Errorf("%w: %d moves played, %v to move", ErrInvalidSwapState, len(s.history), s.player)
	}
	opening := s.history[0]
	s.swapped = &opening
	s.undoOne(true)
	s.log.Debug("swap", "opening", opening.String())
	return s.apply(opening.Transpose(), botShouldRespond, true)
}

// Undo takes back the last move. Against a bot it takes back the bot's reply
// and the human move before it, so the human is to move again. Undoing the
// winning move reopens the game.
func (s *Session) Undo() error {
	if !s.UndoEnabled() {
		return fmt.Errorf("%w: %d moves played", ErrEmptyHistoryUndo, len(s.history))
	}
	// A winning move does not pass the turn.
	lastMover := s.player.Opponent()
	if !s.running {
		lastMover = s.player
	}
	steps := 1
	if s.mode.HasBot() && lastMover == s.mode.BotPlayer() {
		steps = 2
	}
	for i := 0; i < steps && len(s.history) > 0; i++ {
		s.undoOne(false)
	}
	s.observer.ControlsChanged()
	return nil
}

func (s *Session) undoOne(swapping bool) {
	last := s.history[len(s.history)-1]
	_ = s.board.Set(last, Empty)
	s.observer.CellChanged(last, Empty)
	s.history = s.history[:len(s.history)-1]
	s.log.Debug("move undone", "cell", last.String(), "ply", len(s.history))

	if !s.running {
		// The winning move never passed the turn.
		s.running = true
		s.winner = Empty
		return
	}
	if len(s.history) == 0 && s.player == Player1 && s.swapped != nil {
		// Undoing a swap puts Player 1's opening stone back.
		opening := *s.swapped
		s.swapped = nil
		s.place(opening)
		return
	}
	if !swapping {
		s.player = s.player.Opponent()
	}
}

// UndoEnabled reports whether there is a human move to take back.
func (s *Session) UndoEnabled() bool {
	n := len(s.history)
	return n > 1 || (n == 1 && s.mode != BotVsHuman)
}

// SwapEnabled reports whether Player 2 may swap: exactly one move has been
// played and it is Player 2's turn.
func (s *Session) SwapEnabled() bool {
	return s.running && len(s.history) == 1 && s.player == Player2
}

// Replay plays a recorded game onto the session without asking the bot.
func (s *Session) Replay(moves []Move) error {
	for i, m := range moves {
		var err error
		if m.Swap {
			err = s.swap(false)
		} else {
			err = s.apply(m.Coord, false, false)
		}
		if err != nil {
			return fmt.Errorf("replay move %d: %w", i+1, err)
		}
	}
	return nil
}

// Record returns the history as a game record. A swapped opening shows up
// as the original move followed by a swap entry.
func (s *Session) Record() []Move {
	moves := make([]Move, 0, len(s.history)+1)
	for i, c := range s.history {
		if i == 0 && s.swapped != nil {
			moves = append(moves, Move{Coord: *s.swapped}, Move{Swap: true})
			continue
		}
		moves = append(moves, Move{Coord: c})
	}
	return moves
}

// Board returns a copy of the current board.
func (s *Session) Board() *Board {
	return s.board.Clone()
}

// Owner returns the owner of a single cell.
func (s *Session) Owner(c Coord) (Owner, error) {
	return s.board.Owner(c)
}

func (s *Session) Size() int            { return s.board.Size() }
func (s *Session) Mode() Mode           { return s.mode }
func (s *Session) CurrentPlayer() Owner { return s.player }
func (s *Session) Running() bool        { return s.running }

// Winner returns the winning player, or Empty while the game runs.
func (s *Session) Winner() Owner {
	return s.winner
}

// History returns the placed stones in order.
func (s *Session) History() []Coord {
	out := make([]Coord, len(s.history))
	copy(out, s.history)
	return out
}

// LastMove returns the most recently placed stone.
func (s *Session) LastMove() (Coord, bool) {
	if len(s.history) == 0 {
		return Coord{}, false
	}
	return s.history[len(s.history)-1], true
}

// Swapped returns the opening move taken over by a swap still on the board.
func (s *Session) Swapped() (Coord, bool) {
	if s.swapped == nil {
		return Coord{}, false
	}
	return *s.swapped, true
}

// IsBotTurn reports whether the bot holds the seat to move.
func (s *Session) IsBotTurn() bool {
	return s.mode.HasBot() && s.player == s.mode.BotPlayer()
}
