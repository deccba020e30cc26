// Package server exposes Hex sessions over an HTTP JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"termhex/hex"
	"termhex/store"
)

var (
	ErrNotFound = errors.New("game not found")
	ErrBotTurn  = errors.New("waiting for the bot")
)

// Store keeps snapshots outside the process. *store.Redis implements it.
type Store interface {
	Save(ctx context.Context, snap store.Snapshot) error
	Load(ctx context.Context, id string) (store.Snapshot, error)
}

// GameView is the JSON shape of a game.
type GameView struct {
	ID            string        `json:"id"`
	Size          int           `json:"size"`
	Mode          string        `json:"mode"`
	Board         [][]hex.Owner `json:"board"`
	CurrentPlayer hex.Owner     `json:"current_player"`
	Running       bool          `json:"running"`
	Winner        hex.Owner     `json:"winner"`
	History       []hex.Move    `json:"history"`
	UndoEnabled   bool          `json:"undo_enabled"`
	SwapEnabled   bool          `json:"swap_enabled"`
}

func viewOf(id string, s *hex.Session) GameView {
	return GameView{
		ID:            id,
		Size:          s.Size(),
		Mode:          s.Mode().String(),
		Board:         s.Board().Cells(),
		CurrentPlayer: s.CurrentPlayer(),
		Running:       s.Running(),
		Winner:        s.Winner(),
		History:       s.Record(),
		UndoEnabled:   s.UndoEnabled(),
		SwapEnabled:   s.SwapEnabled(),
	}
}

// Service manages games. Sessions are not safe for concurrent use, so
// every operation runs under mu.
type Service struct {
	mu     sync.Mutex
	games  map[string]*hex.Session
	store  Store
	newBot func() hex.Bot
	log    *slog.Logger
}

type ServiceOption func(*Service)

// WithStore persists every change and reloads games missing from memory.
func WithStore(st Store) ServiceOption {
	return func(s *Service) { s.store = st }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// NewService creates a service. newBot builds the bot for each game with a
// bot seat.
func NewService(newBot func() hex.Bot, opts ...ServiceOption) *Service {
	s := &Service{
		games:  make(map[string]*hex.Session),
		newBot: newBot,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "service")
	return s
}

func (s *Service) sessionOptions(mode hex.Mode) []hex.Option {
	opts := []hex.Option{hex.WithLogger(s.log)}
	if mode.HasBot() {
		opts = append(opts, hex.WithBot(s.newBot()))
	}
	return opts
}

// CreateGame starts a game; in bot-first mode the bot has opened when it returns.
func (s *Service) CreateGame(ctx context.Context, size int, modeName string) (GameView, error) {
	mode, err := hex.ParseMode(modeName)
	if err != nil {
		return GameView{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := hex.NewSession(size, mode, s.sessionOptions(mode)...)
	if err != nil {
		return GameView{}, err
	}
	id := uuid.NewString()
	startErr := session.Start()
	if startErr != nil && !errors.Is(startErr, hex.ErrBotFailed) {
		return GameView{}, startErr
	}
	s.games[id] = session
	s.log.Info("game created", "id", id, "size", size, "mode", mode.String())

	if err := s.persist(ctx, id, session); err != nil {
		return GameView{}, err
	}
	return viewOf(id, session), startErr
}

// Get returns the current state of a game.
func (s *Service) Get(ctx context.Context, id string) (GameView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.lookup(ctx, id)
	if err != nil {
		return GameView{}, err
	}
	return viewOf(id, session), nil
}

// Play places the current player's stone; the bot answers in bot modes.
func (s *Service) Play(ctx context.Context, id string, c hex.Coord) (GameView, error) {
	return s.update(ctx, id, func(session *hex.Session) error {
		if session.Running() && session.IsBotTurn() {
			return ErrBotTurn
		}
		return session.ApplyMove(c, session.Mode().HasBot())
	})
}

// Undo takes back the last human move.
func (s *Service) Undo(ctx context.Context, id string) (GameView, error) {
	return s.update(ctx, id, func(session *hex.Session) error {
		return session.Undo()
	})
}

// Swap takes over the opening move.
func (s *Service) Swap(ctx context.Context, id string) (GameView, error) {
	return s.update(ctx, id, func(session *hex.Session) error {
		if session.IsBotTurn() {
			return ErrBotTurn
		}
		return session.Swap()
	})
}

// update runs op and saves the result. A bot failure still leaves the
// human move on the board, so it is saved and returned with the view.
func (s *Service) update(ctx context.Context, id string, op func(*hex.Session) error) (GameView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.lookup(ctx, id)
	if err != nil {
		return GameView{}, err
	}
	opErr := op(session)
	if opErr != nil && !errors.Is(opErr, hex.ErrBotFailed) {
		return GameView{}, opErr
	}
	if err := s.persist(ctx, id, session); err != nil {
		return GameView{}, err
	}
	return viewOf(id, session), opErr
}

func (s *Service) lookup(ctx context.Context, id string) (*hex.Session, error) {
	if session, ok := s.games[id]; ok {
		return session, nil
	}
	if s.store == nil {
		return nil, ErrNotFound
	}

	snap, err := s.store.Load(ctx, id)
	if errors.Is(err, store.ErrSnapshotNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	mode, err := hex.ParseMode(snap.Mode)
	if err != nil {
		return nil, fmt.Errorf("stored game %s: %w", id, err)
	}
	session, err := snap.Restore(s.sessionOptions(mode)...)
	if err != nil {
		return nil, err
	}
	s.games[id] = session
	s.log.Debug("game restored", "id", id, "moves", len(snap.Moves))
	return session, nil
}

func (s *Service) persist(ctx context.Context, id string, session *hex.Session) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Save(ctx, store.SnapshotOf(id, session)); err != nil {
		s.log.Error("could not save game", "id", id, "error", err)
		return err
	}
	return nil
}
