// Package store persists game sessions in Redis so the HTTP API survives restarts.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"termhex/hex"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshot is everything needed to rebuild a session: the board follows
// from replaying Moves.
type Snapshot struct {
	ID        string     `json:"id"`
	Size      int        `json:"size"`
	Mode      string     `json:"mode"`
	Moves     []hex.Move `json:"moves"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// SnapshotOf captures a session under id.
func SnapshotOf(id string, s *hex.Session) Snapshot {
	return Snapshot{
		ID:        id,
		Size:      s.Size(),
		Mode:      s.Mode().String(),
		Moves:     s.Record(),
		UpdatedAt: time.Now().UTC(),
	}
}

// Restore rebuilds the session. opts must supply a bot for bot modes.
func (that Snapshot) Restore(opts ...hex.Option) (*hex.Session, error) {
	mode, err := hex.ParseMode(that.Mode)
	if err != nil {
		return nil, err
	}
	s, err := hex.NewSession(that.Size, mode, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.Replay(that.Moves); err != nil {
		return nil, fmt.Errorf("restore game %s: %w", that.ID, err)
	}
	return s, nil
}

type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to addr and checks the connection.
func NewRedis(ctx context.Context, addr string, ttl time.Duration) (*Redis, error) {
	conn := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if _, err := conn.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return New(conn, ttl), nil
}

// New wraps an existing client. A zero ttl keeps snapshots forever.
func New(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func gameKey(id string) string {
	return "game:" + id
}

func (that *Redis) Save(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	if err := that.client.Set(ctx, gameKey(snap.ID), data, that.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}

	return nil
}

func (that *Redis) Load(ctx context.Context, id string) (Snapshot, error) {
	response, err := that.client.Get(ctx, gameKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, ErrSnapshotNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to get game %s: %w", id, err)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(response), &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return snap, nil
}

func (that *Redis) Delete(ctx context.Context, id string) error {
	n, err := that.client.Del(ctx, gameKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete game %s: %w", id, err)
	}
	if n == 0 {
		return ErrSnapshotNotFound
	}

	return nil
}

func (that *Redis) Close() error {
	return that.client.Close()
}
