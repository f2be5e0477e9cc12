// Package cache keeps the hot browse listings (players, tournaments) in
// Redis so the read API does not hammer Postgres between syncs.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"fantasytennis/ingestion/internal/metrics"
	"fantasytennis/ingestion/internal/models"
)

const (
	keyPlayers     = "listings:players"
	keyTournaments = "listings:tournaments"
)

// Config holds Redis connection settings
type Config struct {
	Host           string
	Port           string
	Password       string
	DB             int
	PlayersTTL     time.Duration
	TournamentsTTL time.Duration
}

// Cache is a thin typed wrapper around one Redis client
type Cache struct {
	rdb            *redis.Client
	playersTTL     time.Duration
	tournamentsTTL time.Duration
}

// NewCache connects to Redis and verifies the connection
func NewCache(cfg Config) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Cache{
		rdb:            rdb,
		playersTTL:     cfg.PlayersTTL,
		tournamentsTTL: cfg.TournamentsTTL,
	}, nil
}

// Close closes the underlying Redis client
func (c *Cache) Close() error {
	return c.rdb.Close()
}

// GetPlayers returns the cached player listing, or ok=false on a miss.
func (c *Cache) GetPlayers(ctx context.Context) ([]*models.Player, bool) {
	var players []*models.Player
	if !c.get(ctx, keyPlayers, &players) {
		return nil, false
	}
	return players, true
}

// SetPlayers stores the player listing
func (c *Cache) SetPlayers(ctx context.Context, players []*models.Player) {
	c.set(ctx, keyPlayers, players, c.playersTTL)
}

// GetTournaments returns the cached tournament listing, or ok=false on a miss.
func (c *Cache) GetTournaments(ctx context.Context) ([]*models.Tournament, bool) {
	var tournaments []*models.Tournament
	if !c.get(ctx, keyTournaments, &tournaments) {
		return nil, false
	}
	return tournaments, true
}

// SetTournaments stores the tournament listing
func (c *Cache) SetTournaments(ctx context.Context, tournaments []*models.Tournament) {
	c.set(ctx, keyTournaments, tournaments, c.tournamentsTTL)
}

// InvalidateListings drops both listings; syncs call this after writing.
func (c *Cache) InvalidateListings(ctx context.Context) {
	if err := c.rdb.Del(ctx, keyPlayers, keyTournaments).Err(); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate cached listings")
	}
}

func (c *Cache) get(ctx context.Context, key string, dest interface{}) bool {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		metrics.RecordCacheMiss()
		return false
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		metrics.RecordCacheMiss()
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache entry corrupt, dropping")
		c.rdb.Del(ctx, key)
		metrics.RecordCacheMiss()
		return false
	}
	metrics.RecordCacheHit()
	return true
}

func (c *Cache) set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to marshal cache entry")
		return
	}
	if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}
