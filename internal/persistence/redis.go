package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/valorin/storefront-backend/config"
	"github.com/valorin/storefront-backend/internal/app/model"
	"github.com/valorin/storefront-backend/pkg/logger"
)

const (
	cartKey     = "valorin:cart"
	wishlistKey = "valorin:wishlist"

	// schemaVersion guards stored records against incompatible shape changes.
	// A mismatch discards the record instead of crashing on decode.
	schemaVersion = 1
)

// record is the versioned envelope every stored value is wrapped in.
type record struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// RedisStore persists storefront state as namespaced JSON records in Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg *config.RedisConfig) (*RedisStore, error) {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully", nil)
	return &RedisStore{client: client}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	logger.Info("Closing Redis connection", nil)
	return s.client.Close()
}

func (s *RedisStore) save(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	envelope, err := json.Marshal(record{Version: schemaVersion, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}
	if err := s.client.Set(ctx, key, envelope, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// load decodes the record at key into out. Returns (false, nil) when no
// record exists and ErrCorruptRecord when the record cannot be used.
func (s *RedisStore) load(ctx context.Context, key string, out interface{}) (bool, error) {
	raw, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}

	var env record
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return false, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	if env.Version != schemaVersion {
		return false, fmt.Errorf("%w: version %d, want %d", ErrCorruptRecord, env.Version, schemaVersion)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return false, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return true, nil
}

// SaveCart writes the cart state. Transient flags are excluded by the model's
// serialization tags.
func (s *RedisStore) SaveCart(ctx context.Context, state model.CartState) error {
	return s.save(ctx, cartKey, state)
}

// LoadCart restores the cart state. Missing or corrupt records fall back to
// an empty cart; corruption is reported via ErrCorruptRecord so the caller
// can log it.
func (s *RedisStore) LoadCart(ctx context.Context) (model.CartState, error) {
	var state model.CartState
	found, err := s.load(ctx, cartKey, &state)
	if err != nil {
		return model.CartState{}, err
	}
	if !found {
		return model.CartState{}, nil
	}
	return state, nil
}

// SaveWishlist writes the wishlist items.
func (s *RedisStore) SaveWishlist(ctx context.Context, items []model.WishlistItem) error {
	return s.save(ctx, wishlistKey, items)
}

// LoadWishlist restores the wishlist. Missing records yield an empty list.
func (s *RedisStore) LoadWishlist(ctx context.Context) ([]model.WishlistItem, error) {
	var items []model.WishlistItem
	if _, err := s.load(ctx, wishlistKey, &items); err != nil {
		return nil, err
	}
	return items, nil
}
