package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"libraryhub/internal/api/models"
)

// BookCache is a read-through Redis cache for book detail responses.
// Catalog readers may observe slightly stale counters between transactions;
// mutation paths invalidate after commit, best-effort.
type BookCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewBookCache connects to Redis and verifies the connection. addr may be a
// host:port; an empty addr yields a disabled (nil-client) cache.
func NewBookCache(addr, password string, ttl time.Duration) (*BookCache, error) {
	if addr == "" {
		return &BookCache{}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &BookCache{client: rdb, ttl: ttl}, nil
}

func bookKey(bookID int64) string {
	return fmt.Sprintf("book:%d", bookID)
}

// GetBook returns the cached book, or (nil, nil) on a miss.
func (c *BookCache) GetBook(ctx context.Context, bookID int64) (*models.Book, error) {
	if c == nil || c.client == nil {
		// No-op when the cache is disabled
		return nil, nil
	}

	payload, err := c.client.Get(ctx, bookKey(bookID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var book models.Book
	if err := json.Unmarshal(payload, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// SetBook stores the book with the configured TTL.
func (c *BookCache) SetBook(ctx context.Context, book *models.Book) error {
	if c == nil || c.client == nil {
		return nil
	}

	payload, err := json.Marshal(book)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, bookKey(book.ID), payload, c.ttl).Err()
}

// InvalidateBook drops the cached entry after a counter mutation commits.
func (c *BookCache) InvalidateBook(ctx context.Context, bookID int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, bookKey(bookID)).Err()
}

// Close releases the Redis connection.
func (c *BookCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
