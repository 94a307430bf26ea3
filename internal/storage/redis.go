package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"moodtrack/internal/models"
)

// RedisStorage keeps the collection as one JSON string value in a shared redis.
type RedisStorage struct {
	client *redis.Client
	key    string
}

func NewRedisStorage(client *redis.Client, key string) *RedisStorage {
	return &RedisStorage{
		client: client,
		key:    key,
	}
}

// OpenRedisStorage connects using a redis:// URL and pings the server.
func OpenRedisStorage(ctx context.Context, url, key string) (*RedisStorage, error) {
	op := "internal/storage/redis.go OpenRedisStorage"

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("Failure to parse redis url in %s: %w", op, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, unavailable(op, "ping redis", err)
	}

	return NewRedisStorage(client, key), nil
}

func (rd_st *RedisStorage) LoadAll(ctx context.Context) ([]models.MoodEntry, error) {
	op := "internal/storage/redis.go LoadAll"

	data, err := rd_st.client.Get(ctx, rd_st.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []models.MoodEntry{}, nil
	}
	if err != nil {
		return nil, unavailable(op, "get "+rd_st.key, err)
	}

	var entries []models.MoodEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, unavailable(op, "decode "+rd_st.key, err)
	}

	return emptyIfNil(entries), nil
}

func (rd_st *RedisStorage) SaveAll(ctx context.Context, entries []models.MoodEntry) error {
	op := "internal/storage/redis.go SaveAll"

	data, err := json.Marshal(emptyIfNil(entries))
	if err != nil {
		return unavailable(op, "encode entries", err)
	}

	if err := rd_st.client.Set(ctx, rd_st.key, data, 0).Err(); err != nil {
		return unavailable(op, "set "+rd_st.key, err)
	}

	return nil
}

func (rd_st *RedisStorage) Close() error {
	return rd_st.client.Close()
}
