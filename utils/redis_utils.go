package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/Luismorlan/socialmux/model"
	"github.com/go-redis/redis/v8"
)

const (
	hashtagListKey = "socialmux__hashtags"
	hashtagListTTL = 10 * time.Minute
)

// RedisClient caches the open hashtag listing. Every hashtag write, staff
// mutations and hashtags created along with a post, invalidates the list.
type RedisClient struct {
	inner *redis.Client
}

func GetRedisClient() *RedisClient {
	return &RedisClient{
		inner: redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")),
			Password: os.Getenv("REDIS_PASSWD"),
			DB:       0, // use default DB
		})}
}

func (r *RedisClient) Ping(ctx context.Context) error {
	return r.inner.Ping(ctx).Err()
}

// GetHashtags returns the cached listing, ok is false on miss or error.
func (r *RedisClient) GetHashtags(ctx context.Context) ([]*model.Hashtag, bool) {
	raw, err := r.inner.Get(ctx, hashtagListKey).Bytes()
	if err != nil {
		return nil, false
	}
	var hashtags []*model.Hashtag
	if err := json.Unmarshal(raw, &hashtags); err != nil {
		return nil, false
	}
	return hashtags, true
}

func (r *RedisClient) SetHashtags(ctx context.Context, hashtags []*model.Hashtag) error {
	raw, err := json.Marshal(hashtags)
	if err != nil {
		return err
	}
	return r.inner.Set(ctx, hashtagListKey, raw, hashtagListTTL).Err()
}

func (r *RedisClient) InvalidateHashtags(ctx context.Context) error {
	return r.inner.Del(ctx, hashtagListKey).Err()
}
