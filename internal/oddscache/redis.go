package oddscache

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "oddscache:"

// RedisTier persiste entradas no Redis como JSON, sem TTL: a validade é
// decidida na leitura pelo chamador via maxAge.
type RedisTier struct {
	rdb *redis.Client
}

func NewRedisTier(rdb *redis.Client) *RedisTier {
	return &RedisTier{rdb: rdb}
}

func (t *RedisTier) Get(ctx context.Context, key string) (Entry, bool, error) {
	raw, err := t.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

func (t *RedisTier) Set(ctx context.Context, key string, e Entry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return t.rdb.Set(ctx, redisKeyPrefix+key, raw, 0).Err()
}
