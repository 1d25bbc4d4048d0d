package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/templateflow/api/internal/model"
)

const ledgerKey = "ledger:decisions"

// RedisStore keeps the ledger in a Redis list. RPUSH gives the atomic
// append the record model requires; readers take an LRANGE snapshot.
type RedisStore struct {
	redis *redis.Client
}

func NewRedisStore(redisClient *redis.Client) *RedisStore {
	return &RedisStore{redis: redisClient}
}

func (s *RedisStore) Append(ctx context.Context, rec model.LearningRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.redis.RPush(ctx, ledgerKey, data).Err()
}

func (s *RedisStore) List(ctx context.Context) ([]model.LearningRecord, error) {
	raw, err := s.redis.LRange(ctx, ledgerKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	records := make([]model.LearningRecord, 0, len(raw))
	for i, item := range raw {
		var rec model.LearningRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("corrupt learning record at index %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
