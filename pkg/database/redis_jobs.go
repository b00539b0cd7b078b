package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/PancyStudios/ArcaneBotGo/pkg/models"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const (
	muteJobsIndexKey = "arcane:mutes"
	muteJobsDataKey  = "arcane:mute_jobs"
)

// RedisJobStore keeps pending mute removals in Redis: a sorted set ordered
// by expiry plus a hash holding the JSON payload of each job.
type RedisJobStore struct {
	client *redis.Client
}

// OpenRedisJobs connects using a redis:// URL
func OpenRedisJobs(ctx context.Context, url string) (*RedisJobStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return &RedisJobStore{client: client}, nil
}

// NewRedisJobStore wraps an existing client
func NewRedisJobStore(client *redis.Client) *RedisJobStore {
	return &RedisJobStore{client: client}
}

func jobField(guildID, userID string) string {
	return guildID + ":" + userID
}

// SaveMuteJob inserts or replaces the pending removal of a user
func (s *RedisJobStore) SaveMuteJob(ctx context.Context, job models.MuteJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}

	field := jobField(job.GuildID, job.UserID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, muteJobsDataKey, field, payload)
		pipe.ZAdd(ctx, muteJobsIndexKey, redis.Z{Score: float64(job.ExpiresAt.Unix()), Member: field})
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving mute job: %w", err)
	}
	return nil
}

// GetMuteJob returns the pending removal of a user
func (s *RedisJobStore) GetMuteJob(ctx context.Context, guildID, userID string) (models.Option[models.MuteJob], error) {
	raw, err := s.client.HGet(ctx, muteJobsDataKey, jobField(guildID, userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.None[models.MuteJob](), nil
	}
	if err != nil {
		return models.None[models.MuteJob](), err
	}

	var job models.MuteJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return models.None[models.MuteJob](), err
	}
	return models.Some(job), nil
}

// DeleteMuteJob drops the pending removal of a user
func (s *RedisJobStore) DeleteMuteJob(ctx context.Context, guildID, userID string) error {
	field := jobField(guildID, userID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, muteJobsDataKey, field)
		pipe.ZRem(ctx, muteJobsIndexKey, field)
		return nil
	})
	return err
}

// ListMuteJobs returns every pending removal ordered by expiry
func (s *RedisJobStore) ListMuteJobs(ctx context.Context) ([]models.MuteJob, error) {
	fields, err := s.client.ZRange(ctx, muteJobsIndexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}

	values, err := s.client.HMGet(ctx, muteJobsDataKey, fields...).Result()
	if err != nil {
		return nil, err
	}

	jobs := make([]models.MuteJob, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var job models.MuteJob
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// Close closes the client
func (s *RedisJobStore) Close() error {
	return s.client.Close()
}
