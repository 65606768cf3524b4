// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package outcomes

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/danielhkuo/crossroads/models"
)

const (
	redisOutcomeIDsKey = "outcomes"
	redisCurrentKey    = "state:current_outcome"
)

func redisOutcomeKey(id int64) string {
	return "outcome:" + strconv.FormatInt(id, 10)
}

// RedisStore keeps each outcome as a hash and the pointer as a plain key.
//
//	outcomes               set of ids
//	outcome:<id>           hash: title, duration, decision{1,2}_id, decision{1,2}_text
//	state:current_outcome  id
type RedisStore struct {
	client *redis.Client
}

// OpenRedis connects using a redis:// URL and verifies the connection.
func OpenRedis(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStore(client), nil
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) GetCurrentOutcome(ctx context.Context) (models.Outcome, error) {
	id, err := s.client.Get(ctx, redisCurrentKey).Int64()
	if errors.Is(err, redis.Nil) {
		return models.Outcome{}, fmt.Errorf("get current outcome: %w", ErrNotFound)
	}
	if err != nil {
		return models.Outcome{}, fmt.Errorf("get current outcome: %w", err)
	}
	return s.GetOutcome(ctx, id)
}

func (s *RedisStore) GetOutcome(ctx context.Context, id int64) (models.Outcome, error) {
	fields, err := s.client.HGetAll(ctx, redisOutcomeKey(id)).Result()
	if err != nil {
		return models.Outcome{}, fmt.Errorf("get outcome %d: %w", id, err)
	}
	if len(fields) == 0 {
		return models.Outcome{}, fmt.Errorf("get outcome %d: %w", id, ErrNotFound)
	}
	return decodeOutcome(id, fields)
}

func (s *RedisStore) SetCurrentOutcome(ctx context.Context, id int64) error {
	n, err := s.client.Exists(ctx, redisOutcomeKey(id)).Result()
	if err != nil {
		return fmt.Errorf("set current outcome: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("set current outcome %d: %w", id, ErrNotFound)
	}
	if err := s.client.Set(ctx, redisCurrentKey, id, 0).Err(); err != nil {
		return fmt.Errorf("set current outcome: %w", err)
	}
	return nil
}

func (s *RedisStore) ListOutcomes(ctx context.Context) ([]models.Outcome, error) {
	members, err := s.client.SMembers(ctx, redisOutcomeIDsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("list outcomes: bad id %q: %w", m, err)
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, redisOutcomeKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}

	list := make([]models.Outcome, 0, len(ids))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		o, err := decodeOutcome(ids[i], fields)
		if err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, nil
}

func (s *RedisStore) PutOutcome(ctx context.Context, outcome models.Outcome) error {
	if err := outcome.Validate(); err != nil {
		return err
	}

	key := redisOutcomeKey(outcome.ID)
	fields := map[string]any{
		"title":    outcome.Title,
		"duration": outcome.Duration,
	}
	if outcome.Decision1ID != nil {
		fields["decision1_id"] = *outcome.Decision1ID
	}
	if outcome.Decision2ID != nil {
		fields["decision2_id"] = *outcome.Decision2ID
	}
	if outcome.Decision1Text != nil {
		fields["decision1_text"] = *outcome.Decision1Text
	}
	if outcome.Decision2Text != nil {
		fields["decision2_text"] = *outcome.Decision2Text
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fields)
		pipe.SAdd(ctx, redisOutcomeIDsKey, outcome.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("put outcome %d: %w", outcome.ID, err)
	}
	return nil
}

func decodeOutcome(id int64, fields map[string]string) (models.Outcome, error) {
	o := models.Outcome{ID: id, Title: fields["title"]}

	if v, ok := fields["duration"]; ok {
		d, err := strconv.Atoi(v)
		if err != nil {
			return models.Outcome{}, fmt.Errorf("outcome %d: bad duration %q: %w", id, v, err)
		}
		o.Duration = d
	}
	for _, f := range []struct {
		name string
		dst  **int64
	}{
		{"decision1_id", &o.Decision1ID},
		{"decision2_id", &o.Decision2ID},
	} {
		v, ok := fields[f.name]
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return models.Outcome{}, fmt.Errorf("outcome %d: bad %s %q: %w", id, f.name, v, err)
		}
		*f.dst = &n
	}
	if v, ok := fields["decision1_text"]; ok {
		o.Decision1Text = &v
	}
	if v, ok := fields["decision2_text"]; ok {
		o.Decision2Text = &v
	}
	return o, nil
}

var _ Store = (*RedisStore)(nil)
