package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"signal-bot-backend/internal/config"
	"signal-bot-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisService owns the per-user streak state, the settings hash and
// rate limiting. Every streak mutation runs as a single Lua script so
// two concurrent updates for the same user can never race into a lost
// update.
type RedisService struct {
	client *redis.Client
	ctx    context.Context
}

func NewRedisService(cfg *config.Config) (*RedisService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	ctx := context.Background()

	_, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %v", err)
	}

	return &RedisService{client: client, ctx: ctx}, nil
}

func (s *RedisService) Close() error {
	return s.client.Close()
}

// recordOutcomeScript applies one win/loss to the streak state,
// lazily initializing it. Win resets the loss streak and vice versa, so
// at most one counter is ever non-zero.
var recordOutcomeScript = redis.NewScript(`
	local key = KEYS[1]
	local win = ARGV[1] == "1"

	local state = {win_streak = 0, loss_streak = 0}
	local data = redis.call("GET", key)
	if data then
		state = cjson.decode(data)
	end

	if win then
		state.win_streak = (state.win_streak or 0) + 1
		state.loss_streak = 0
	else
		state.loss_streak = (state.loss_streak or 0) + 1
		state.win_streak = 0
	end

	redis.call("SET", key, cjson.encode(state))

	return {state.win_streak, state.loss_streak}
`)

// RecordOutcome applies a win or loss for the user and returns the
// post-update (winStreak, lossStreak) counters.
func (s *RedisService) RecordOutcome(userID int64, win bool) (int, int, error) {
	key := fmt.Sprintf(KeyStreak, userID)

	arg := "0"
	if win {
		arg = "1"
	}

	res, err := recordOutcomeScript.Run(s.ctx, s.client, []string{key}, arg).Int64Slice()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to record outcome: %v", err)
	}
	if len(res) != 2 {
		return 0, 0, fmt.Errorf("unexpected outcome script reply: %v", res)
	}

	return int(res[0]), int(res[1]), nil
}

// recordIssuedSignalScript overwrites last_signal while preserving
// whatever counters are already there.
var recordIssuedSignalScript = redis.NewScript(`
	local key = KEYS[1]
	local snapshot = ARGV[1]

	local state = {win_streak = 0, loss_streak = 0}
	local data = redis.call("GET", key)
	if data then
		state = cjson.decode(data)
	end

	state.last_signal = snapshot

	redis.call("SET", key, cjson.encode(state))

	return "OK"
`)

func (s *RedisService) RecordIssuedSignal(userID int64, snapshot string) error {
	key := fmt.Sprintf(KeyStreak, userID)
	return recordIssuedSignalScript.Run(s.ctx, s.client, []string{key}, snapshot).Err()
}

// GetStreakState returns the user's streak state, zero-valued when the
// user has no history yet.
func (s *RedisService) GetStreakState(userID int64) (*models.StreakState, error) {
	key := fmt.Sprintf(KeyStreak, userID)

	data, err := s.client.Get(s.ctx, key).Result()
	if err == redis.Nil {
		return &models.StreakState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get streak state: %v", err)
	}

	var state models.StreakState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal streak state: %v", err)
	}

	return &state, nil
}

// CurrentStreaks returns (lossStreak, winStreak), (0,0) for unknown
// users — absence just means no history.
func (s *RedisService) CurrentStreaks(userID int64) (int, int, error) {
	state, err := s.GetStreakState(userID)
	if err != nil {
		return 0, 0, err
	}
	return state.LossStreak, state.WinStreak, nil
}

func (s *RedisService) DeleteStreak(userID int64) error {
	key := fmt.Sprintf(KeyStreak, userID)
	return s.client.Del(s.ctx, key).Err()
}

// --- Settings ---

// SeedSetting writes a setting only if the key is absent. Used at
// startup to install the configured referral link without clobbering a
// later operator override.
func (s *RedisService) SeedSetting(key, value string) error {
	return s.client.HSetNX(s.ctx, KeySettings, key, value).Err()
}

func (s *RedisService) SetSetting(key, value string) error {
	return s.client.HSet(s.ctx, KeySettings, key, value).Err()
}

// GetSetting returns "" for an unset key.
func (s *RedisService) GetSetting(key string) (string, error) {
	val, err := s.client.HGet(s.ctx, KeySettings, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting %s: %v", key, err)
	}
	return val, nil
}

func (s *RedisService) DeleteSetting(key string) error {
	return s.client.HDel(s.ctx, KeySettings, key).Err()
}

// --- Rate limiting ---

func (s *RedisService) CheckRateLimit(userID int64, action string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf(KeyRateLimit, userID, action)

	count, err := s.client.Incr(s.ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit: %v", err)
	}

	if count == 1 {
		s.client.Expire(s.ctx, key, window)
	}

	return count <= int64(limit), nil
}

func (s *RedisService) ClearRateLimit(userID int64, action string) error {
	key := fmt.Sprintf(KeyRateLimit, userID, action)
	return s.client.Del(s.ctx, key).Err()
}
