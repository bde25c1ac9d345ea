package services_test

import (
	"testing"

	"signal-bot-backend/internal/config"
	"signal-bot-backend/internal/services"
)

func setupTestRedis(t *testing.T) *services.RedisService {
	cfg := &config.Config{
		RedisURL:  "localhost:6379",
		RedisPass: "",
		RedisDB:   0,
	}

	redisService, err := services.NewRedisService(cfg)
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return redisService
}

func TestStreakTracker(t *testing.T) {
	redisService := setupTestRedis(t)
	defer redisService.Close()

	userID := int64(999001)
	redisService.DeleteStreak(userID)
	defer redisService.DeleteStreak(userID)

	// No history reads as (0,0), not an error.
	lossStreak, winStreak, err := redisService.CurrentStreaks(userID)
	if err != nil {
		t.Fatalf("CurrentStreaks failed: %v", err)
	}
	if lossStreak != 0 || winStreak != 0 {
		t.Errorf("Unknown user should read (0,0), got (%d,%d)", lossStreak, winStreak)
	}

	winStreak, lossStreak, err = redisService.RecordOutcome(userID, false)
	if err != nil {
		t.Fatalf("RecordOutcome failed: %v", err)
	}
	if winStreak != 0 || lossStreak != 1 {
		t.Errorf("Expected (0,1) after a loss, got (%d,%d)", winStreak, lossStreak)
	}

	redisService.RecordOutcome(userID, false)
	winStreak, lossStreak, _ = redisService.RecordOutcome(userID, true)
	if winStreak != 1 || lossStreak != 0 {
		t.Errorf("A win must reset the loss streak, got (%d,%d)", winStreak, lossStreak)
	}

	// The snapshot write keeps existing counters intact.
	if err := redisService.RecordIssuedSignal(userID, "Big | Green | 7"); err != nil {
		t.Fatalf("RecordIssuedSignal failed: %v", err)
	}
	state, err := redisService.GetStreakState(userID)
	if err != nil {
		t.Fatalf("GetStreakState failed: %v", err)
	}
	if state.WinStreak != 1 || state.LossStreak != 0 {
		t.Errorf("Snapshot write clobbered counters: %+v", state)
	}
	if state.LastSignal != "Big | Green | 7" {
		t.Errorf("Last signal not stored, got %q", state.LastSignal)
	}
}

func TestIssuedSignalLazyInit(t *testing.T) {
	redisService := setupTestRedis(t)
	defer redisService.Close()

	userID := int64(999002)
	redisService.DeleteStreak(userID)
	defer redisService.DeleteStreak(userID)

	// Snapshot for a user with no history initializes zero counters.
	if err := redisService.RecordIssuedSignal(userID, "Small | Red | 3"); err != nil {
		t.Fatalf("RecordIssuedSignal failed: %v", err)
	}
	state, err := redisService.GetStreakState(userID)
	if err != nil {
		t.Fatalf("GetStreakState failed: %v", err)
	}
	if state.WinStreak != 0 || state.LossStreak != 0 {
		t.Errorf("Lazy init should zero the counters, got %+v", state)
	}
	if state.LastSignal != "Small | Red | 3" {
		t.Errorf("Last signal not stored, got %q", state.LastSignal)
	}
}

func TestSettings(t *testing.T) {
	redisService := setupTestRedis(t)
	defer redisService.Close()

	key := "test_ref_link"
	redisService.DeleteSetting(key)
	defer redisService.DeleteSetting(key)

	val, err := redisService.GetSetting(key)
	if err != nil {
		t.Fatalf("GetSetting failed: %v", err)
	}
	if val != "" {
		t.Errorf("Unset key should read empty, got %q", val)
	}

	if err := redisService.SeedSetting(key, "https://one.example"); err != nil {
		t.Fatalf("SeedSetting failed: %v", err)
	}

	// Seeding again must not overwrite.
	redisService.SeedSetting(key, "https://two.example")
	val, _ = redisService.GetSetting(key)
	if val != "https://one.example" {
		t.Errorf("Seed overwrote an existing value: %q", val)
	}

	// A plain set does overwrite, last writer wins.
	if err := redisService.SetSetting(key, "https://three.example"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	val, _ = redisService.GetSetting(key)
	if val != "https://three.example" {
		t.Errorf("SetSetting should overwrite, got %q", val)
	}
}

func TestSignalRateLimit(t *testing.T) {
	redisService := setupTestRedis(t)
	defer redisService.Close()

	userID := int64(999003)
	redisService.ClearRateLimit(userID, "signal")
	defer redisService.ClearRateLimit(userID, "signal")

	for i := 0; i < services.DefaultRateLimitSignals; i++ {
		allowed, err := redisService.CheckRateLimit(userID, "signal",
			services.DefaultRateLimitSignals, services.RateLimitWindow)
		if err != nil {
			t.Fatalf("CheckRateLimit failed: %v", err)
		}
		if !allowed {
			t.Fatalf("Request %d should still be allowed", i+1)
		}
	}

	allowed, _ := redisService.CheckRateLimit(userID, "signal",
		services.DefaultRateLimitSignals, services.RateLimitWindow)
	if allowed {
		t.Error("Request over the limit should be rejected")
	}
}
