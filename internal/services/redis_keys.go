package services

import "time"

const (
	KeyStreak    = "streak:%d"
	KeySettings  = "settings"
	KeyRateLimit = "ratelimit:%d:%s"

	// SettingRefLink holds the referral link handed out by /start.
	SettingRefLink = "ref_link"

	DefaultRateLimitSignals = 10 // max /signal requests per minute
	RateLimitWindow         = time.Minute
)
